package gripper_test

import (
	"sync"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/gripsim/internal/gripper"
	"github.com/san-kum/gripsim/internal/pid"
)

func settings() pid.Settings {
	return pid.Settings{Kp: 2.5, Ki: 0, Kd: 0, Dt: 0.001, Min: -10, Max: 10}
}

var _ = Describe("Command", func() {
	It("splits the finger opening symmetrically", func() {
		cmd := gripper.Command{Wrist: 0.2, FingerOpening: 0.4}
		desired := cmd.Desired()

		Expect(desired.Wrist).To(Equal(0.2))
		Expect(desired.LeftFinger).To(Equal(0.2))
		Expect(desired.RightFinger).To(Equal(-0.2))
	})

	It("keeps left and right exact mirrors for any opening", func() {
		for _, f := range []float64{0, 0.1, 0.7, 1.5708, 3.0} {
			desired := gripper.Command{FingerOpening: f}.Desired()
			Expect(desired.LeftFinger).To(Equal(-desired.RightFinger))
			Expect(desired.LeftFinger).To(Equal(f / 2.0))
		}
	})
})

var _ = Describe("Manager", func() {
	var mgr *gripper.Manager

	BeforeEach(func() {
		var err error
		mgr, err = gripper.NewManager(gripper.DefaultJointNames(), settings(), settings())
		Expect(err).NotTo(HaveOccurred())
	})

	It("rejects invalid settings at construction", func() {
		bad := settings()
		bad.Dt = 0
		_, err := gripper.NewManager(gripper.DefaultJointNames(), bad, settings())
		Expect(err).To(HaveOccurred())

		_, err = gripper.NewManager(gripper.DefaultJointNames(), settings(), bad)
		Expect(err).To(HaveOccurred())
	})

	It("computes proportional forces per joint", func() {
		desired := gripper.Command{Wrist: 1.0, FingerOpening: 0.8}.Desired()
		current := gripper.State{}

		forces := mgr.GetForces(desired, current)

		Expect(forces.Wrist).To(BeNumerically("~", 2.5, 1e-12))
		Expect(forces.LeftFinger).To(BeNumerically("~", 1.0, 1e-12))
		Expect(forces.RightFinger).To(BeNumerically("~", -1.0, 1e-12))
	})

	It("clamps every channel to its force limits", func() {
		desired := gripper.State{Wrist: 100, LeftFinger: 100, RightFinger: -100}
		forces := mgr.GetForces(desired, gripper.State{})

		Expect(forces.Wrist).To(Equal(10.0))
		Expect(forces.LeftFinger).To(Equal(10.0))
		Expect(forces.RightFinger).To(Equal(-10.0))
	})

	It("returns zero force when already at the target", func() {
		at := gripper.State{Wrist: 0.3, LeftFinger: 0.2, RightFinger: -0.2}
		forces := mgr.GetForces(at, at)

		Expect(forces).To(Equal(gripper.Forces{}))
	})

	It("keeps finger channels independent", func() {
		s := pid.Settings{Kp: 0, Ki: 1.0, Kd: 0, Dt: 0.1, Min: -100, Max: 100}
		m, err := gripper.NewManager(gripper.DefaultJointNames(), s, s)
		Expect(err).NotTo(HaveOccurred())

		// drive only the left finger; the right channel must stay clean
		for i := 0; i < 10; i++ {
			m.GetForces(gripper.State{LeftFinger: 1.0}, gripper.State{})
		}
		forces := m.GetForces(gripper.State{LeftFinger: 1.0}, gripper.State{LeftFinger: 1.0, RightFinger: 0})
		Expect(forces.RightFinger).To(Equal(0.0))
		Expect(forces.LeftFinger).To(BeNumerically(">", 0))
	})

	It("resets all error history", func() {
		s := pid.Settings{Kp: 0, Ki: 1.0, Kd: 0, Dt: 0.1, Min: -100, Max: 100}
		m, err := gripper.NewManager(gripper.DefaultJointNames(), s, s)
		Expect(err).NotTo(HaveOccurred())

		for i := 0; i < 10; i++ {
			m.GetForces(gripper.State{Wrist: 1, LeftFinger: 1, RightFinger: -1}, gripper.State{})
		}
		m.Reset()

		forces := m.GetForces(gripper.State{}, gripper.State{})
		Expect(forces).To(Equal(gripper.Forces{}))
	})

	It("retunes finger gains on both channels", func() {
		Expect(mgr.SetParam("finger.Kp", 5.0)).To(Succeed())

		desired := gripper.Command{FingerOpening: 0.4}.Desired()
		forces := mgr.GetForces(desired, gripper.State{})
		Expect(forces.LeftFinger).To(BeNumerically("~", 1.0, 1e-12))
		Expect(forces.RightFinger).To(BeNumerically("~", -1.0, 1e-12))

		Expect(mgr.SetParam("elbow.Kp", 1.0)).NotTo(Succeed())
	})
})

var _ = Describe("Cell", func() {
	It("returns the last written command", func() {
		cell := gripper.NewCell(gripper.Command{})
		cell.Set(gripper.Command{Wrist: 0.1, FingerOpening: 0.2})
		cell.SetWrist(0.5)

		Expect(cell.Snapshot()).To(Equal(gripper.Command{Wrist: 0.5, FingerOpening: 0.2}))
	})

	It("tolerates a concurrent writer", func() {
		cell := gripper.NewCell(gripper.Command{})
		var wg sync.WaitGroup
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < 1000; i++ {
				cell.SetFingerOpening(float64(i) / 1000.0)
			}
		}()
		for i := 0; i < 1000; i++ {
			snap := cell.Snapshot()
			Expect(snap.FingerOpening).To(BeNumerically(">=", 0))
			Expect(snap.FingerOpening).To(BeNumerically("<", 1))
		}
		wg.Wait()
	})
})
