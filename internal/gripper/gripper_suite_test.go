package gripper_test

import (
	"testing"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

func TestGripper(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Gripper Suite")
}
