package gripper

import "sync"

// Cell is the snapshot cell for the latest gripper command. Producers (a
// message handler, the live view's keyboard) write it asynchronously; the
// control tick reads one consistent snapshot per period. Last write wins.
type Cell struct {
	mu  sync.Mutex
	cmd Command
}

// NewCell returns a cell holding the given initial command.
func NewCell(initial Command) *Cell {
	return &Cell{cmd: initial}
}

// Set replaces the stored command.
func (c *Cell) Set(cmd Command) {
	c.mu.Lock()
	c.cmd = cmd
	c.mu.Unlock()
}

// SetWrist updates only the wrist angle of the stored command.
func (c *Cell) SetWrist(angle float64) {
	c.mu.Lock()
	c.cmd.Wrist = angle
	c.mu.Unlock()
}

// SetFingerOpening updates only the finger opening of the stored command.
func (c *Cell) SetFingerOpening(angle float64) {
	c.mu.Lock()
	c.cmd.FingerOpening = angle
	c.mu.Unlock()
}

// Snapshot returns the current command.
func (c *Cell) Snapshot() Command {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.cmd
}
