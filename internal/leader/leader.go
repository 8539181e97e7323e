// Package leader exposes whether this operator instance currently holds
// write authority over shared state.
package leader

import "sync/atomic"

// Checker reports whether this instance is the elected leader. Peer state
// writes are gated on it.
type Checker interface {
	IsLeader() bool
}

// ElectionChecker tracks the manager's leader election channel.
type ElectionChecker struct {
	elected atomic.Bool
}

// NewElectionChecker returns a Checker that flips to leader once the given
// channel closes. Pass manager.Elected() from controller-runtime.
func NewElectionChecker(elected <-chan struct{}) *ElectionChecker {
	c := &ElectionChecker{}
	go func() {
		<-elected
		c.elected.Store(true)
	}()
	return c
}

// IsLeader reports whether leadership has been acquired.
func (c *ElectionChecker) IsLeader() bool {
	return c.elected.Load()
}

// Static returns a fixed-answer Checker, used in tests.
func Static(isLeader bool) Checker {
	return staticChecker(isLeader)
}

type staticChecker bool

func (s staticChecker) IsLeader() bool { return bool(s) }
