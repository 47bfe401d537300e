package leader

// Checker answers whether this process currently holds the leader lock.
type Checker interface {
	IsLeader() bool
}

// Lock is a leader election handle. Start launches the election loop in the
// background; Stop relinquishes any held leadership and halts the loop.
type Lock interface {
	Checker

	Start()
	Stop()
}
