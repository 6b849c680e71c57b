package workerpool

// NaivePool spawns a new goroutine for every job and imposes no bound on
// concurrency. It exists as the simplest possible baseline — useful under
// light load, and a clear point of comparison for SharedPool and
// ExternalPool under heavier load.
type NaivePool struct{}

// NewNaivePool constructs a NaivePool. It takes no arguments because it
// holds no state: every job gets its own goroutine.
func NewNaivePool() *NaivePool {
	return &NaivePool{}
}

// Submit runs job in a new goroutine immediately.
func (p *NaivePool) Submit(job func()) {
	go job()
}

// Shutdown is a no-op: NaivePool tracks no goroutines to wait on.
func (p *NaivePool) Shutdown() {}
