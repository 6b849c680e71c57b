package workerpool

import "golang.org/x/sync/errgroup"

// ExternalPool delegates concurrency control to golang.org/x/sync/errgroup
// instead of hand-rolling a worker loop: SetLimit bounds how many jobs run
// at once, and Go/Wait handle the rest.
type ExternalPool struct {
	grp *errgroup.Group
}

// NewExternalPool constructs an ExternalPool allowing at most n jobs to
// run concurrently.
func NewExternalPool(n int) *ExternalPool {
	grp := new(errgroup.Group)
	if n > 0 {
		grp.SetLimit(n)
	}
	return &ExternalPool{grp: grp}
}

// Submit schedules job to run once a concurrency slot is free. Submit
// itself blocks while waiting for a slot, the way errgroup.Group.Go does
// once SetLimit is in effect.
func (p *ExternalPool) Submit(job func()) {
	p.grp.Go(func() error {
		job()
		return nil
	})
}

// Shutdown waits for every submitted job to finish.
func (p *ExternalPool) Shutdown() {
	_ = p.grp.Wait()
}
