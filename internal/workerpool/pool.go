// Package workerpool provides three interchangeable strategies for running
// connection handlers: Naive (one goroutine per job, no limit), Shared
// (a fixed-size, panic-tolerant worker pool behind one job queue), and
// External (bounded fan-out delegated to golang.org/x/sync/errgroup).
package workerpool

import "fmt"

// Pool runs jobs submitted to it. Submit must not be called after Shutdown
// has started.
type Pool interface {
	Submit(job func())
	Shutdown()
}

// Kind selects which Pool implementation New constructs.
type Kind string

const (
	KindNaive    Kind = "naive"
	KindShared   Kind = "shared"
	KindExternal Kind = "external"
)

// Logger is the minimal logging surface SharedPool needs; satisfied by
// *zap.SugaredLogger.
type Logger interface {
	Errorw(msg string, keysAndValues ...any)
}

// New builds a Pool of the given kind with n workers (ignored by Naive).
func New(kind Kind, n int, log Logger) (Pool, error) {
	switch kind {
	case KindNaive, "":
		return NewNaivePool(), nil
	case KindShared:
		return NewSharedPool(n, log)
	case KindExternal:
		return NewExternalPool(n), nil
	default:
		return nil, fmt.Errorf("workerpool: unknown kind %q", kind)
	}
}
