package unitofwork

import "context"

// Runner executes a multi-step persistence sequence with the best atomicity
// the deployed store offers. Implementations are selected once at startup,
// never per call, so call sites stay uniform.
//
// When Transactional reports false the sequence runs as independently-atomic
// single-record writes; callers must keep their preconditions enforced by
// conditional updates so the degraded mode stays safe.
type Runner interface {
	Run(ctx context.Context, fn func(ctx context.Context) error) error
	Transactional() bool
}

type sequential struct{}

// NewSequential returns the fallback runner used when the store has no
// multi-record transactional context.
func NewSequential() Runner {
	return sequential{}
}

func (sequential) Run(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

func (sequential) Transactional() bool { return false }
