package repokit

// Binder produces a repo bound to one specific Queryer, so a service can
// rebind its repos onto a transaction handle
type Binder[T any] interface {
	Bind(Queryer) T
}

// BindFunc lets a repo constructor act as a Binder directly
type BindFunc[T any] func(Queryer) T

// Bind invokes the constructor with q
func (f BindFunc[T]) Bind(q Queryer) T { return f(q) }

// RequireQueryer panics on a nil q so wiring mistakes fail at startup
func RequireQueryer(q Queryer) Queryer {
	if q == nil {
		panic("repokit: nil Queryer")
	}
	return q
}

// MustBind validates q and binds in one step
func MustBind[T any](b Binder[T], q Queryer) T {
	return b.Bind(RequireQueryer(q))
}
