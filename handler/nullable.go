package handler

// Nullable is an optional value in HandlerContext.
//
// Typed middleware fills it in (ParseParams sets Params, ParseBody sets Body)
// and handlers that sit behind that middleware call Value directly. Values
// that may legitimately be absent, such as the request ID, are read with
// TryValue or ValueOr.
//
//	// Middleware populates the value
//	ctx.Body = handler.NewNullable(validatedBody)
//
//	// Handler relies on the middleware having run
//	req := ctx.Body.Value()
type Nullable[T any] struct {
	value    T
	hasValue bool
}

// NewNullable creates a Nullable containing the given value.
func NewNullable[T any](value T) Nullable[T] {
	return Nullable[T]{value: value, hasValue: true}
}

// Nil returns an empty Nullable with no value.
func Nil[T any]() Nullable[T] {
	return Nullable[T]{}
}

// HasValue returns true if the Nullable contains a value.
func (n Nullable[T]) HasValue() bool {
	return n.hasValue
}

// Value returns the contained value or panics if no value is present.
//
// The panic is recoverable, so chi's Recoverer turns a missing middleware
// into a 500 instead of a crash.
func (n Nullable[T]) Value() T {
	if !n.hasValue {
		panic("siteedge: attempted to access Nullable value when HasValue is false")
	}
	return n.value
}

// TryValue returns the contained value and whether it exists.
//
//	if id, ok := ctx.RequestID.TryValue(); ok {
//	    logger = logger.With("request_id", id)
//	}
func (n Nullable[T]) TryValue() (T, bool) {
	return n.value, n.hasValue
}

// ValueOrDefault returns the value if present, otherwise the zero value for T.
func (n Nullable[T]) ValueOrDefault() T {
	if n.hasValue {
		return n.value
	}
	var zero T
	return zero
}

// ValueOr returns the value if present, otherwise defaultValue.
//
//	category := ctx.Params.ValueOrDefault().Category
//	timeout := cfg.Timeout.ValueOr(30 * time.Second)
func (n Nullable[T]) ValueOr(defaultValue T) T {
	if n.hasValue {
		return n.value
	}
	return defaultValue
}
