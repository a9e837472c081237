package streams

type Closer interface {
	Close() error
}

type Sink[T any] interface {
	Put(item T) error
}

type Source[T any] interface {
	Closer
	Next() (T, bool)
}

// ByteSink embeds an instantiated generic interface
type ByteSink interface {
	Sink[[]string]
	Flush()
}

type Pipe[T any] interface {
	Source[T]
	Sink[map[string]T]
}

type Number interface {
	~int | ~float64
}

type Summer interface {
	Sum(xs []int) int
}

type notAnInterface struct{}

// Outer embeds an interface literal, which has no name to become a parent
type Outer interface {
	interface{ Inner() int }
	Own()
}

type withClose = interface {
	Closer
	Reset()
}

// Resetter embeds an alias of a literal that embeds a named interface
type Resetter interface {
	withClose
	Own()
}
