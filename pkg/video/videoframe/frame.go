package videoframe

type Dimensions struct {
	W, H int
}

// NoCloser is the read only view of a frame, handed to consumers
// which borrow the frame without taking ownership of it.
type NoCloser interface {
	DataRef() interface{}
	Dimensions() Dimensions
	Timestamp() int64
}

// Frame is a single captured or stylized image. Every frame has
// exactly one owner at a time and the owner is responsible for
// calling Close exactly once.
type Frame interface {
	NoCloser
	Clone() Frame
	Close()
}
