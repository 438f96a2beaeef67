package display

import (
	"github.com/tauraamui/prismdaemon/pkg/video/videoframe"
)

// Sink renders stylized frames. Show does not take ownership of the
// frame, callers close frames themselves once shown.
type Sink interface {
	Show(frame videoframe.NoCloser) error
	Close() error
}

func Default(title string) Sink {
	return OpenCV(title)
}

func Resolve(sinkRef, title string) Sink {
	switch sinkRef {
	case "mock":
		return Mock()
	case "opencv":
		return OpenCV(title)
	default:
		return Default(title)
	}
}
