package styler

import (
	"context"

	"github.com/tauraamui/prismdaemon/pkg/video/videoframe"
)

// Styler applies a single loaded style transfer model to frames.
// Implementations own their model resources and release them on Close.
type Styler interface {
	Apply(ctx context.Context, frame videoframe.Frame) (videoframe.Frame, error)
	ModelPath() string
	Close() error
}

// Backend loads stylers from model files on disk. Load failures are
// returned to the caller rather than halting, a server may carry on
// serving the streams whose models did load.
type Backend interface {
	Load(ctx context.Context, modelPath string) (Styler, error)
}

func Default() Backend {
	return &openCVBackend{}
}

func OpenCV() Backend {
	return &openCVBackend{}
}

func Mock() Backend {
	return &mockStylerBackend{}
}

func Resolve(backendRef string) Backend {
	switch backendRef {
	case "mock":
		return Mock()
	case "opencv":
		return OpenCV()
	default:
		return Default()
	}
}
