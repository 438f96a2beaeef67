package display

import (
	"sync"

	"github.com/tauraamui/prismdaemon/pkg/video/videoframe"
	"github.com/tauraamui/xerror"
	"gocv.io/x/gocv"
)

type openCVWindow struct {
	title    string
	mu       sync.Mutex
	isClosed bool
	window   *gocv.Window
}

func OpenCV(title string) Sink {
	return &openCVWindow{title: title}
}

func (w *openCVWindow) Show(frame videoframe.NoCloser) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.isClosed {
		return xerror.New("window is closed")
	}

	mat, ok := frame.DataRef().(*gocv.Mat)
	if !ok {
		return xerror.New("must pass OpenCV frame to OpenCV window")
	}
	if w.window == nil {
		w.window = gocv.NewWindow(w.title)
	}

	w.window.IMShow(*mat)
	w.window.WaitKey(1)
	return nil
}

func (w *openCVWindow) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.isClosed {
		return nil
	}
	w.isClosed = true
	if w.window == nil {
		return nil
	}
	return w.window.Close()
}
