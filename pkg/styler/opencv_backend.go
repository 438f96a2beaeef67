package styler

import (
	"context"
	"image"
	"sync"

	"github.com/tauraamui/prismdaemon/pkg/video/videobackend"
	"github.com/tauraamui/prismdaemon/pkg/video/videoframe"
	"github.com/tauraamui/xerror"
	"gocv.io/x/gocv"
)

// Mean pixel values the style transfer models were trained against.
// Subtracted from the input blob and added back to the output.
const (
	meanB = 103.939
	meanG = 116.779
	meanR = 123.68
)

type openCVBackend struct{}

func (b *openCVBackend) Load(cancel context.Context, modelPath string) (Styler, error) {
	s := openCVStyler{modelPath: modelPath}
	if err := s.load(cancel); err != nil {
		return nil, err
	}
	return &s, nil
}

type openCVStyler struct {
	modelPath string
	mu        sync.Mutex
	isClosed  bool
	net       gocv.Net
}

func (s *openCVStyler) load(cancel context.Context) error {
	netAndError := make(chan readNetResult, 1)
	go readNetFromFile(s.modelPath, netAndError)
	select {
	case r := <-netAndError:
		if r.err != nil {
			return r.err
		}
		s.net = r.net
		return nil
	case <-cancel.Done():
		return xerror.New("model load cancelled")
	}
}

type readNetResult struct {
	net gocv.Net
	err error
}

func readNetFromFile(modelPath string, d chan readNetResult) {
	net, err := readNet(modelPath)
	d <- readNetResult{net: net, err: err}
}

var readNet = func(modelPath string) (gocv.Net, error) {
	net := gocv.ReadNet(modelPath, "")
	if net.Empty() {
		return net, xerror.Errorf("unable to read stylize model from file [%s]", modelPath)
	}
	return net, nil
}

func (s *openCVStyler) ModelPath() string {
	return s.modelPath
}

// Apply runs the loaded model over a single frame and gives back a
// freshly allocated stylized frame. The given frame is left untouched,
// the caller keeps ownership of it.
func (s *openCVStyler) Apply(ctx context.Context, frame videoframe.Frame) (videoframe.Frame, error) {
	mat, ok := frame.DataRef().(*gocv.Mat)
	if !ok {
		return nil, xerror.New("must pass OpenCV frame to OpenCV styler")
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.isClosed {
		return nil, xerror.New("styler is closed")
	}

	dimensions := frame.Dimensions()
	blob := gocv.BlobFromImage(
		*mat, 1.0,
		image.Pt(dimensions.W, dimensions.H),
		gocv.NewScalar(meanB, meanG, meanR, 0),
		false, false,
	)
	defer blob.Close()

	s.net.SetInput(blob, "")
	output := forwardNet(&s.net)
	defer output.Close()

	styled, err := deblobify(output, dimensions)
	if err != nil {
		return nil, err
	}
	return videobackend.FrameFromMat(styled), nil
}

var forwardNet = func(net *gocv.Net) gocv.Mat {
	return net.Forward("")
}

// deblobify converts the network's NCHW float output back into an
// 8 bit BGR mat, re-adding the training means stripped on input.
func deblobify(blob gocv.Mat, dimensions videoframe.Dimensions) (gocv.Mat, error) {
	means := []float32{meanB, meanG, meanR}
	channels := make([]gocv.Mat, 0, 3)
	defer func() {
		for _, c := range channels {
			c.Close()
		}
	}()

	for i := 0; i < 3; i++ {
		channel := gocv.GetBlobChannel(blob, 0, i)
		if channel.Empty() {
			return gocv.Mat{}, xerror.New("stylize model gave empty output channel")
		}
		channel.AddFloat(means[i])
		channels = append(channels, channel)
	}

	merged := gocv.NewMat()
	gocv.Merge(channels, &merged)
	defer merged.Close()

	styled := gocv.NewMat()
	merged.ConvertTo(&styled, gocv.MatTypeCV8UC3)
	if styled.Cols() != dimensions.W || styled.Rows() != dimensions.H {
		resized := gocv.NewMat()
		gocv.Resize(styled, &resized, image.Pt(dimensions.W, dimensions.H), 0, 0, gocv.InterpolationLinear)
		styled.Close()
		return resized, nil
	}
	return styled, nil
}

func (s *openCVStyler) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.isClosed {
		return nil
	}
	s.isClosed = true
	return s.net.Close()
}
