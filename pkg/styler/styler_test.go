package styler

import (
	"context"
	"testing"

	"github.com/matryer/is"
	"github.com/tauraamui/prismdaemon/pkg/video/videoframe"
	"github.com/tauraamui/xerror"
	"gocv.io/x/gocv"
)

type incompatibleFrame struct{}

func (frame *incompatibleFrame) Timestamp() int64     { return 0 }
func (frame *incompatibleFrame) DataRef() interface{} { return []byte{} }
func (frame *incompatibleFrame) Dimensions() videoframe.Dimensions {
	return videoframe.Dimensions{}
}
func (frame *incompatibleFrame) Clone() videoframe.Frame { return &incompatibleFrame{} }
func (frame *incompatibleFrame) Close()                  {}

func overloadReadNet(overload func(string) (gocv.Net, error)) func() {
	readNetRef := readNet
	readNet = overload
	return func() { readNet = readNetRef }
}

func TestResolveGivesMockBackend(t *testing.T) {
	is := is.New(t)
	b := Resolve("mock")
	_, ok := b.(*mockStylerBackend)
	is.True(ok)
}

func TestResolveGivesOpenCVBackendByDefault(t *testing.T) {
	is := is.New(t)

	b := Resolve("")
	_, ok := b.(*openCVBackend)
	is.True(ok)

	b = Resolve("anything-else")
	_, ok = b.(*openCVBackend)
	is.True(ok)
}

func TestOpenCVBackendLoadReturnsReadNetError(t *testing.T) {
	is := is.New(t)

	reset := overloadReadNet(func(modelPath string) (gocv.Net, error) {
		return gocv.Net{}, xerror.Errorf("unable to read stylize model from file [%s]", modelPath)
	})
	defer reset()

	_, err := OpenCV().Load(context.Background(), "/models/missing.t7")
	is.True(err != nil)
	is.Equal(err.Error(), "unable to read stylize model from file [/models/missing.t7]")
}

func TestOpenCVBackendLoadHonoursCancel(t *testing.T) {
	is := is.New(t)

	blockReadNet := make(chan struct{})
	reset := overloadReadNet(func(modelPath string) (gocv.Net, error) {
		<-blockReadNet
		return gocv.Net{}, nil
	})
	defer reset()
	defer close(blockReadNet)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := OpenCV().Load(ctx, "/models/starry-night.t7")
	is.True(err != nil)
	is.Equal(err.Error(), "model load cancelled")
}

func TestOpenCVStylerApplyRejectsNonOpenCVFrame(t *testing.T) {
	is := is.New(t)

	s := openCVStyler{modelPath: "/models/starry-night.t7"}
	_, err := s.Apply(context.Background(), &incompatibleFrame{})
	is.True(err != nil)
	is.Equal(err.Error(), "must pass OpenCV frame to OpenCV styler")
}

func TestOpenCVStylerApplyRefusesWhenClosed(t *testing.T) {
	is := is.New(t)

	s := openCVStyler{modelPath: "/models/starry-night.t7", isClosed: true}
	mat := gocv.NewMatWithSize(10, 10, gocv.MatTypeCV8UC3)
	defer mat.Close()

	_, err := s.Apply(context.Background(), matBackedFrame{mat: &mat})
	is.True(err != nil)
	is.Equal(err.Error(), "styler is closed")
}

type matBackedFrame struct {
	mat *gocv.Mat
}

func (frame matBackedFrame) Timestamp() int64     { return 0 }
func (frame matBackedFrame) DataRef() interface{} { return frame.mat }
func (frame matBackedFrame) Dimensions() videoframe.Dimensions {
	return videoframe.Dimensions{W: frame.mat.Cols(), H: frame.mat.Rows()}
}
func (frame matBackedFrame) Clone() videoframe.Frame { return frame }
func (frame matBackedFrame) Close()                  {}

func TestMockBackendLoadAlwaysSucceeds(t *testing.T) {
	is := is.New(t)

	s, err := Mock().Load(context.Background(), "/models/starry-night.t7")
	is.NoErr(err)
	is.Equal(s.ModelPath(), "/models/starry-night.t7")
	is.NoErr(s.Close())
}

func TestMockStylerApplyGivesBackClone(t *testing.T) {
	is := is.New(t)

	s, err := Mock().Load(context.Background(), "/models/starry-night.t7")
	is.NoErr(err)

	in := &incompatibleFrame{}
	out, err := s.Apply(context.Background(), in)
	is.NoErr(err)
	is.True(out != nil)
	is.True(out != videoframe.Frame(in))
}

func TestMockStylerApplyHonoursCancelledContext(t *testing.T) {
	is := is.New(t)

	s, err := Mock().Load(context.Background(), "/models/starry-night.t7")
	is.NoErr(err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err = s.Apply(ctx, &incompatibleFrame{})
	is.Equal(err, context.Canceled)
}
