package display

import (
	"testing"

	"github.com/matryer/is"
	"github.com/tauraamui/prismdaemon/pkg/video/videoframe"
)

type incompatibleFrame struct{}

func (frame *incompatibleFrame) Timestamp() int64     { return 0 }
func (frame *incompatibleFrame) DataRef() interface{} { return []byte{} }
func (frame *incompatibleFrame) Dimensions() videoframe.Dimensions {
	return videoframe.Dimensions{}
}

func TestResolveGivesMockSink(t *testing.T) {
	is := is.New(t)
	s := Resolve("mock", "FakeStream")
	_, ok := s.(*mockSink)
	is.True(ok)
}

func TestResolveGivesOpenCVWindowByDefault(t *testing.T) {
	is := is.New(t)

	s := Resolve("", "FakeStream")
	w, ok := s.(*openCVWindow)
	is.True(ok)
	is.Equal(w.title, "FakeStream")

	s = Resolve("anything-else", "FakeStream")
	_, ok = s.(*openCVWindow)
	is.True(ok)
}

func TestOpenCVWindowShowRejectsNonOpenCVFrame(t *testing.T) {
	is := is.New(t)

	w := openCVWindow{title: "FakeStream"}
	err := w.Show(&incompatibleFrame{})
	is.True(err != nil)
	is.Equal(err.Error(), "must pass OpenCV frame to OpenCV window")
}

func TestClosedOpenCVWindowRefusesShow(t *testing.T) {
	is := is.New(t)

	w := openCVWindow{title: "FakeStream", isClosed: true}
	err := w.Show(&incompatibleFrame{})
	is.True(err != nil)
	is.Equal(err.Error(), "window is closed")
}

func TestMockSinkCountsShownFrames(t *testing.T) {
	is := is.New(t)

	s := Mock()
	mock, ok := s.(*mockSink)
	is.True(ok)

	is.NoErr(s.Show(&incompatibleFrame{}))
	is.NoErr(s.Show(&incompatibleFrame{}))
	is.Equal(mock.ShownCount(), 2)
}

func TestClosedMockSinkRefusesShow(t *testing.T) {
	is := is.New(t)

	s := Mock()
	is.NoErr(s.Close())

	err := s.Show(&incompatibleFrame{})
	is.True(err != nil)
	is.Equal(err.Error(), "sink is closed")
}
