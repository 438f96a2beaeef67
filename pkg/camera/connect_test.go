package camera_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/matryer/is"
	"github.com/tauraamui/prismdaemon/pkg/camera"
	"github.com/tauraamui/prismdaemon/pkg/config/schedule"
	"github.com/tauraamui/prismdaemon/pkg/video"
	"github.com/tauraamui/prismdaemon/pkg/video/videobackend"
	"github.com/tauraamui/prismdaemon/pkg/video/videoclip"
	"github.com/tauraamui/prismdaemon/pkg/video/videoframe"
)

type testVideoBackend struct {
	connectErr error
	readErr    error
}

func (b testVideoBackend) Connect(ctx context.Context, addr string) (videobackend.Connection, error) {
	if b.connectErr != nil {
		return nil, b.connectErr
	}
	return testVideoConnection{readErr: b.readErr}, nil
}

func (b testVideoBackend) NewFrame() videoframe.Frame {
	return &testVideoFrame{}
}

func (b testVideoBackend) NewWriter() videoclip.Writer {
	return nil
}

type testVideoFrame struct {
	isClosed bool
}

func (frame *testVideoFrame) Timestamp() int64     { return 0 }
func (frame *testVideoFrame) DataRef() interface{} { return nil }
func (frame *testVideoFrame) Dimensions() videoframe.Dimensions {
	return videoframe.Dimensions{W: 50, H: 50}
}
func (frame *testVideoFrame) Clone() videoframe.Frame { return &testVideoFrame{} }
func (frame *testVideoFrame) Close()                  { frame.isClosed = true }

type testVideoConnection struct {
	readErr error
}

func (tvc testVideoConnection) UUID() string {
	return "test-conn-uuid"
}

func (tvc testVideoConnection) Read(frame videoframe.Frame) error {
	return tvc.readErr
}

func (tvc testVideoConnection) IsOpen() bool {
	return true
}

func (tvc testVideoConnection) Close() error {
	return nil
}

func TestConnectReturnsNonNilConnection(t *testing.T) {
	is := is.New(t)

	conn, err := camera.Connect("FakeStream", "fakeaddr", camera.Settings{}, testVideoBackend{})
	is.NoErr(err)
	is.True(conn != nil)
	is.Equal(conn.Title(), "FakeStream")
	is.True(len(conn.UUID()) > 0)
}

func TestConnectWithCancelReturnsConnectionError(t *testing.T) {
	is := is.New(t)

	_, err := camera.ConnectWithCancel(
		context.Background(),
		"FakeStream",
		"fakeaddr",
		camera.Settings{},
		testVideoBackend{connectErr: errors.New("test connect failure")},
	)
	is.True(err != nil)
	is.Equal(err.Error(), "unable to connect to stream [FakeStream]: test connect failure")
}

func TestConnectionReadGivesFrame(t *testing.T) {
	is := is.New(t)

	conn, err := camera.Connect("FakeStream", "fakeaddr", camera.Settings{}, testVideoBackend{})
	is.NoErr(err)

	frame, err := conn.Read()
	is.NoErr(err)
	is.True(frame != nil)
}

func TestConnectionReadClosesFrameOnReadError(t *testing.T) {
	is := is.New(t)

	conn, err := camera.Connect(
		"FakeStream", "fakeaddr", camera.Settings{},
		testVideoBackend{readErr: errors.New("test read failure")},
	)
	is.NoErr(err)

	frame, err := conn.Read()
	is.True(err != nil)
	is.True(frame == nil)
}

func TestConnectionExposesSettings(t *testing.T) {
	is := is.New(t)

	sett := camera.Settings{
		FPS:              15,
		PersistLocation:  "/testroot/footage",
		Record:           true,
		SecondsPerClip:   2,
		SnapshotInterval: 30 * time.Second,
		Schedule:         schedule.Week{},
	}
	conn, err := camera.Connect("FakeStream", "fakeaddr", sett, testVideoBackend{})
	is.NoErr(err)

	is.Equal(conn.FPS(), 15)
	is.Equal(conn.SPC(), 2)
	is.Equal(conn.PersistLocation(), "/testroot/footage")
	is.True(conn.Record())
	is.Equal(conn.SnapshotInterval(), 30*time.Second)
	is.True(conn.Schedule().IsOn(schedule.Time(time.Now())))
}

func TestConnectionCloseMarksConnectionAsClosing(t *testing.T) {
	is := is.New(t)

	conn, err := camera.Connect("FakeStream", "fakeaddr", camera.Settings{}, testVideoBackend{})
	is.NoErr(err)

	is.Equal(conn.IsClosing(), false)
	is.NoErr(conn.Close())
	is.True(conn.IsClosing())
}

var _ video.Backend = testVideoBackend{}
