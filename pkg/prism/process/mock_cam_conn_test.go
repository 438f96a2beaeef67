package process_test

import (
	"time"

	"github.com/tauraamui/prismdaemon/pkg/config/schedule"
	"github.com/tauraamui/prismdaemon/pkg/video/videoframe"
	"github.com/tauraamui/xerror"
)

type mockFrame struct {
	data          []byte
	width, height int
	timestamp     int64
	isOpen        bool
	isClosing     bool
	onClose       func()
}

func (m *mockFrame) Timestamp() int64 {
	return m.timestamp
}

func (m *mockFrame) DataRef() interface{} {
	return m.data
}

func (m *mockFrame) Dimensions() videoframe.Dimensions {
	return videoframe.Dimensions{W: m.width, H: m.height}
}

func (m *mockFrame) Clone() videoframe.Frame {
	return &mockFrame{
		data: append([]byte{}, m.data...), width: m.width, height: m.height, timestamp: m.timestamp,
	}
}

func (m *mockFrame) Close() {
	m.isOpen = false
	m.isClosing = true
	if m.onClose != nil {
		m.onClose()
	}
}

type mockCameraConn struct {
	uuid             string
	title            string
	schedule         schedule.Schedule
	persistLocation  string
	fps              int
	spc              int
	record           bool
	snapshotInterval time.Duration
	frameReadIndex   int
	framesToRead     []mockFrame
	readFunc         func() (videoframe.Frame, error)
	onPostRead       func()
	readErr          error
	isOpenFunc       func() bool
	isOpen           bool
	isClosing        bool
	closeErr         error
}

func (m *mockCameraConn) UUID() string {
	return m.uuid
}

func (m *mockCameraConn) Title() string {
	return m.title
}

func (m *mockCameraConn) Read() (frame videoframe.Frame, err error) {
	if m.onPostRead != nil {
		defer m.onPostRead()
	}

	if m.readFunc != nil {
		return m.readFunc()
	}

	if m.frameReadIndex+1 >= len(m.framesToRead) {
		return nil, xerror.New("run out of frames to read")
	}
	frame, err = &m.framesToRead[m.frameReadIndex], m.readErr
	m.frameReadIndex++
	return
}

func (m *mockCameraConn) IsOpen() bool {
	if m.isOpenFunc != nil {
		return m.isOpenFunc()
	}
	return m.isOpen
}

func (m *mockCameraConn) IsClosing() bool {
	return m.isClosing
}

func (m *mockCameraConn) Close() error {
	m.isClosing = true
	return m.closeErr
}

func (m *mockCameraConn) FPS() int {
	return m.fps
}

func (m *mockCameraConn) SPC() int {
	return m.spc
}

func (m *mockCameraConn) PersistLocation() string {
	return m.persistLocation
}

func (m *mockCameraConn) Record() bool {
	return m.record
}

func (m *mockCameraConn) SnapshotInterval() time.Duration {
	return m.snapshotInterval
}

func (m *mockCameraConn) Schedule() schedule.Schedule {
	if m.schedule == nil {
		return schedule.NewSchedule(schedule.Week{})
	}
	return m.schedule
}
