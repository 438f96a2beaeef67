package camera

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/tauraamui/prismdaemon/pkg/config/schedule"
	"github.com/tauraamui/prismdaemon/pkg/video"
	"github.com/tauraamui/xerror"
)

type Connection interface {
	UUID() string
	Title() string
	Read() (video.Frame, error)
	IsOpen() bool
	IsClosing() bool
	Close() error
	FPS() int
	SPC() int
	PersistLocation() string
	Record() bool
	SnapshotInterval() time.Duration
	Schedule() schedule.Schedule
}

type connection struct {
	uuid      string
	backend   video.Backend
	title     string
	sett      Settings
	sched     schedule.Schedule
	mu        sync.Mutex
	isClosing bool
	vc        video.Connection
}

func (c *connection) UUID() string {
	return c.uuid
}

func (c *connection) Title() string {
	return c.title
}

func (c *connection) Read() (video.Frame, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	frame := c.backend.NewFrame()
	if err := c.vc.Read(frame); err != nil {
		frame.Close()
		return nil, err
	}
	return frame, nil
}

func (c *connection) IsOpen() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.vc.IsOpen()
}

func (c *connection) IsClosing() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.isClosing
}

func (c *connection) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.isClosing = true
	return c.vc.Close()
}

func (c *connection) FPS() int {
	return c.sett.FPS
}

func (c *connection) SPC() int {
	return c.sett.SecondsPerClip
}

func (c *connection) PersistLocation() string {
	return c.sett.PersistLocation
}

func (c *connection) Record() bool {
	return c.sett.Record
}

func (c *connection) SnapshotInterval() time.Duration {
	return c.sett.SnapshotInterval
}

func (c *connection) Schedule() schedule.Schedule {
	return c.sched
}

func connect(ctx context.Context, title, addr string, settings Settings, backend video.Backend) (Connection, error) {
	vc, err := video.ConnectWithCancel(ctx, addr, backend)
	if err != nil {
		return nil, xerror.Errorf("unable to connect to stream [%s]: %w", title, err)
	}
	return &connection{
		uuid:    uuid.NewString(),
		backend: backend,
		title:   title,
		vc:      vc,
		sett:    settings,
		sched:   schedule.NewSchedule(settings.Schedule),
	}, nil
}

func Connect(title, addr string, settings Settings, backend video.Backend) (Connection, error) {
	return connect(context.Background(), title, addr, settings, backend)
}

func ConnectWithCancel(cancel context.Context, title, addr string, settings Settings, backend video.Backend) (Connection, error) {
	return connect(cancel, title, addr, settings, backend)
}
