package process

import (
	"context"
	"fmt"
	"time"

	"github.com/tauraamui/prismdaemon/pkg/log"
	"github.com/tauraamui/prismdaemon/pkg/video"
	"github.com/tauraamui/prismdaemon/pkg/video/videostorage"
)

type snapshotProcess struct {
	ctx          context.Context
	cancel       context.CancelFunc
	stopping     chan interface{}
	title        string
	frames       chan video.Frame
	storage      videostorage.Storage
	interval     time.Duration
	lastSnapshot time.Time
}

// NewSnapshotProcess persists one stylized frame per interval to the
// snapshot store. Frames between snapshots are closed untouched.
func NewSnapshotProcess(title string, frames chan video.Frame, storage videostorage.Storage, interval time.Duration) Process {
	ctx, cancel := context.WithCancel(context.Background())
	return &snapshotProcess{
		ctx: ctx, cancel: cancel,
		title: title, frames: frames, storage: storage, interval: interval,
		stopping: make(chan interface{}),
	}
}

func (proc *snapshotProcess) Setup() Process { return proc }

func (proc *snapshotProcess) Start() {
	go proc.run()
}

func (proc *snapshotProcess) run() {
	for {
		time.Sleep(1 * time.Microsecond)
		select {
		case <-proc.ctx.Done():
			proc.drainRemaining()
			close(proc.stopping)
			return
		default:
			select {
			case frame := <-proc.frames:
				proc.snapshot(frame)
			default:
				continue
			}
		}
	}
}

func (proc *snapshotProcess) snapshot(frame video.Frame) {
	defer frame.Close()
	if time.Since(proc.lastSnapshot) < proc.interval {
		return
	}
	if err := proc.storage.SaveSnapshot(frame.Timestamp(), frame); err != nil {
		log.Error(fmt.Errorf("Unable to save snapshot from stream [%s]: %w", proc.title, err).Error())
		return
	}
	proc.lastSnapshot = time.Now()
}

func (proc *snapshotProcess) drainRemaining() {
	for {
		select {
		case frame := <-proc.frames:
			frame.Close()
		default:
			return
		}
	}
}

func (proc *snapshotProcess) Stop() {
	proc.cancel()
}

func (proc *snapshotProcess) Wait() {
	<-proc.stopping
}
