package process

import (
	"context"
	"fmt"
	"time"

	"github.com/tauraamui/prismdaemon/pkg/broadcast"
	"github.com/tauraamui/prismdaemon/pkg/camera"
	"github.com/tauraamui/prismdaemon/pkg/config/schedule"
	"github.com/tauraamui/prismdaemon/pkg/log"
	"github.com/tauraamui/prismdaemon/pkg/video"
)

const STREAM_SWITCHED_OFF_EVT Event = 0x51

type streamConnProcess struct {
	ctx         context.Context
	cancel      context.CancelFunc
	broadcaster *broadcast.Broadcaster
	stopping    chan interface{}
	cam         camera.Connection
	isOff       bool
	wasOff      bool
	dest        chan video.Frame
}

func NewStreamConnProcess(broadcaster *broadcast.Broadcaster, cam camera.Connection, dest chan video.Frame) Process {
	ctx, cancel := context.WithCancel(context.Background())
	return &streamConnProcess{
		ctx: ctx, cancel: cancel,
		broadcaster: broadcaster,
		cam:         cam, dest: dest, stopping: make(chan interface{}),
	}
}

func (proc *streamConnProcess) Setup() Process { return proc }

func (proc *streamConnProcess) Start() {
	go proc.run()
}

func (proc *streamConnProcess) run() {
	for {
		time.Sleep(1 * time.Microsecond)
		select {
		case <-proc.ctx.Done():
			close(proc.stopping)
			return
		default:
			proc.isOff = !proc.cam.Schedule().IsOn(schedule.Time(time.Now()))
			if proc.isOff {
				if !proc.wasOff {
					proc.wasOff = true
					proc.broadcaster.Send(STREAM_SWITCHED_OFF_EVT)
				}
				continue
			}

			proc.wasOff = false
			stream(proc.cam, proc.dest)
		}
	}
}

// stream reads a single frame and try-sends it downstream. A full
// buffer means the frame is closed and dropped on the spot, reading
// never blocks behind slow consumers.
func stream(cam camera.Connection, frames chan video.Frame) {
	if cam.IsOpen() {
		log.Debug("Reading frame from vid stream for stream [%s]", cam.Title())
		frame, err := cam.Read()
		if err != nil {
			log.Error(fmt.Errorf("Unable to retrieve frame: %w. Auto re-connecting is not yet implemented", err).Error())
			return
		}
		select {
		case frames <- frame:
			log.Debug("Sending frame from stream to buffer...")
		default:
			frame.Close()
			log.Debug("Buffer full...")
		}
	}
}

func (proc *streamConnProcess) Stop() {
	proc.cancel()
}

func (proc *streamConnProcess) Wait() {
	<-proc.stopping
}
