package process

import (
	"context"
	"fmt"
	"time"

	"github.com/tauraamui/prismdaemon/pkg/display"
	"github.com/tauraamui/prismdaemon/pkg/log"
	"github.com/tauraamui/prismdaemon/pkg/video"
)

type displayProcess struct {
	ctx      context.Context
	cancel   context.CancelFunc
	stopping chan interface{}
	title    string
	sink     display.Sink
	frames   chan video.Frame
}

func NewDisplayProcess(title string, sink display.Sink, frames chan video.Frame) Process {
	ctx, cancel := context.WithCancel(context.Background())
	return &displayProcess{
		ctx: ctx, cancel: cancel,
		title: title, sink: sink, frames: frames,
		stopping: make(chan interface{}),
	}
}

func (proc *displayProcess) Setup() Process { return proc }

func (proc *displayProcess) Start() {
	go proc.run()
}

func (proc *displayProcess) run() {
	for {
		time.Sleep(1 * time.Microsecond)
		select {
		case <-proc.ctx.Done():
			proc.drainRemaining()
			if err := proc.sink.Close(); err != nil {
				log.Error(fmt.Errorf("Unable to close display sink for stream [%s]: %w", proc.title, err).Error())
			}
			close(proc.stopping)
			return
		default:
			select {
			case frame := <-proc.frames:
				proc.show(frame)
			default:
				continue
			}
		}
	}
}

func (proc *displayProcess) show(frame video.Frame) {
	defer frame.Close()
	if err := proc.sink.Show(frame); err != nil {
		log.Error(fmt.Errorf("Unable to show stylized frame from stream [%s]: %w", proc.title, err).Error())
	}
}

func (proc *displayProcess) drainRemaining() {
	for {
		select {
		case frame := <-proc.frames:
			frame.Close()
		default:
			return
		}
	}
}

func (proc *displayProcess) Stop() {
	proc.cancel()
}

func (proc *displayProcess) Wait() {
	<-proc.stopping
}
