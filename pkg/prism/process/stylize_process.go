package process

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/tauraamui/prismdaemon/pkg/gate"
	"github.com/tauraamui/prismdaemon/pkg/log"
	"github.com/tauraamui/prismdaemon/pkg/styler"
	"github.com/tauraamui/prismdaemon/pkg/video"
)

// Stats counts the fates of every frame offered to a stylize process.
type Stats struct {
	Stylized int64
	Dropped  int64
	Failed   int64
}

// StylizeProcess runs frames through a style transfer model one at a
// time. Frames arriving while one is mid-inference are dropped, never
// queued, the newest accepted frame always reflects a recent capture.
type StylizeProcess interface {
	Process
	SwitchStyler(styler.Styler)
	StylerModelPath() string
	Stats() Stats
}

type stylizeProcess struct {
	ctx      context.Context
	cancel   context.CancelFunc
	stopping chan interface{}
	title    string
	gate     *gate.Gate
	mu       sync.RWMutex
	styler   styler.Styler
	inflight sync.WaitGroup
	frames   chan video.Frame
	dest     chan video.Frame
	taps     []chan video.Frame
	stylized int64
	dropped  int64
	failed   int64
}

func NewStylizeProcess(
	title string, s styler.Styler, frames, dest chan video.Frame, taps ...chan video.Frame,
) StylizeProcess {
	ctx, cancel := context.WithCancel(context.Background())
	return &stylizeProcess{
		ctx: ctx, cancel: cancel,
		title:  title,
		gate:   gate.New(),
		styler: s,
		frames: frames, dest: dest, taps: taps,
		stopping: make(chan interface{}),
	}
}

func (proc *stylizeProcess) Setup() Process { return proc }

func (proc *stylizeProcess) Start() {
	go proc.run()
}

func (proc *stylizeProcess) run() {
	for {
		time.Sleep(1 * time.Microsecond)
		select {
		case <-proc.ctx.Done():
			proc.inflight.Wait()
			proc.drainRemaining()
			close(proc.stopping)
			return
		default:
			select {
			case frame := <-proc.frames:
				proc.admit(frame)
			default:
				continue
			}
		}
	}
}

// admit applies the drop-latest policy. The gate holds a single slot,
// a frame arriving while the slot is taken is closed and counted,
// never queued and never waited on.
func (proc *stylizeProcess) admit(frame video.Frame) {
	if !proc.gate.TryAcquire() {
		frame.Close()
		atomic.AddInt64(&proc.dropped, 1)
		log.Debug("Stylize busy, dropping frame from stream [%s]", proc.title)
		return
	}
	proc.inflight.Add(1)
	go proc.dispatch(frame)
}

func (proc *stylizeProcess) dispatch(frame video.Frame) {
	defer proc.inflight.Done()

	styled, err := proc.applyStyle(frame)
	if err != nil {
		atomic.AddInt64(&proc.failed, 1)
		log.Error(fmt.Errorf("Unable to stylize frame from stream [%s]: %w", proc.title, err).Error())
		return
	}
	atomic.AddInt64(&proc.stylized, 1)
	proc.forward(styled)
}

// applyStyle owns the gate slot for exactly the span of the
// inference. The slot is handed back once the model returns,
// delivery happens outside it.
func (proc *stylizeProcess) applyStyle(frame video.Frame) (video.Frame, error) {
	defer func() {
		if !proc.gate.Release() {
			log.Error("Stylize slot for stream [%s] released more than once", proc.title)
		}
	}()
	defer frame.Close()

	proc.mu.RLock()
	defer proc.mu.RUnlock()
	return proc.styler.Apply(proc.ctx, frame)
}

func (proc *stylizeProcess) forward(styled video.Frame) {
	for _, tap := range proc.taps {
		clone := styled.Clone()
		select {
		case tap <- clone:
		default:
			clone.Close()
		}
	}
	select {
	case proc.dest <- styled:
		log.Debug("Sending stylized frame from stream [%s] to buffer...", proc.title)
	default:
		styled.Close()
		log.Debug("Stylized buffer full...")
	}
}

// drainRemaining closes frames still queued at shutdown so their
// mats are not leaked.
func (proc *stylizeProcess) drainRemaining() {
	for {
		select {
		case frame := <-proc.frames:
			frame.Close()
		default:
			return
		}
	}
}

// SwitchStyler swaps the model behind the process. Waits for any
// in-flight inference to finish before closing the old styler.
func (proc *stylizeProcess) SwitchStyler(s styler.Styler) {
	proc.mu.Lock()
	old := proc.styler
	proc.styler = s
	proc.mu.Unlock()
	if old != nil {
		if err := old.Close(); err != nil {
			log.Error(fmt.Errorf("Unable to close styler for stream [%s]: %w", proc.title, err).Error())
		}
	}
}

func (proc *stylizeProcess) StylerModelPath() string {
	proc.mu.RLock()
	defer proc.mu.RUnlock()
	return proc.styler.ModelPath()
}

func (proc *stylizeProcess) Stats() Stats {
	return Stats{
		Stylized: atomic.LoadInt64(&proc.stylized),
		Dropped:  atomic.LoadInt64(&proc.dropped),
		Failed:   atomic.LoadInt64(&proc.failed),
	}
}

func (proc *stylizeProcess) Stop() {
	proc.cancel()
}

func (proc *stylizeProcess) Wait() {
	<-proc.stopping
}
