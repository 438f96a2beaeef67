package process

import (
	"fmt"
	"sync"

	"github.com/tauraamui/prismdaemon/pkg/broadcast"
	"github.com/tauraamui/prismdaemon/pkg/camera"
	"github.com/tauraamui/prismdaemon/pkg/display"
	"github.com/tauraamui/prismdaemon/pkg/styler"
	"github.com/tauraamui/prismdaemon/pkg/video"
	"github.com/tauraamui/prismdaemon/pkg/video/videostorage"
)

// CoreProcess owns the full pipeline for one stream: capture,
// stylize, display, plus the optional recording and snapshot taps.
type CoreProcess interface {
	Process
	SwitchStyler(styler.Styler)
	StylerModelPath() string
	Stats() Stats
}

type Resources struct {
	Styler  styler.Styler
	Sink    display.Sink
	Writer  video.ClipWriter
	Storage videostorage.Storage
}

func NewCoreProcess(cam camera.Connection, res Resources) CoreProcess {
	return &stylizeStreamToDisplay{
		cam:         cam,
		res:         res,
		broadcaster: broadcast.New(0),
		frames:      make(chan video.Frame, 3),
		stylized:    make(chan video.Frame, 2),
		clips:       make(chan video.Clip, 3),
	}
}

type stylizeStreamToDisplay struct {
	cam            camera.Connection
	res            Resources
	broadcaster    *broadcast.Broadcaster
	frames         chan video.Frame
	stylized       chan video.Frame
	clips          chan video.Clip
	recordTap      chan video.Frame
	snapshotTap    chan video.Frame
	streamProcess  Process
	stylizeProcess StylizeProcess
	displayProcess Process
	generateClips  Process
	persistClips   Process
	saveSnapshots  Process
	tail           []Process
}

func (proc *stylizeStreamToDisplay) Setup() Process {
	var taps []chan video.Frame
	if proc.cam.Record() {
		proc.recordTap = make(chan video.Frame, 3)
		taps = append(taps, proc.recordTap)
	}
	if proc.res.Storage != nil && proc.cam.SnapshotInterval() > 0 {
		proc.snapshotTap = make(chan video.Frame, 1)
		taps = append(taps, proc.snapshotTap)
	}

	proc.stylizeProcess = NewStylizeProcess(
		proc.cam.Title(), proc.res.Styler, proc.frames, proc.stylized, taps...,
	)
	proc.displayProcess = NewDisplayProcess(proc.cam.Title(), proc.res.Sink, proc.stylized)
	proc.streamProcess = NewStreamConnProcess(proc.broadcaster, proc.cam, proc.frames)

	proc.tail = []Process{proc.displayProcess}

	if proc.recordTap != nil {
		fullPersistLocation := fmt.Sprintf("%s/%s", proc.cam.PersistLocation(), proc.cam.Title())
		proc.generateClips = NewGenerateClipProcess(
			proc.broadcaster.Listen(), proc.recordTap, proc.clips,
			proc.cam.FPS()*proc.cam.SPC(), proc.cam.FPS(), fullPersistLocation,
		)
		proc.persistClips = NewPersistClipProcess(proc.clips, proc.res.Writer)
		proc.tail = append(proc.tail, proc.generateClips, proc.persistClips)
	}

	if proc.snapshotTap != nil {
		proc.saveSnapshots = NewSnapshotProcess(
			proc.cam.Title(), proc.snapshotTap, proc.res.Storage, proc.cam.SnapshotInterval(),
		)
		proc.tail = append(proc.tail, proc.saveSnapshots)
	}

	for _, p := range proc.all() {
		p.Setup()
	}
	return proc
}

func (proc *stylizeStreamToDisplay) all() []Process {
	procs := []Process{proc.streamProcess, proc.stylizeProcess}
	return append(procs, proc.tail...)
}

func (proc *stylizeStreamToDisplay) Start() {
	// Downstream consumers first so producers never fill dead buffers.
	for _, p := range proc.tail {
		p.Start()
	}
	proc.stylizeProcess.Start()
	proc.streamProcess.Start()
}

func (proc *stylizeStreamToDisplay) SwitchStyler(s styler.Styler) {
	proc.stylizeProcess.SwitchStyler(s)
}

func (proc *stylizeStreamToDisplay) StylerModelPath() string {
	return proc.stylizeProcess.StylerModelPath()
}

func (proc *stylizeStreamToDisplay) Stats() Stats {
	return proc.stylizeProcess.Stats()
}

// Stop halts capture before stylize and stylize before the sinks so
// every accepted frame still drains through the tail of the pipeline.
func (proc *stylizeStreamToDisplay) Stop() {
	proc.streamProcess.Stop()
	proc.streamProcess.Wait()
	proc.stylizeProcess.Stop()
	proc.stylizeProcess.Wait()
	for _, p := range proc.tail {
		p.Stop()
	}
}

func (proc *stylizeStreamToDisplay) Wait() {
	procs := proc.all()
	wg := sync.WaitGroup{}
	wg.Add(len(procs))
	for _, p := range procs {
		go func(wg *sync.WaitGroup, p Process) {
			p.Wait()
			wg.Done()
		}(&wg, p)
	}
	wg.Wait()
}
