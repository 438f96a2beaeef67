package prism

import (
	"os"
	"path/filepath"
	"sync"

	"github.com/tauraamui/prismdaemon/pkg/display"
	"github.com/tauraamui/prismdaemon/pkg/log"
	"github.com/tauraamui/prismdaemon/pkg/prism/process"
	"github.com/tauraamui/prismdaemon/pkg/video/videostorage"
)

func (s *server) SetupProcesses() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.coreProcesses = map[string]process.CoreProcess{}
	for _, stream := range s.streams {
		proc := process.NewCoreProcess(stream.cam, process.Resources{
			Styler:  stream.styler,
			Sink:    resolveSink(stream),
			Writer:  stream.videoBackend.NewWriter(),
			Storage: s.resolveSnapshotStorage(stream),
		})
		proc.Setup()
		s.coreProcesses[stream.cam.UUID()] = proc
	}
}

func resolveSink(stream *connectedStream) display.Sink {
	if stream.sett.MockWindow {
		return display.Mock()
	}
	return display.Default(stream.cam.Title())
}

// resolveSnapshotStorage opens the shared snapshot store the first
// time a stream wants snapshots. A store which fails to open only
// costs the snapshots, the stream still runs.
func (s *server) resolveSnapshotStorage(stream *connectedStream) videostorage.Storage {
	if stream.cam.SnapshotInterval() <= 0 {
		return nil
	}
	if s.storage == nil {
		storage, err := openSnapshotStorage()
		if err != nil {
			log.Error("Unable to open snapshot storage: %v...", err)
			return nil
		}
		s.storage = storage
	}
	return s.storage
}

var openSnapshotStorage = func() (videostorage.Storage, error) {
	cacheDir, err := os.UserCacheDir()
	if err != nil {
		return nil, err
	}

	root := filepath.Join(cacheDir, "tacusci", "prismdaemon")
	if err := fs.MkdirAll(root, os.ModePerm|os.ModeDir); err != nil && !os.IsExist(err) {
		return nil, err
	}
	return videostorage.NewStorage(filepath.Join(root, "snapshots.db"))
}

func (s *server) RunProcesses() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, proc := range s.coreProcesses {
		proc.Start()
	}
}

func (s *server) shutdownProcesses() {
	s.mu.Lock()
	defer s.mu.Unlock()

	wg := sync.WaitGroup{}
	wg.Add(len(s.coreProcesses))
	for _, proc := range s.coreProcesses {
		go func(wg *sync.WaitGroup, proc process.Process) {
			proc.Stop()
			proc.Wait()
			wg.Done()
		}(&wg, proc)
	}
	wg.Wait()
	s.coreProcesses = nil
}