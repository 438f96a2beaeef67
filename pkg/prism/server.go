package prism

import (
	"context"
	"sync"
	"time"

	"github.com/tauraamui/prismdaemon/pkg/camera"
	"github.com/tauraamui/prismdaemon/pkg/common"
	"github.com/tauraamui/prismdaemon/pkg/configdef"
	"github.com/tauraamui/prismdaemon/pkg/log"
	"github.com/tauraamui/prismdaemon/pkg/prism/process"
	"github.com/tauraamui/prismdaemon/pkg/styler"
	"github.com/tauraamui/prismdaemon/pkg/video"
	"github.com/tauraamui/prismdaemon/pkg/video/videostorage"
	"github.com/tauraamui/xerror"
)

type Server interface {
	Connect() []error
	ConnectWithCancel(context.Context) []error
	LoadConfiguration() error
	SetupProcesses()
	RunProcesses()
	Shutdown() chan interface{}
	APIFetchActiveStreams() []common.StreamData
	APISwitchStyle(streamUUID, modelPath string) error
}

func NewServer(resolver configdef.Resolver, videoBackend video.Backend, stylerBackend styler.Backend) Server {
	return &server{
		configResolver: resolver,
		videoBackend:   videoBackend,
		stylerBackend:  stylerBackend,
		sizeCache:      newSizeOnDiskCache(),
	}
}

// connectedStream pairs a live camera connection with the styler
// loaded for it and the config block both came from.
type connectedStream struct {
	cam          camera.Connection
	styler       styler.Styler
	videoBackend video.Backend
	sett         configdef.Stream
}

type server struct {
	configResolver configdef.Resolver
	videoBackend   video.Backend
	stylerBackend  styler.Backend
	shutdownDone   chan interface{}
	config         configdef.Values
	mu             sync.Mutex
	streams        []*connectedStream
	coreProcesses  map[string]process.CoreProcess
	storage        videostorage.Storage
	sizeCache      *sizeOnDiskCache
}

func (s *server) Connect() []error {
	return s.connect(context.Background())
}

func (s *server) ConnectWithCancel(cancel context.Context) []error {
	return s.connect(cancel)
}

func (s *server) connect(cancel context.Context) []error {
	s.shutdownDone = make(chan interface{})
	var errs []error

	s.mu.Lock()
	defer s.mu.Unlock()
	for _, stream := range s.config.Streams {
		select {
		case <-cancel.Done():
			return nil
		default:
			if stream.Disabled {
				log.Warn("Stream [%s] is disabled... skipping...", stream.Title)
				continue
			}

			conn, err := s.connectToStream(cancel, stream)
			if err != nil {
				errs = append(errs, err)
				continue
			}

			stylr, err := s.loadStyler(cancel, stream)
			if err != nil {
				errs = append(errs, err)
				conn.cam.Close()
				continue
			}
			conn.styler = stylr

			log.Info("Connected successfully to stream: [%s]", stream.Title)
			s.streams = append(s.streams, conn)
		}
	}
	return errs
}

func (s *server) connectToStream(cancel context.Context, stream configdef.Stream) (*connectedStream, error) {
	log.Info("Connecting to stream: [%s]...", stream.Title)

	backend := s.videoBackend
	if stream.MockCapturer {
		backend = video.MockBackend()
	}

	settings := camera.Settings{
		DateTimeFormat:   stream.DateTimeFormat,
		DateTimeLabel:    stream.DateTimeLabel,
		FPS:              stream.FPS,
		PersistLocation:  stream.PersistLoc,
		Record:           stream.Record,
		SecondsPerClip:   stream.SecondsPerClip,
		SnapshotInterval: time.Duration(stream.SnapshotIntervalSecs) * time.Second,
		Schedule:         stream.Schedule,
	}

	cam, err := camera.ConnectWithCancel(cancel, stream.Title, stream.Address, settings, backend)
	if err != nil {
		return nil, err
	}
	return &connectedStream{cam: cam, videoBackend: backend, sett: stream}, nil
}

// loadStyler resolves the model behind a stream. A model which fails
// to load only takes its own stream down, the rest carry on.
func (s *server) loadStyler(cancel context.Context, stream configdef.Stream) (styler.Styler, error) {
	backend := s.stylerBackend
	if stream.MockStyler {
		backend = styler.Mock()
	}

	stylr, err := backend.Load(cancel, stream.StyleModel)
	if err != nil {
		return nil, xerror.Errorf("unable to load style model for stream [%s]: %w", stream.Title, err)
	}
	return stylr, nil
}

func (s *server) LoadConfiguration() error {
	config, err := s.configResolver.Resolve()
	if err != nil {
		return err
	}

	s.config = config
	return nil
}

func (s *server) APIFetchActiveStreams() []common.StreamData {
	s.mu.Lock()
	defer s.mu.Unlock()

	streams := []common.StreamData{}
	for _, stream := range s.streams {
		data := common.StreamData{
			UUID:       stream.cam.UUID(),
			Title:      stream.cam.Title(),
			SizeOnDisk: "N/A",
		}
		if proc, ok := s.coreProcesses[stream.cam.UUID()]; ok {
			stats := proc.Stats()
			data.StyleModel = proc.StylerModelPath()
			data.Stylized = stats.Stylized
			data.Dropped = stats.Dropped
			data.Failed = stats.Failed
		}
		if len(stream.sett.PersistLoc) > 0 {
			size, err := s.sizeCache.size(
				stream.cam.UUID(), stream.cam.PersistLocation()+"/"+stream.cam.Title(),
			)
			if err == nil {
				data.SizeOnDisk = size
			}
		}
		streams = append(streams, data)
	}
	return streams
}

func (s *server) APISwitchStyle(streamUUID, modelPath string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, stream := range s.streams {
		if stream.cam.UUID() != streamUUID {
			continue
		}
		proc, ok := s.coreProcesses[streamUUID]
		if !ok {
			return xerror.Errorf("stream [%s] has no running stylize pipeline", stream.cam.Title())
		}

		backend := s.stylerBackend
		if stream.sett.MockStyler {
			backend = styler.Mock()
		}
		stylr, err := backend.Load(context.Background(), modelPath)
		if err != nil {
			return xerror.Errorf("unable to load style model for stream [%s]: %w", stream.cam.Title(), err)
		}

		proc.SwitchStyler(stylr)
		stream.styler = stylr
		log.Info("Switched stream [%s] over to style model [%s]", stream.cam.Title(), modelPath)
		return nil
	}
	return xerror.Errorf("no active stream with UUID [%s]", streamUUID)
}

func (s *server) shutdown() {
	s.shutdownProcesses()

	s.mu.Lock()
	defer s.mu.Unlock()
	for _, stream := range s.streams {
		log.Warn("Closing stream connection: [%s]...", stream.cam.Title())
		stream.cam.Close()
		if stream.styler != nil {
			stream.styler.Close()
		}
	}
	s.streams = nil

	if s.storage != nil {
		s.storage.Close()
		s.storage = nil
	}
	s.sizeCache.close()

	if s.shutdownDone == nil {
		s.shutdownDone = make(chan interface{})
	}
	close(s.shutdownDone)
}

func (s *server) Shutdown() chan interface{} {
	s.shutdown()
	return s.shutdownDone
}
