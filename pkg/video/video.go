package video

import (
	"context"

	"github.com/tauraamui/prismdaemon/pkg/video/videobackend"
	"github.com/tauraamui/prismdaemon/pkg/video/videoclip"
	"github.com/tauraamui/prismdaemon/pkg/video/videoframe"
)

type (
	Backend    = videobackend.Backend
	Connection = videobackend.Connection
	Frame      = videoframe.Frame
	Clip       = videoclip.Clip
	ClipWriter = videoclip.Writer
)

func NewClip(persistLocation string, fps int) Clip {
	return videoclip.New(persistLocation, fps)
}

func Connect(addr string, backend Backend) (Connection, error) {
	return ConnectWithCancel(context.Background(), addr, backend)
}

func ConnectWithCancel(cancel context.Context, addr string, backend Backend) (Connection, error) {
	return backend.Connect(cancel, addr)
}

func DefaultBackend() Backend {
	return videobackend.Default()
}

func MockBackend() Backend {
	return videobackend.Mock()
}

func ResolveBackend(t string) Backend {
	return videobackend.Resolve(t)
}
