package styler

import (
	"context"

	"github.com/tauraamui/prismdaemon/pkg/video/videoframe"
)

type mockStylerBackend struct{}

func (b *mockStylerBackend) Load(cancel context.Context, modelPath string) (Styler, error) {
	return &mockStyler{modelPath: modelPath}, nil
}

type mockStyler struct {
	modelPath string
}

func (s *mockStyler) ModelPath() string {
	return s.modelPath
}

// Apply hands back a copy of the input frame untouched.
func (s *mockStyler) Apply(ctx context.Context, frame videoframe.Frame) (videoframe.Frame, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return frame.Clone(), nil
}

func (s *mockStyler) Close() error {
	return nil
}
