package camera

import (
	"time"

	"github.com/tauraamui/prismdaemon/pkg/config/schedule"
)

type Settings struct {
	DateTimeFormat   string
	DateTimeLabel    bool
	FPS              int
	PersistLocation  string
	Record           bool
	SecondsPerClip   int
	SnapshotInterval time.Duration
	Schedule         schedule.Week
}
