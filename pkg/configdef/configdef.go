package configdef

import (
	"errors"
	"fmt"

	"github.com/tauraamui/prismdaemon/pkg/config/schedule"
	validate "gopkg.in/dealancer/validate.v2"
)

type Stream struct {
	Title                string            `json:"title" validate:"empty=false"`
	Address              string            `json:"address"`
	StyleModel           string            `json:"style_model" validate:"empty=false"`
	FPS                  int               `json:"fps" validate:"gte=1 & lte=30"`
	DateTimeLabel        bool              `json:"date_time_label"`
	DateTimeFormat       string            `json:"date_time_format"`
	MockCapturer         bool              `json:"mock_capturer"`
	MockStyler           bool              `json:"mock_styler"`
	MockWindow           bool              `json:"mock_window"`
	Record               bool              `json:"record"`
	PersistLoc           string            `json:"persist_location"`
	SecondsPerClip       int               `json:"seconds_per_clip" validate:"gte=0 & lte=10"`
	SnapshotIntervalSecs int               `json:"snapshot_interval_secs" validate:"gte=0 & lte=3600"`
	Disabled             bool              `json:"disabled"`
	Schedule             schedule.Week     `json:"schedule"`
}

type Values struct {
	Debug            bool     `json:"debug"`
	Secret           string   `json:"secret"`
	RPCListenPort    string   `json:"rpc_listen_port"`
	MaxClipAgeInDays int      `json:"max_clip_age_in_days" validate:"gte=1 & lte=30"`
	Streams          []Stream `json:"streams"`
}

// RunValidate applies the struct tag validators and then the
// cross field checks which tags cannot express.
func (v Values) RunValidate() error {
	if err := validate.Validate(&v); err != nil {
		return err
	}
	return v.Validate()
}

func (v Values) Validate() error {
	const validationErrorHeader = "validation failed: %w"
	if hasDupStreamTitles(v.Streams) {
		return fmt.Errorf(validationErrorHeader, errors.New("stream titles must be unique"))
	}
	for _, s := range v.Streams {
		if s.Record && len(s.PersistLoc) == 0 {
			return fmt.Errorf(
				validationErrorHeader,
				fmt.Errorf("stream %q records but has no persist location", s.Title),
			)
		}
	}
	return nil
}

func hasDupStreamTitles(streams []Stream) bool {
	for si, stream := range streams {
		for i := si + 1; i < len(streams); i++ {
			if stream.Title == streams[i].Title {
				return true
			}
		}
	}
	return false
}
