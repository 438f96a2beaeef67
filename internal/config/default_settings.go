package config

import "github.com/tauraamui/prismdaemon/pkg/configdef"

type defaultSettingKey uint

const (
	MAXCLIPAGEINDAYS defaultSettingKey = 0x0
	STREAMS          defaultSettingKey = 0x1
	DATETIMEFORMAT   defaultSettingKey = 0x2
	SECONDSPERCLIP   defaultSettingKey = 0x3
)

var defaultSettings = map[defaultSettingKey]interface{}{
	MAXCLIPAGEINDAYS: 30,
	STREAMS:          []configdef.Stream{},
	DATETIMEFORMAT:   "2006/01/02 15:04:05.999999999",
	SECONDSPERCLIP:   3,
}
