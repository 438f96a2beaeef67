package config

import (
	"github.com/tauraamui/prismdaemon/internal/config"
	"github.com/tauraamui/prismdaemon/pkg/configdef"
)

func DefaultCreator() configdef.Creator {
	return config.DefaultCreator()
}

func DefaultDestroyer() configdef.Destroyer {
	return config.DefaultDestroyer()
}
