package config

import (
	"github.com/tauraamui/prismdaemon/internal/config"
	"github.com/tauraamui/prismdaemon/pkg/configdef"
)

func DefaultResolver() configdef.Resolver {
	return config.DefaultResolver()
}
