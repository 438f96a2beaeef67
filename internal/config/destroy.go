package config

import "github.com/tauraamui/xerror"

func destroy() error {
	path, err := resolveConfigPath()
	if err != nil {
		return xerror.Errorf("unable to delete config file: %w", err)
	}

	return fs.Remove(path)
}
