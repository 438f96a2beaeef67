package config

import (
	"encoding/json"
	"sync"

	"github.com/pkg/errors"
	"github.com/spf13/afero"
	"github.com/tauraamui/prismdaemon/pkg/configdef"
	"github.com/tauraamui/prismdaemon/pkg/log"
)

func load() (configdef.Values, error) {
	var values configdef.Values

	configPath, err := resolveConfigPath()
	if err != nil {
		return configdef.Values{}, err
	}

	log.Info("Resolved config file location: %s", configPath)
	file, err := readConfigFile(configPath)
	if err != nil {
		return configdef.Values{}, err
	}

	if err := unmarshal(file, &values); err != nil {
		return configdef.Values{}, err
	}

	if err = values.RunValidate(); err != nil {
		return configdef.Values{}, err
	}

	loadDefaultStreamSettings(values.Streams)

	return values, nil
}

func loadDefaultStreamSettings(streams []configdef.Stream) {
	wg := sync.WaitGroup{}
	for i := 0; i < len(streams); i++ {
		wg.Add(1)
		go func(wg *sync.WaitGroup, stream *configdef.Stream) {
			defer wg.Done()
			if len(stream.DateTimeFormat) == 0 {
				stream.DateTimeFormat = defaultSettings[DATETIMEFORMAT].(string)
			}
			if stream.Record && stream.SecondsPerClip == 0 {
				stream.SecondsPerClip = defaultSettings[SECONDSPERCLIP].(int)
			}
		}(&wg, &streams[i])
	}
	wg.Wait()
}

var readConfigFile = func(path string) ([]byte, error) {
	return afero.ReadFile(fs, path)
}

func unmarshal(content []byte, values *configdef.Values) error {
	err := json.Unmarshal(content, values)
	if err != nil {
		return errors.Errorf("parsing configuration error: %v", err)
	}
	return nil
}
