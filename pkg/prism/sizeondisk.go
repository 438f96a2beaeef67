package prism

import (
	"fmt"
	"os"
	"time"

	"github.com/dgraph-io/ristretto"
	"github.com/spf13/afero"
	"github.com/tauraamui/prismdaemon/pkg/log"
)

var fs = afero.NewOsFs()

// sizeOnDiskCache memoises per stream footage directory sizes, the
// walk is too expensive to run on every API fetch.
type sizeOnDiskCache struct {
	cache *ristretto.Cache
}

func newSizeOnDiskCache() *sizeOnDiskCache {
	cache, err := ristretto.NewCache(&ristretto.Config{
		NumCounters: 100,
		MaxCost:     64,
		BufferItems: 64,
	})
	if err != nil {
		log.Error("Unable to intialise in-memory cache: %v...", err)
		return &sizeOnDiskCache{}
	}
	return &sizeOnDiskCache{cache: cache}
}

func (c *sizeOnDiskCache) size(uuid, path string) (string, error) {
	if c.cache != nil {
		if e, ok := c.cache.Get(uuid); ok {
			if size, ok := e.(string); ok {
				return size, nil
			}
		}
	}

	total, err := getDirSize(path)
	if err != nil {
		return "", err
	}

	size, unit := unitizeSize(total)
	resolved := fmt.Sprintf("%d%s", size, unit)
	if c.cache != nil {
		c.cache.SetWithTTL(uuid, resolved, 1, time.Minute*5)
	}
	return resolved, nil
}

func (c *sizeOnDiskCache) close() {
	if c.cache != nil {
		c.cache.Close()
	}
}

func getDirSize(path string) (int64, error) {
	var total int64
	err := afero.Walk(fs, path, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.Mode().IsRegular() {
			total += info.Size()
		}
		return nil
	})
	return total, err
}

func unitizeSize(total int64) (int64, string) {
	unit := "Kb"
	total /= 1024
	if total > 1024 {
		total /= 1024
		unit = "Mb"
		if total > 1024 {
			total /= 1024
			unit = "Gb"
		}
	}

	return total, unit
}
