package videostorage

import (
	"database/sql"

	"github.com/tauraamui/prismdaemon/pkg/video/videoframe"
	"github.com/tauraamui/xerror"

	_ "github.com/mattn/go-sqlite3"
)

// Storage persists stylized stills so a stream's output can be
// sampled later without keeping whole clips around.
type Storage interface {
	SaveSnapshot(time int64, frame videoframe.NoCloser) error
	Close() error
}

func NewStorage(path string) (Storage, error) {
	return newSQLite3Storage(path)
}

const SQLITE_INMEM_FILE_PATH = "file::memory:?cache=shared"

type sqlite3Storage struct {
	db *sql.DB
}

func newSQLite3Storage(path string) (*sqlite3Storage, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, err
	}

	s := sqlite3Storage{db}
	if err := s.init(); err != nil {
		return nil, err
	}

	return &s, nil
}

func (s *sqlite3Storage) init() error {
	_, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS snapshots(
			dt INTEGER,
			width INTEGER,
			height INTEGER,
			data BLOB,
			PRIMARY KEY(dt)
		) WITHOUT ROWID;
	`)

	return err
}

func (s *sqlite3Storage) SaveSnapshot(time int64, frame videoframe.NoCloser) error {
	blob, err := convertFrameToBlob(frame)
	if err != nil {
		return err
	}

	dimensions := frame.Dimensions()
	_, err = s.db.Exec(
		"INSERT OR REPLACE INTO snapshots(dt, width, height, data) VALUES (?, ?, ?, ?);",
		time, dimensions.W, dimensions.H, blob,
	)
	return err
}

func (s *sqlite3Storage) Close() error {
	return s.db.Close()
}

func convertFrameToBlob(frame videoframe.NoCloser) ([]byte, error) {
	b, ok := frame.(interface{ ToBytes() []byte })
	if !ok {
		return nil, xerror.New("frame does not support byte serialisation")
	}
	return b.ToBytes(), nil
}
