package videostorage_test

import (
	"testing"

	"github.com/matryer/is"
	"github.com/stretchr/testify/require"
	"github.com/tauraamui/prismdaemon/pkg/video/videoframe"
	"github.com/tauraamui/prismdaemon/pkg/video/videostorage"
)

type testFrame struct {
	data []byte
}

func (frame *testFrame) DataRef() interface{} { return frame.data }

func (frame *testFrame) Dimensions() videoframe.Dimensions {
	return videoframe.Dimensions{W: 2, H: 2}
}

func (frame *testFrame) Timestamp() int64 { return 0 }

func (frame *testFrame) ToBytes() []byte { return frame.data }

type byteslessFrame struct{ testFrame }

func (frame *byteslessFrame) ToBytes() {} // wrong signature on purpose

func TestNewStorage(t *testing.T) {
	is := is.New(t)
	storage, err := videostorage.NewStorage(videostorage.SQLITE_INMEM_FILE_PATH)
	is.NoErr(err)
	is.True(storage != nil)
	is.NoErr(storage.Close())
}

func TestSaveSnapshotPersistsFrameBytes(t *testing.T) {
	is := is.New(t)
	storage, err := videostorage.NewStorage(videostorage.SQLITE_INMEM_FILE_PATH)
	require.NoError(t, err)
	defer storage.Close()

	frame := testFrame{data: []byte{0xDE, 0xAD, 0xBE, 0xEF}}
	is.NoErr(storage.SaveSnapshot(1616000000, &frame))
}

func TestSaveSnapshotOfUnserialisableFrameReturnsError(t *testing.T) {
	is := is.New(t)
	storage, err := videostorage.NewStorage(videostorage.SQLITE_INMEM_FILE_PATH)
	require.NoError(t, err)
	defer storage.Close()

	err = storage.SaveSnapshot(1616000000, &byteslessFrame{})
	is.True(err != nil)
	is.Equal(err.Error(), "frame does not support byte serialisation")
}
