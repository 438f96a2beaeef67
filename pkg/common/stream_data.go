package common

// StreamData is the API facing snapshot of a single running stream.
type StreamData struct {
	UUID       string
	Title      string
	StyleModel string
	Stylized   int64
	Dropped    int64
	Failed     int64
	SizeOnDisk string
}
