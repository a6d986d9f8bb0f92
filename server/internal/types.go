package internal

// Filetype selects which of the two best streams a transfer uses.
type Filetype string

const (
	Audio Filetype = "Audio"
	Video Filetype = "Video"
)

func (f Filetype) Valid() bool { return f == Audio || f == Video }

// Stream describes a single downloadable format as reported by the extractor.
type Stream struct {
	URL      string `json:"url"`
	Ext      string `json:"ext"`
	ACodec   string `json:"acodec,omitempty"`
	VCodec   string `json:"vcodec,omitempty"`
	Filesize int64  `json:"filesize"`
}

// Snapshot of a media job as it travels through preview, transfer and convert.
//
// Workers never hand out their own copy: every status notification carries a
// value, so sinks can keep it without further synchronization.
type MediaInfo struct {
	RequestId       string   `json:"requestId"`
	Id              string   `json:"id"`
	URL             string   `json:"url"`
	Title           string   `json:"title"`
	Uploader        string   `json:"uploader"`
	Thumbnail       string   `json:"thumbnail,omitempty"`
	Status          Status   `json:"status"`
	Filetype        Filetype `json:"filetype,omitempty"`
	BestVideo       *Stream  `json:"bestVideo,omitempty"`
	BestAudio       *Stream  `json:"bestAudio,omitempty"`
	ProgressBytes   int64    `json:"progressBytes"`
	TotalBytes      int64    `json:"totalBytes"`
	Speed           float64  `json:"speed"`
	DestinationPath string   `json:"destinationPath,omitempty"`
	Error           string   `json:"error,omitempty"`
}

// Key identifies the snapshot in the live table: the media id once known,
// the preview request id before that.
func (m *MediaInfo) Key() string {
	if m.Id != "" {
		return m.Id
	}
	return m.RequestId
}

// Stream picked by the job filetype, nil if the preview found none.
func (m *MediaInfo) ActiveStream() *Stream {
	switch m.Filetype {
	case Audio:
		return m.BestAudio
	case Video:
		return m.BestVideo
	}
	return nil
}

func (m *MediaInfo) View() ProgressView {
	return NewProgressView(m.ProgressBytes, m.TotalBytes, m.Speed)
}

// StatusFunc receives every snapshot emitted by a worker.
type StatusFunc func(MediaInfo)
