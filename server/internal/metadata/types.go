package metadata

// Subset of the yt-dlp info dict needed to build a preview.
type Result struct {
	Type      string   `json:"_type"`
	Id        string   `json:"id"`
	Title     string   `json:"title"`
	Uploader  string   `json:"uploader"`
	Channel   string   `json:"channel"`
	Thumbnail string   `json:"thumbnail"`
	Formats   []Format `json:"formats"`
	Entries   []Entry  `json:"entries"`
}

func (r *Result) IsPlaylist() bool { return r.Type == "playlist" }

// yt-dlp reports "none" for a missing codec and may omit the size.
type Format struct {
	FormatId       string `json:"format_id"`
	URL            string `json:"url"`
	Ext            string `json:"ext"`
	ACodec         string `json:"acodec"`
	VCodec         string `json:"vcodec"`
	Filesize       *int64 `json:"filesize"`
	FilesizeApprox *int64 `json:"filesize_approx"`
}

func (f *Format) HasAudio() bool { return f.ACodec != "" && f.ACodec != "none" }

func (f *Format) HasVideo() bool { return f.VCodec != "" && f.VCodec != "none" }

// Size is the declared filesize, 0 when unknown.
func (f *Format) Size() int64 {
	if f.Filesize != nil {
		return *f.Filesize
	}
	if f.FilesizeApprox != nil {
		return *f.FilesizeApprox
	}
	return 0
}

type Entry struct {
	Id  string `json:"id"`
	URL string `json:"url"`
}
