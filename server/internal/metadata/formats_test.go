package metadata

import "testing"

func size(n int64) *int64 { return &n }

func TestSelectBest(t *testing.T) {
	formats := []Format{
		{FormatId: "18", URL: "av500", Ext: "mp4", ACodec: "mp4a", VCodec: "avc1", Filesize: size(500)},
		{FormatId: "140", URL: "a300", Ext: "m4a", ACodec: "mp4a", VCodec: "none", Filesize: size(300)},
		{FormatId: "22", URL: "av200", Ext: "mp4", ACodec: "mp4a", VCodec: "avc1", Filesize: size(200)},
		{FormatId: "137", URL: "v900", Ext: "mp4", ACodec: "none", VCodec: "avc1", Filesize: size(900)},
	}

	video, audio := SelectBest(formats)

	if video == nil || video.URL != "av500" {
		t.Fatalf("unexpected video: %+v", video)
	}
	if audio == nil || audio.URL != "a300" {
		t.Fatalf("unexpected audio: %+v", audio)
	}
	if video.Filesize != 500 || audio.Filesize != 300 {
		t.Fatalf("unexpected sizes: %d %d", video.Filesize, audio.Filesize)
	}
}

func TestSelectBestFallback(t *testing.T) {
	formats := []Format{
		{URL: "av100", Ext: "mp4", ACodec: "mp4a", VCodec: "avc1", Filesize: size(100)},
	}

	video, audio := SelectBest(formats)
	if video == nil {
		t.Fatal("expected a video candidate")
	}
	if audio != video {
		t.Fatal("audio should fall back to the video record")
	}
}

func TestSelectBestUnknownSize(t *testing.T) {
	formats := []Format{
		{URL: "unknown", Ext: "webm", ACodec: "opus", VCodec: "none"},
		{URL: "approx", Ext: "m4a", ACodec: "mp4a", VCodec: "none", FilesizeApprox: size(10)},
		{URL: "zero", Ext: "m4a", ACodec: "mp4a", VCodec: "none", Filesize: size(0)},
	}

	_, audio := SelectBest(formats)
	if audio == nil || audio.URL != "approx" {
		t.Fatalf("unexpected audio: %+v", audio)
	}
}

func TestSelectBestOnlyZeroSizes(t *testing.T) {
	formats := []Format{
		{URL: "first", Ext: "webm", ACodec: "opus", VCodec: "none", Filesize: size(0)},
		{URL: "second", Ext: "m4a", ACodec: "mp4a", VCodec: "none"},
	}

	_, audio := SelectBest(formats)
	if audio == nil || audio.URL != "first" {
		t.Fatalf("expected the first zero-size candidate, got %+v", audio)
	}
}

func TestSelectBestNoAudio(t *testing.T) {
	formats := []Format{
		{URL: "v", ACodec: "none", VCodec: "avc1", Filesize: size(10)},
		{URL: "missing"},
	}

	video, audio := SelectBest(formats)
	if video != nil || audio != nil {
		t.Fatalf("expected no candidates, got %+v %+v", video, audio)
	}
}
