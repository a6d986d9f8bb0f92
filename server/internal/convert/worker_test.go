package convert

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/marcopiovanello/yt-fetch/server/internal"
)

type fakeTranscoder struct {
	mu    sync.Mutex
	calls int
	err   error
}

func (f *fakeTranscoder) Transcode(_ context.Context, src, dst string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.calls++
	if f.err != nil {
		os.WriteFile(dst, []byte("half"), 0644)
		return f.err
	}
	return os.WriteFile(dst, []byte("mp3"), 0644)
}

type fakeTagger struct {
	mu     sync.Mutex
	tagged map[string]string
}

func (f *fakeTagger) Tag(path string, info internal.MediaInfo) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.tagged[path] = info.Uploader
	return nil
}

func collect(t *testing.T, events chan internal.MediaInfo, terminal ...internal.Status) []internal.MediaInfo {
	t.Helper()

	var got []internal.MediaInfo
	for {
		select {
		case m := <-events:
			got = append(got, m)
			for _, s := range terminal {
				if m.Status == s {
					return got
				}
			}
		case <-time.After(5 * time.Second):
			t.Fatal("timed out waiting for events")
		}
	}
}

func finishedAudio(dir string) internal.MediaInfo {
	return internal.MediaInfo{
		Id:              "abc",
		Title:           "Song",
		Uploader:        "Band",
		Status:          internal.StatusFinished,
		Filetype:        internal.Audio,
		BestAudio:       &internal.Stream{Ext: "m4a"},
		DestinationPath: filepath.Join(dir, "Song.m4a"),
	}
}

func setup(t *testing.T, tr *fakeTranscoder) (*Worker, *fakeTagger, chan internal.MediaInfo, string) {
	t.Helper()

	dir := t.TempDir()
	events := make(chan internal.MediaInfo, 16)
	tagger := &fakeTagger{tagged: map[string]string{}}

	w := NewWorker(dir, "mp3", tr, tagger, func(m internal.MediaInfo) { events <- m })

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	go w.Run(ctx)

	return w, tagger, events, dir
}

func TestConvert(t *testing.T) {
	tr := &fakeTranscoder{}
	w, tagger, events, dir := setup(t, tr)

	info := finishedAudio(dir)
	os.WriteFile(info.DestinationPath, []byte("m4a"), 0644)

	if err := w.Submit(info); err != nil {
		t.Fatal(err)
	}

	got := collect(t, events, internal.StatusConverted, internal.StatusError)
	if len(got) != 2 || got[0].Status != internal.StatusConverting || got[1].Status != internal.StatusConverted {
		t.Fatalf("unexpected events: %+v", got)
	}

	dst := filepath.Join(dir, "Song.mp3")
	if got[1].DestinationPath != dst {
		t.Fatalf("unexpected destination %s", got[1].DestinationPath)
	}
	if _, err := os.Stat(info.DestinationPath); !os.IsNotExist(err) {
		t.Fatal("source should be removed")
	}
	if tagger.tagged[dst] != "Band" {
		t.Fatalf("expected artist tag, got %v", tagger.tagged)
	}
}

func TestConvertSkipIfPresent(t *testing.T) {
	tr := &fakeTranscoder{}
	w, _, events, dir := setup(t, tr)

	os.WriteFile(filepath.Join(dir, "Song.mp3"), []byte("mp3"), 0644)
	w.Submit(finishedAudio(dir))

	got := collect(t, events, internal.StatusConverted, internal.StatusError)
	if len(got) != 1 || got[0].Status != internal.StatusConverted {
		t.Fatalf("unexpected events: %+v", got)
	}
	if tr.calls != 0 {
		t.Fatalf("transcoder should not run, got %d calls", tr.calls)
	}
}

func TestConvertFailurePreservesSource(t *testing.T) {
	tr := &fakeTranscoder{err: internal.ErrTranscode}
	w, _, events, dir := setup(t, tr)

	info := finishedAudio(dir)
	os.WriteFile(info.DestinationPath, []byte("m4a"), 0644)
	w.Submit(info)

	got := collect(t, events, internal.StatusConverted, internal.StatusError)
	last := got[len(got)-1]
	if last.Status != internal.StatusError || last.Error == "" {
		t.Fatalf("expected an error event, got %+v", last)
	}

	if _, err := os.Stat(info.DestinationPath); err != nil {
		t.Fatal("source must be preserved on failure")
	}
	if _, err := os.Stat(filepath.Join(dir, "Song.mp3")); !os.IsNotExist(err) {
		t.Fatal("half-written target must be removed")
	}
}

func TestConvertRejectsVideo(t *testing.T) {
	w, _, _, dir := setup(t, &fakeTranscoder{})

	info := finishedAudio(dir)
	info.Filetype = internal.Video

	if err := w.Submit(info); !errors.Is(err, ErrNotAudio) {
		t.Fatalf("expected ErrNotAudio, got %v", err)
	}
}
