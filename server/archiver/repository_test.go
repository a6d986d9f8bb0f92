package archiver

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/marcopiovanello/yt-fetch/server/internal"
)

func TestRepositoryArchiveAndList(t *testing.T) {
	repo, err := OpenRepository(filepath.Join(t.TempDir(), "archive.db"))
	if err != nil {
		t.Fatal(err)
	}
	defer repo.Close()

	ctx := context.Background()

	for _, title := range []string{"first", "second", "third"} {
		_, err := repo.Archive(ctx, internal.MediaInfo{
			Id:       title,
			Title:    title,
			Status:   internal.StatusConverted,
			Filetype: internal.Audio,
		})
		if err != nil {
			t.Fatal(err)
		}
	}

	all, err := repo.List(ctx, 10)
	if err != nil {
		t.Fatal(err)
	}
	if len(all) != 3 {
		t.Fatalf("expected 3 entries, got %d", len(all))
	}

	limited, _ := repo.List(ctx, 2)
	if len(limited) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(limited))
	}

	for _, e := range all {
		if e.Status != string(internal.StatusConverted) || e.Filetype != "Audio" {
			t.Fatalf("unexpected entity %+v", e)
		}
	}
}

func TestArchiverRun(t *testing.T) {
	repo, err := OpenRepository(filepath.Join(t.TempDir(), "archive.db"))
	if err != nil {
		t.Fatal(err)
	}
	defer repo.Close()

	ctx, cancel := context.WithCancel(context.Background())
	a := New(repo)

	done := make(chan struct{})
	go func() {
		a.Run(ctx)
		close(done)
	}()

	a.Publish(internal.MediaInfo{Id: "x", Title: "x", Status: internal.StatusFinished})

	for i := 0; i < 100; i++ {
		if all, _ := repo.List(ctx, 1); len(all) == 1 {
			cancel()
			<-done
			return
		}
		waitABit()
	}

	cancel()
	t.Fatal("entry was never archived")
}

func waitABit() { time.Sleep(20 * time.Millisecond) }
