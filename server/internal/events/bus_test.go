package events

import (
	"sync"
	"testing"

	"github.com/marcopiovanello/yt-fetch/server/internal"
)

func TestBusDeliversInOrder(t *testing.T) {
	b := NewBus()

	var (
		mu  sync.Mutex
		got []internal.Status
	)

	err := b.Subscribe(func(m internal.MediaInfo) {
		mu.Lock()
		got = append(got, m.Status)
		mu.Unlock()
	})
	if err != nil {
		t.Fatal(err)
	}

	sequence := []internal.Status{
		internal.StatusQueued,
		internal.StatusDownloading,
		internal.StatusDownloading,
		internal.StatusFinished,
	}
	for _, s := range sequence {
		b.Publish(internal.MediaInfo{Id: "a", Status: s})
	}

	b.Wait()

	mu.Lock()
	defer mu.Unlock()
	if len(got) != len(sequence) {
		t.Fatalf("expected %d deliveries, got %d", len(sequence), len(got))
	}
	for i := range sequence {
		if got[i] != sequence[i] {
			t.Fatalf("delivery %d: got %s, want %s", i, got[i], sequence[i])
		}
	}
}
