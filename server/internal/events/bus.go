// Package events fans status snapshots out to the components that react to
// them: the live job table, the pipeline coordinator and websocket clients.
package events

import (
	"github.com/asaskevich/EventBus"
	"github.com/marcopiovanello/yt-fetch/server/internal"
)

const TopicStatus = "media:status"

type Bus struct {
	bus EventBus.Bus
}

func NewBus() *Bus {
	return &Bus{bus: EventBus.New()}
}

// Publish matches internal.StatusFunc so it can be handed to the workers.
func (b *Bus) Publish(info internal.MediaInfo) {
	b.bus.Publish(TopicStatus, info)
}

// Subscribe registers fn to run on its own goroutine, one snapshot at a time
// and in publish order.
func (b *Bus) Subscribe(fn func(internal.MediaInfo)) error {
	return b.bus.SubscribeAsync(TopicStatus, fn, true)
}

// Wait blocks until all pending deliveries are done.
func (b *Bus) Wait() { b.bus.WaitAsync() }
