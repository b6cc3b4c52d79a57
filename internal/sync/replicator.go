package sync

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/colonyops/wcap/internal/core/eventbus"
	"github.com/colonyops/wcap/internal/core/item"
)

// Replicator forwards local item changes to a remote sync server.
// Replication is best effort: a failed push is logged and announced on
// the bus, never retried, and never blocks the local write path.
type Replicator struct {
	client  *Client
	bus     *eventbus.Bus
	log     zerolog.Logger
	timeout time.Duration

	unsubs []func()
}

// NewReplicator creates a replicator that pushes via client.
func NewReplicator(client *Client, bus *eventbus.Bus, log zerolog.Logger) *Replicator {
	return &Replicator{
		client:  client,
		bus:     bus,
		log:     log.With().Str("cmp", "replicator").Logger(),
		timeout: 30 * time.Second,
	}
}

// Attach subscribes to item change events. Calling Attach while already
// attached is a no-op.
func (r *Replicator) Attach() {
	if r.unsubs != nil {
		return
	}

	r.unsubs = []func(){
		r.bus.SubscribeItemSaved(func(p eventbus.ItemSavedPayload) {
			go r.pushItem(p.Item)
		}),
		r.bus.SubscribeItemDeleted(func(p eventbus.ItemDeletedPayload) {
			go r.removeItem(p.ID)
		}),
	}
}

// Detach removes the subscriptions. Writes made while detached are not
// replicated; sync pull uses this so pulled items are not echoed back
// to the server. Safe to call when not attached.
func (r *Replicator) Detach() {
	for _, unsub := range r.unsubs {
		unsub()
	}
	r.unsubs = nil
}

func (r *Replicator) pushItem(it item.Item) {
	ctx, cancel := context.WithTimeout(context.Background(), r.timeout)
	defer cancel()

	if err := r.client.Push(ctx, []item.Item{it}); err != nil {
		r.log.Warn().Err(err).Str("id", it.ID).Msg("item push failed")
		r.bus.PublishSyncFailed(eventbus.SyncFailedPayload{ItemID: it.ID, Err: err})
		return
	}

	r.log.Debug().Str("id", it.ID).Msg("item pushed")
	r.bus.PublishSyncPushed(eventbus.SyncPushedPayload{Item: it})
}

func (r *Replicator) removeItem(id string) {
	ctx, cancel := context.WithTimeout(context.Background(), r.timeout)
	defer cancel()

	if err := r.client.Remove(ctx, id); err != nil {
		r.log.Warn().Err(err).Str("id", id).Msg("item delete push failed")
		r.bus.PublishSyncFailed(eventbus.SyncFailedPayload{ItemID: id, Err: err})
	}
}
