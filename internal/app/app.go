// Package app wires the capture domain together: the service layer the
// CLI commands call into, sitting on top of the item store and event bus.
package app

import (
	"github.com/rs/zerolog"

	"github.com/colonyops/wcap/internal/core/config"
	"github.com/colonyops/wcap/internal/core/eventbus"
	"github.com/colonyops/wcap/internal/core/item"
	"github.com/colonyops/wcap/internal/sync"
)

// App aggregates the shared dependencies of the CLI commands.
type App struct {
	Conf  *config.Config
	Bus   *eventbus.Bus
	Store item.Store
	Items *ItemService

	// Replicator is non-nil when this device is connected to a sync
	// server and pushes local writes in the background.
	Replicator *sync.Replicator
}

// New builds the app aggregate on top of an already-constructed store
// and bus.
func New(conf *config.Config, bus *eventbus.Bus, store item.Store, log zerolog.Logger) *App {
	return &App{
		Conf:  conf,
		Bus:   bus,
		Store: store,
		Items: NewItemService(store, log),
	}
}
