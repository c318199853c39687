package logging

import (
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// ComponentField names the subsystem that emitted an entry.
const ComponentField = "cmp"

// CollectionField names the storage key a collection store persists to.
const CollectionField = "collection"

// Component derives a logger for a storefront subsystem, such as "kvstore"
// or "tui", from the global logger.
func Component(name string) zerolog.Logger {
	return log.With().Str(ComponentField, name).Logger()
}

// Collection is Component for the cart, wishlist and notification stores,
// additionally tagged with the key the store reads and writes.
func Collection(name, key string) zerolog.Logger {
	return log.With().Str(ComponentField, name).Str(CollectionField, key).Logger()
}
