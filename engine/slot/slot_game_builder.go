package slot

import (
	ds "github.com/ipfs/go-datastore"
	"go.uber.org/zap"
)

// BuilderOption is a functional option for configuring a Game via New.
type BuilderOption func(*gameImpl)

// WithStore is an option builder that sets the datastore player identity and
// play counts persist in.
//
// Parameters:
//   - store: the datastore
//
// Returns:
//   - BuilderOption: a function that applies the store to a game
func WithStore(store ds.Datastore) BuilderOption {
	return func(g *gameImpl) {
		g.store = store
	}
}

// WithSource is an option builder that sets the reward source.
//
// Parameters:
//   - source: the spin outcome source
//
// Returns:
//   - BuilderOption: a function that applies the source to a game
func WithSource(source RewardSource) BuilderOption {
	return func(g *gameImpl) {
		g.source = source
	}
}

// WithMaxPlays is an option builder that limits how many spins a player gets.
//
// Parameters:
//   - n: the spin limit, 0 or below for unlimited
//
// Returns:
//   - BuilderOption: a function that applies the limit to a game
func WithMaxPlays(n int) BuilderOption {
	return func(g *gameImpl) {
		g.maxPlays = n
	}
}

// WithOnResult is an option builder that sets the callback fired when a spin's
// reel window completes.
//
// Parameters:
//   - fn: the result callback
//
// Returns:
//   - BuilderOption: a function that applies the callback to a game
func WithOnResult(fn func(*Reward)) BuilderOption {
	return func(g *gameImpl) {
		g.onResult = fn
	}
}

// WithLogger is an option builder that sets the game's logger.
//
// Parameters:
//   - logger: the logger for spin lifecycle events
//
// Returns:
//   - BuilderOption: a function that applies the logger to a game
func WithLogger(logger *zap.Logger) BuilderOption {
	return func(g *gameImpl) {
		g.logger = logger
	}
}
