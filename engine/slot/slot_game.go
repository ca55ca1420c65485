// package slot implements the outcome-driven reel interaction: a tap spins
// the reel model once, an external reward source decides the outcome, and the
// outcome's tier selects which window of the reel animation plays. Player
// identity and play counts persist in a datastore.
package slot

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"sync"

	"github.com/google/uuid"
	ds "github.com/ipfs/go-datastore"
	"go.uber.org/zap"

	"github.com/Carmen-Shannon/arc-go/engine/asset"
	"github.com/Carmen-Shannon/arc-go/engine/interaction"
)

const slotNamespace = "slot"

// Reward is one spin outcome from the reward source.
type Reward struct {
	// Tier keys into the asset's animation map to pick the reel window.
	Tier string

	// Value is the reward's display value.
	Value string

	// Video optionally names a reveal video for the outcome.
	Video string
}

// RewardSource supplies spin outcomes, typically backed by a remote campaign
// service.
type RewardSource interface {
	// Ready reports whether the source can currently produce outcomes.
	//
	// Returns:
	//   - bool: true when Next can be called
	Ready() bool

	// Next produces the next outcome.
	//
	// Parameters:
	//   - ctx: cancellation/timeout control
	//
	// Returns:
	//   - *Reward: the outcome
	//   - error: any error producing it
	Next(ctx context.Context) (*Reward, error)
}

// gameImpl is the implementation of the Game interface.
type gameImpl struct {
	store    ds.Datastore
	source   RewardSource
	logger   *zap.Logger
	maxPlays int
	onResult func(*Reward)

	mu      sync.Mutex
	playing bool
}

// Game runs the slot interaction. One spin at a time: taps landing while the
// reel runs are ignored.
type Game interface {
	// UID returns the persistent player identifier, minting and storing one
	// on first call.
	//
	// Parameters:
	//   - ctx: cancellation/timeout control for store access
	//
	// Returns:
	//   - string: the player identifier
	//   - error: any error reading or writing the store
	UID(ctx context.Context) (string, error)

	// PlayCount returns how many spins the player has completed.
	//
	// Parameters:
	//   - ctx: cancellation/timeout control for store access
	//
	// Returns:
	//   - int: the completed spin count
	//   - error: any error reading the store
	PlayCount(ctx context.Context) (int, error)

	// CanPlay reports whether another spin is allowed under the play limit.
	//
	// Parameters:
	//   - ctx: cancellation/timeout control for store access
	//
	// Returns:
	//   - bool: true when a spin is allowed
	//   - error: any error reading the store
	CanPlay(ctx context.Context) (bool, error)

	// Playing reports whether a spin is currently running.
	//
	// Returns:
	//   - bool: true while the reel plays
	Playing() bool

	// HandleClick runs one spin on the tapped asset: resolve the outcome,
	// play its tier's reel window, and report the result when the window
	// completes. No-op while a spin is already running or the play limit is
	// reached.
	//
	// Parameters:
	//   - ctx: cancellation/timeout control
	//   - m: the interaction manager driving windowed playback
	//   - la: the tapped reel asset
	HandleClick(ctx context.Context, m interaction.Manager, la *asset.LiveAsset)

	// Handler adapts the game to the interaction manager's registration.
	//
	// Returns:
	//   - interaction.Handler: a handler invoking HandleClick
	Handler() interaction.Handler
}

var _ Game = &gameImpl{}

// New creates a Game with the provided options applied.
//
// Parameters:
//   - options: functional options for game configuration (store, source, limit, logger)
//
// Returns:
//   - Game: the newly created game
func New(options ...BuilderOption) Game {
	g := &gameImpl{
		logger: zap.NewNop(),
	}
	for _, opt := range options {
		opt(g)
	}
	return g
}

func uidKey() ds.Key {
	return ds.KeyWithNamespaces([]string{slotNamespace, "uid"})
}

func playsKey(uid string) ds.Key {
	return ds.KeyWithNamespaces([]string{slotNamespace, "plays", uid})
}

func (g *gameImpl) UID(ctx context.Context) (string, error) {
	if g.store == nil {
		return "", errors.New("slot game has no store")
	}

	data, err := g.store.Get(ctx, uidKey())
	if err == nil {
		return string(data), nil
	}
	if !errors.Is(err, ds.ErrNotFound) {
		return "", fmt.Errorf("read uid: %w", err)
	}

	uid := uuid.NewString()
	if err := g.store.Put(ctx, uidKey(), []byte(uid)); err != nil {
		return "", fmt.Errorf("persist uid: %w", err)
	}
	return uid, nil
}

func (g *gameImpl) PlayCount(ctx context.Context) (int, error) {
	uid, err := g.UID(ctx)
	if err != nil {
		return 0, err
	}

	data, err := g.store.Get(ctx, playsKey(uid))
	if errors.Is(err, ds.ErrNotFound) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("read play count: %w", err)
	}

	count, err := strconv.Atoi(string(data))
	if err != nil {
		return 0, fmt.Errorf("corrupt play count %q: %w", data, err)
	}
	return count, nil
}

func (g *gameImpl) CanPlay(ctx context.Context) (bool, error) {
	if g.maxPlays <= 0 {
		return true, nil
	}
	count, err := g.PlayCount(ctx)
	if err != nil {
		return false, err
	}
	return count < g.maxPlays, nil
}

// incrementPlayCount bumps the persisted spin counter.
func (g *gameImpl) incrementPlayCount(ctx context.Context) error {
	count, err := g.PlayCount(ctx)
	if err != nil {
		return err
	}
	uid, err := g.UID(ctx)
	if err != nil {
		return err
	}
	return g.store.Put(ctx, playsKey(uid), []byte(strconv.Itoa(count+1)))
}

func (g *gameImpl) Playing() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.playing
}

func (g *gameImpl) HandleClick(ctx context.Context, m interaction.Manager, la *asset.LiveAsset) {
	g.mu.Lock()
	if g.playing {
		g.mu.Unlock()
		g.logger.Debug("spin already running, tap ignored",
			zap.String("asset_id", la.Descriptor.AssetID),
		)
		return
	}
	g.playing = true
	g.mu.Unlock()

	abort := func() {
		g.mu.Lock()
		g.playing = false
		g.mu.Unlock()
	}

	ok, err := g.CanPlay(ctx)
	if err != nil {
		g.logger.Warn("play limit check failed", zap.Error(err))
		abort()
		return
	}
	if !ok {
		g.logger.Info("play limit reached",
			zap.String("asset_id", la.Descriptor.AssetID),
			zap.Int("max_plays", g.maxPlays),
		)
		abort()
		return
	}

	if g.source == nil || !g.source.Ready() {
		g.logger.Warn("reward source not ready")
		abort()
		return
	}
	reward, err := g.source.Next(ctx)
	if err != nil {
		g.logger.Warn("reward source failed", zap.Error(err))
		abort()
		return
	}

	spec := la.Descriptor.Action
	if spec == nil {
		abort()
		return
	}
	window, ok := spec.AnimationMap[reward.Tier]
	if !ok {
		g.logger.Warn("no reel window for reward tier",
			zap.String("asset_id", la.Descriptor.AssetID),
			zap.String("tier", reward.Tier),
		)
		abort()
		return
	}

	if err := g.incrementPlayCount(ctx); err != nil {
		g.logger.Warn("play count persist failed", zap.Error(err))
	}

	g.logger.Info("spin started",
		zap.String("asset_id", la.Descriptor.AssetID),
		zap.String("tier", reward.Tier),
		zap.Float64("start", window.Start),
		zap.Float64("end", window.End),
	)

	m.PlayWindow(la, window.Start, window.End, false, func() {
		g.mu.Lock()
		g.playing = false
		g.mu.Unlock()
		if g.onResult != nil {
			g.onResult(reward)
		}
	})
}

func (g *gameImpl) Handler() interaction.Handler {
	return func(ctx context.Context, m interaction.Manager, la *asset.LiveAsset) {
		g.HandleClick(ctx, m, la)
	}
}
