package meridian

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/meridian-cloud/meridian/internal/db"
	"github.com/meridian-cloud/meridian/internal/db/tile38"
)

const defaultReadinessTimeout = 10 * time.Second

// Client is the meridian SDK entry point.
type Client struct {
	store db.Store
	obs   *observer
}

// New creates a meridian Client and connects to the geodb.
// The provided context is used for the initial readiness check.
func New(ctx context.Context, opts ...Option) (*Client, error) {
	cfg := &clientConfig{
		readinessTimeout: defaultReadinessTimeout,
	}
	for _, o := range opts {
		o.apply(cfg)
	}

	if len(cfg.addrs) == 0 {
		return nil, errors.New("meridian: geodb address required (use WithTile38)")
	}

	store, err := tile38.NewStore(tile38.Config{
		Addrs:    cfg.addrs,
		Password: cfg.password,
	})
	if err != nil {
		return nil, fmt.Errorf("meridian: create store: %w", err)
	}

	if err := store.WaitForReady(ctx, cfg.readinessTimeout); err != nil {
		store.Close()
		return nil, fmt.Errorf("meridian: geodb not ready: %w", err)
	}

	obs, err := newObserver(cfg.logger, cfg.metricsReg)
	if err != nil {
		store.Close()
		return nil, err
	}
	return &Client{store: store, obs: obs}, nil
}

// Collections returns the collection service.
func (c *Client) Collections() *CollectionService {
	return &CollectionService{store: c.store, obs: c.obs}
}

// Objects returns the object service bound to a collection.
func (c *Client) Objects(collection string) *ObjectService {
	return &ObjectService{store: c.store, obs: c.obs, collection: collection}
}

// Search returns the spatial search service bound to a collection.
func (c *Client) Search(collection string) *SearchService {
	return &SearchService{store: c.store, obs: c.obs, collection: collection}
}

// Hooks returns the geofence webhook service.
func (c *Client) Hooks() *HookService {
	return &HookService{store: c.store, obs: c.obs}
}

// Execute relays one raw command line to the geodb and returns its JSON
// reply. Prefer the typed services; this is the escape hatch for verbs
// the SDK does not synthesize.
func (c *Client) Execute(ctx context.Context, commandLine string) (_ []byte, err error) {
	start := time.Now()
	defer func() { c.obs.observe("execute", start, err) }()
	return c.store.Execute(ctx, commandLine)
}

// Ping checks geodb connectivity.
func (c *Client) Ping(ctx context.Context) error {
	return c.store.Ping(ctx)
}

// Close releases the geodb connection.
func (c *Client) Close() {
	c.store.Close()
}
