package client

import (
	"context"
	"errors"
	"path/filepath"
	"sync"
	"time"
)

// Client is the embeddable offline-first inventory client. Local actions
// queue events through it; sync cycles drain the outbox and advance the pull
// cursor. Appends and sync cycles may interleave freely: the snapshot
// discipline in Syncer.Push keeps concurrent appends safe.
type Client struct {
	config   Config
	store    *Store
	syncer   *Syncer
	remote   *Remote
	deviceID string

	mu       sync.RWMutex
	closed   bool
	syncDone chan struct{}
}

// New creates a new Client rooted at config.DataDir.
func New(config Config) (*Client, error) {
	if config.DataDir == "" {
		return nil, errors.New("DataDir is required")
	}
	if config.SyncInterval == 0 {
		config.SyncInterval = 5 * time.Minute
	}

	deviceID, err := LoadOrCreateDeviceID(config.DataDir)
	if err != nil {
		return nil, err
	}

	store, err := OpenStore(filepath.Join(config.DataDir, "tally.db"))
	if err != nil {
		return nil, err
	}

	c := &Client{
		config:   config,
		store:    store,
		syncer:   NewSyncer(config.BaseURL, config.Token, deviceID, store),
		remote:   NewRemote(config.BaseURL, config.Token),
		deviceID: deviceID,
		syncDone: make(chan struct{}),
	}

	if config.AutoSync && !config.OfflineMode {
		go c.syncLoop()
	}
	return c, nil
}

// Close stops background sync and closes the local store. A final push is
// attempted on a best-effort basis; anything undelivered stays durable in
// the outbox for the next run.
func (c *Client) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return nil
	}
	c.closed = true
	close(c.syncDone)

	if !c.config.OfflineMode && c.config.BaseURL != "" {
		ctx, cancel := context.WithTimeout(context.Background(), defaultTimeout)
		_, _ = c.syncer.Push(ctx)
		cancel()
	}
	return c.store.Close()
}

// QueueAdjustment validates and durably queues an adjustment event. The
// event survives restarts and is removed only after a push round that
// included it is acknowledged by the server.
func (c *Client) QueueAdjustment(p AdjustmentParams) (*PendingEvent, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if c.closed {
		return nil, errors.New("client is closed")
	}

	evt, err := NewAdjustment(p)
	if err != nil {
		return nil, err
	}
	if err := c.store.Append(evt); err != nil {
		return nil, err
	}
	return evt, nil
}

// Sync runs one push round then one pull round.
func (c *Client) Sync(ctx context.Context) (*SyncStats, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if c.closed {
		return nil, errors.New("client is closed")
	}
	if c.config.OfflineMode {
		return &SyncStats{}, nil
	}
	return c.syncer.Sync(ctx)
}

// Pull runs one pull round and returns the remote events for downstream
// application.
func (c *Client) Pull(ctx context.Context) ([]RemoteEvent, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if c.closed {
		return nil, errors.New("client is closed")
	}
	return c.syncer.Pull(ctx)
}

// Remote exposes the reference data client.
func (c *Client) Remote() *Remote {
	return c.remote
}

// DeviceID returns this installation's stable device identity.
func (c *Client) DeviceID() string {
	return c.deviceID
}

// Stats reports the local store state for status displays.
func (c *Client) Stats() (*StoreStats, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if c.closed {
		return nil, errors.New("client is closed")
	}

	pending, err := c.store.PendingCount()
	if err != nil {
		return nil, err
	}
	lastPull, err := c.store.LastPull()
	if err != nil {
		return nil, err
	}
	return &StoreStats{
		PendingCount: pending,
		LastPull:     lastPull,
		DeviceID:     c.deviceID,
	}, nil
}

func (c *Client) syncLoop() {
	ticker := time.NewTicker(c.config.SyncInterval)
	defer ticker.Stop()

	for {
		select {
		case <-c.syncDone:
			return
		case <-ticker.C:
			c.mu.RLock()
			if !c.closed {
				ctx, cancel := context.WithTimeout(context.Background(), defaultTimeout)
				_, _ = c.syncer.Sync(ctx)
				cancel()
			}
			c.mu.RUnlock()
		}
	}
}
