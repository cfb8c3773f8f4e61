// Package redis implements the spill snapshot store on Redis via rueidis.
// The serialized snapshot survives process restarts, letting a cold cache
// recover when the document source is down.
package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/rueidis"

	"github.com/corvusec/newsdex/internal/domain/snapshot"
)

// DefaultTTL bounds how long a spilled snapshot is considered usable.
const DefaultTTL = time.Hour

// Config holds connection parameters for the spill store.
type Config struct {
	Addrs     []string
	Password  string
	KeyPrefix string
	TTL       time.Duration
}

// Store persists the serialized snapshot payload under a single key.
type Store struct {
	client rueidis.Client
	key    string
	ttl    time.Duration
}

// NewStore creates a Store.
func NewStore(cfg Config) (*Store, error) {
	if len(cfg.Addrs) == 0 {
		return nil, fmt.Errorf("addrs is required")
	}
	client, err := rueidis.NewClient(rueidis.ClientOption{
		InitAddress:  cfg.Addrs,
		Password:     cfg.Password,
		DisableCache: true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create client: %w", err)
	}
	prefix := cfg.KeyPrefix
	if prefix == "" {
		prefix = "newsdex:"
	}
	ttl := cfg.TTL
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Store{client: client, key: prefix + "snapshot", ttl: ttl}, nil
}

// Ping checks connectivity.
func (s *Store) Ping(ctx context.Context) error {
	cmd := s.client.B().Ping().Build()
	if err := s.client.Do(ctx, cmd).Error(); err != nil {
		return fmt.Errorf("ping: %w", err)
	}
	return nil
}

// Close shuts down the client.
func (s *Store) Close() {
	s.client.Close()
}

// Load retrieves and decodes the spilled snapshot. Returns (nil, nil) when
// no snapshot has been spilled or it has expired.
func (s *Store) Load(ctx context.Context) (*snapshot.Snapshot, error) {
	cmd := s.client.B().Get().Key(s.key).Build()
	data, err := s.client.Do(ctx, cmd).AsBytes()
	if err != nil {
		if rueidis.IsRedisNil(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("load snapshot: %w", err)
	}
	snap, err := snapshot.Decode(data)
	if err != nil {
		return nil, fmt.Errorf("decode spilled snapshot: %w", err)
	}
	return snap, nil
}

// Save serializes and stores the snapshot with the configured TTL.
func (s *Store) Save(ctx context.Context, snap *snapshot.Snapshot) error {
	data, err := snap.Encode()
	if err != nil {
		return err
	}
	cmd := s.client.B().Set().Key(s.key).Value(rueidis.BinaryString(data)).Ex(s.ttl).Build()
	if err := s.client.Do(ctx, cmd).Error(); err != nil {
		return fmt.Errorf("save snapshot: %w", err)
	}
	return nil
}
