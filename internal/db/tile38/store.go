// Package tile38 implements the geodb store over the RESP wire protocol
// spoken by Tile38-compatible servers.
package tile38

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/redis/rueidis"

	"github.com/meridian-cloud/meridian/internal/db"
	"github.com/meridian-cloud/meridian/internal/domain"
)

// Compile-time check: Store implements db.Store.
var _ db.Store = (*Store)(nil)

// Config holds connection parameters for a Tile38 store.
type Config struct {
	Addrs    []string
	Password string
}

// Store implements db.Store via rueidis.
type Store struct {
	client rueidis.Client
}

// NewStore creates a Tile38 store via rueidis.
func NewStore(cfg Config) (*Store, error) {
	if len(cfg.Addrs) == 0 {
		return nil, fmt.Errorf("addrs is required")
	}

	client, err := rueidis.NewClient(rueidis.ClientOption{
		InitAddress:  cfg.Addrs,
		Password:     cfg.Password,
		DisableCache: true,
		AlwaysRESP2:  true, // Tile38 speaks RESP2 only
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create client: %w", err)
	}

	return &Store{client: client}, nil
}

// Execute forwards one command line. The command is tokenized on spaces,
// which is safe because builder output never embeds whitespace inside a
// token. Replies are requested in JSON output mode so the gateway can
// relay them verbatim; an ok:false body is surfaced as a ProtocolError.
func (s *Store) Execute(ctx context.Context, command string) ([]byte, error) {
	args := strings.Fields(command)
	if len(args) == 0 {
		return nil, domain.NewValidation("command", "must be non-empty")
	}

	var raw string
	err := s.client.Dedicated(func(c rueidis.DedicatedClient) error {
		// JSON output mode is per-connection state.
		if err := c.Do(ctx, c.B().Arbitrary("OUTPUT", "json").Build()).Error(); err != nil {
			return fmt.Errorf("set json output: %w", err)
		}
		res := c.Do(ctx, c.B().Arbitrary(args[0]).Args(args[1:]...).Build())
		body, err := res.ToString()
		if err != nil {
			return err
		}
		raw = body
		return nil
	})
	if err != nil {
		if re, ok := rueidis.IsRedisErr(err); ok {
			return nil, &domain.ProtocolError{Message: re.Error()}
		}
		return nil, fmt.Errorf("%w: %v", domain.ErrTransport, err)
	}

	var envelope struct {
		OK  bool   `json:"ok"`
		Err string `json:"err"`
	}
	if jsonErr := json.Unmarshal([]byte(raw), &envelope); jsonErr == nil && !envelope.OK && envelope.Err != "" {
		return []byte(raw), &domain.ProtocolError{Message: envelope.Err}
	}
	return []byte(raw), nil
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

// WaitForReady polls Ping until the store responds or timeout expires.
func (s *Store) WaitForReady(ctx context.Context, timeout time.Duration) error {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	ticker := time.NewTicker(100 * time.Millisecond)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return fmt.Errorf("timeout waiting for geodb: %w", ctx.Err())
		case <-ticker.C:
			if err := s.Ping(ctx); err == nil {
				return nil
			}
		}
	}
}
