package prefs

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// Preferences captures the small per-user UI state that survives restarts:
// the last-selected tab per screen and the number-grouping toggle. It is
// never authoritative data; losing it only resets the shell to defaults.
type Preferences struct {
	LastTab        map[string]string `json:"last_tab"`
	GroupedNumbers bool              `json:"grouped_numbers"`
}

// Default returns empty preferences.
func Default() Preferences {
	return Preferences{LastTab: map[string]string{}}
}

// Store persists preferences in Redis. A nil client degrades to defaults on
// load and silently drops saves, so the service keeps working without Redis.
type Store struct {
	client *redis.Client
	prefix string
}

// NewStore instantiates the store.
func NewStore(client *redis.Client) *Store {
	return &Store{client: client, prefix: "comptoir:prefs"}
}

func (s *Store) key(userID string) string {
	return fmt.Sprintf("%s:%s", s.prefix, userID)
}

// Load returns the stored preferences, or defaults when missing.
func (s *Store) Load(ctx context.Context, userID string) (Preferences, error) {
	if s == nil || s.client == nil {
		return Default(), nil
	}
	payload, err := s.client.Get(ctx, s.key(userID)).Bytes()
	if err == redis.Nil {
		return Default(), nil
	}
	if err != nil {
		return Default(), err
	}
	p := Default()
	if err := json.Unmarshal(payload, &p); err != nil {
		return Default(), err
	}
	if p.LastTab == nil {
		p.LastTab = map[string]string{}
	}
	return p, nil
}

// Save replaces the stored preferences.
func (s *Store) Save(ctx context.Context, userID string, p Preferences) error {
	if s == nil || s.client == nil {
		return nil
	}
	payload, err := json.Marshal(p)
	if err != nil {
		return err
	}
	return s.client.Set(ctx, s.key(userID), payload, 0).Err()
}

// SetTab records the last-selected tab for one screen.
func (s *Store) SetTab(ctx context.Context, userID, screen, tab string) error {
	p, err := s.Load(ctx, userID)
	if err != nil {
		return err
	}
	p.LastTab[screen] = tab
	return s.Save(ctx, userID, p)
}
