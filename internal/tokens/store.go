// Package tokens holds the persisted session credentials: the access token,
// the refresh token and the serialized user record. Values are loaded once
// at startup, written on login and removed on logout.
package tokens

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/vitashop/vitashop/internal/database"
	"github.com/vitashop/vitashop/internal/util"
)

// Key names a persisted credential.
type Key string

const (
	KeyAccessToken  Key = "access_token"
	KeyRefreshToken Key = "refresh_token"
	KeyUserData     Key = "user_data"
)

// Keys lists every credential the store manages.
var Keys = []Key{KeyAccessToken, KeyRefreshToken, KeyUserData}

// ErrNotFound is returned when a credential has not been stored.
var ErrNotFound = errors.New("token not found")

// Login is the set of credentials written after a successful sign-in.
type Login struct {
	AccessToken  string
	RefreshToken string
	UserData     string
}

// Store caches credentials in memory and persists them in SQLite. Reads
// never touch the database.
type Store struct {
	db     *database.DB
	clock  util.Clock
	logger *slog.Logger

	mu     sync.RWMutex
	values map[Key]string
}

// NewStore creates a token store over a migrated database.
func NewStore(db *database.DB, clock util.Clock, logger *slog.Logger) *Store {
	if clock == nil {
		clock = util.SystemClock{}
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Store{
		db:     db,
		clock:  clock,
		logger: logger,
		values: make(map[Key]string),
	}
}

// Load reads all persisted credentials into memory, replacing whatever the
// store held before.
func (s *Store) Load(ctx context.Context) error {
	rows, err := s.db.QueryContext(ctx, `SELECT key, value FROM credentials`)
	if err != nil {
		return fmt.Errorf("querying credentials: %w", err)
	}
	defer rows.Close()

	values := make(map[Key]string)
	for rows.Next() {
		var key, value string
		if err := rows.Scan(&key, &value); err != nil {
			return fmt.Errorf("scanning credential: %w", err)
		}
		values[Key(key)] = value
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("iterating credentials: %w", err)
	}

	s.mu.Lock()
	s.values = values
	s.mu.Unlock()

	s.logger.Debug("credentials loaded", "count", len(values))
	return nil
}

// AccessToken returns the bearer token for API calls.
func (s *Store) AccessToken() (string, error) {
	v, ok := s.Get(KeyAccessToken)
	if !ok || v == "" {
		return "", ErrNotFound
	}
	return v, nil
}

// Get returns a cached credential.
func (s *Store) Get(key Key) (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.values[key]
	return v, ok
}

// SaveLogin persists a full set of credentials atomically. Empty values
// remove the corresponding key.
func (s *Store) SaveLogin(ctx context.Context, login Login) error {
	if login.AccessToken == "" {
		return errors.New("access token is required")
	}

	values := map[Key]string{
		KeyAccessToken:  login.AccessToken,
		KeyRefreshToken: login.RefreshToken,
		KeyUserData:     login.UserData,
	}
	now := s.clock.Now().UTC().Format(time.RFC3339)

	err := s.db.WithTransaction(ctx, func(tx *sql.Tx) error {
		for _, key := range Keys {
			value := values[key]
			if value == "" {
				if _, err := tx.ExecContext(ctx, `DELETE FROM credentials WHERE key = ?`, string(key)); err != nil {
					return fmt.Errorf("removing %s: %w", key, err)
				}
				continue
			}

			_, err := tx.ExecContext(ctx, `
				INSERT INTO credentials (key, value, updated_at) VALUES (?, ?, ?)
				ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`,
				string(key), value, now,
			)
			if err != nil {
				return fmt.Errorf("writing %s: %w", key, err)
			}
		}
		return nil
	})
	if err != nil {
		return err
	}

	s.mu.Lock()
	s.values = make(map[Key]string)
	for k, v := range values {
		if v != "" {
			s.values[k] = v
		}
	}
	s.mu.Unlock()

	s.logger.Info("credentials saved")
	return nil
}

// Clear removes every credential. The in-memory copy is dropped before the
// database is touched, so a failed delete still leaves the process signed
// out.
func (s *Store) Clear(ctx context.Context) error {
	s.mu.Lock()
	s.values = make(map[Key]string)
	s.mu.Unlock()

	if _, err := s.db.ExecContext(ctx, `DELETE FROM credentials`); err != nil {
		return fmt.Errorf("clearing credentials: %w", err)
	}

	s.logger.Info("credentials cleared")
	return nil
}
