// Package session keeps the operator's credential and profile in a key-value
// store so the console can pick up a previous login after a restart.
package session

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/eyecare-clinic/console/pkg/common/logger"
	"github.com/eyecare-clinic/console/pkg/common/models"
	"github.com/eyecare-clinic/console/pkg/kvstore"
	"golang.org/x/oauth2"
)

const (
	KeyToken = "authToken"
	KeyUser  = "user"
)

// Session is the in-memory copy of the persisted session. Reads are served
// from memory; writes go through to the store first.
type Session struct {
	store kvstore.Store

	mu    sync.RWMutex
	token *oauth2.Token
	user  *models.User
}

func New(store kvstore.Store) *Session {
	return &Session{store: store}
}

// Restore loads whatever session the store holds. A corrupt profile is
// discarded rather than failing the restore.
func (s *Session) Restore(ctx context.Context) error {
	raw, ok, err := s.store.Get(ctx, KeyToken)
	if err != nil {
		return fmt.Errorf("reading %s: %w", KeyToken, err)
	}
	var token *oauth2.Token
	if ok && raw != "" {
		token = newToken(raw)
	}

	rawUser, ok, err := s.store.Get(ctx, KeyUser)
	if err != nil {
		return fmt.Errorf("reading %s: %w", KeyUser, err)
	}
	var user *models.User
	if ok && rawUser != "" {
		var u models.User
		if err := json.Unmarshal([]byte(rawUser), &u); err != nil {
			logger.Log.WithError(err).Warn("Discarding unreadable stored user profile")
		} else {
			user = &u
		}
	}

	s.mu.Lock()
	s.token = token
	s.user = user
	s.mu.Unlock()
	return nil
}

func (s *Session) Save(ctx context.Context, rawToken string, user *models.User) error {
	if rawToken == "" {
		return fmt.Errorf("empty credential")
	}
	if err := s.store.Set(ctx, KeyToken, rawToken); err != nil {
		return fmt.Errorf("storing %s: %w", KeyToken, err)
	}

	var stored *models.User
	if user != nil {
		encoded, err := json.Marshal(user)
		if err != nil {
			return fmt.Errorf("encoding user: %w", err)
		}
		if err := s.store.Set(ctx, KeyUser, string(encoded)); err != nil {
			return fmt.Errorf("storing %s: %w", KeyUser, err)
		}
		u := *user
		stored = &u
	} else if err := s.store.Remove(ctx, KeyUser); err != nil {
		return fmt.Errorf("removing %s: %w", KeyUser, err)
	}

	s.mu.Lock()
	s.token = newToken(rawToken)
	s.user = stored
	s.mu.Unlock()
	return nil
}

// Clear forgets the session in memory unconditionally, then removes both keys.
func (s *Session) Clear(ctx context.Context) error {
	s.mu.Lock()
	s.token = nil
	s.user = nil
	s.mu.Unlock()

	tokenErr := s.store.Remove(ctx, KeyToken)
	userErr := s.store.Remove(ctx, KeyUser)
	if tokenErr != nil {
		return fmt.Errorf("removing %s: %w", KeyToken, tokenErr)
	}
	if userErr != nil {
		return fmt.Errorf("removing %s: %w", KeyUser, userErr)
	}
	return nil
}

// Token returns a copy of the stored credential, or nil.
func (s *Session) Token() *oauth2.Token {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.token == nil {
		return nil
	}
	t := *s.token
	return &t
}

// User returns a copy of the stored profile, or nil.
func (s *Session) User() *models.User {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.user == nil {
		return nil
	}
	u := *s.user
	return &u
}

func (s *Session) HasCredential() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token != nil
}

// Valid reports whether both a profile and an unexpired credential are held.
func (s *Session) Valid() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.user != nil && s.token.Valid()
}
