// internal/app/store/oauthstate/store.go

// Package oauthstate persists the OAuth2 state tokens issued during the
// sign-in redirect. Tokens are one-time use: Validate consumes the token
// it matches. The mongo implementation leans on the TTL index created at
// startup; the memory implementation backs the memory store backend.
package oauthstate

import (
	"context"
	"errors"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

// Store is the contract the sign-in flow depends on.
type Store interface {
	// Save stores a state token with its post-auth return URL.
	Save(ctx context.Context, state, returnURL string, expiresAt time.Time) error
	// Validate consumes the token. Returns the associated return URL
	// and whether the token existed and had not expired.
	Validate(ctx context.Context, state string) (returnURL string, valid bool, err error)
	// CleanupExpired removes expired tokens. A backup for when TTL
	// cleanup is delayed, and the only cleanup the memory store has.
	CleanupExpired(ctx context.Context) (int64, error)
}

// State is one stored token.
type State struct {
	State     string    `bson:"state"`
	ReturnURL string    `bson:"return_url,omitempty"`
	ExpiresAt time.Time `bson:"expires_at"`
	CreatedAt time.Time `bson:"created_at"`
}

// Mongo stores state tokens in the oauth_states collection.
type Mongo struct {
	c *mongo.Collection
}

func NewMongo(db *mongo.Database) *Mongo {
	return &Mongo{c: db.Collection("oauth_states")}
}

func (s *Mongo) Save(ctx context.Context, state, returnURL string, expiresAt time.Time) error {
	st := State{
		State:     state,
		ReturnURL: returnURL,
		ExpiresAt: expiresAt,
		CreatedAt: time.Now().UTC(),
	}
	_, err := s.c.InsertOne(ctx, st)
	return err
}

func (s *Mongo) Validate(ctx context.Context, state string) (string, bool, error) {
	var st State
	err := s.c.FindOneAndDelete(ctx, bson.M{
		"state":      state,
		"expires_at": bson.M{"$gt": time.Now().UTC()},
	}).Decode(&st)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return st.ReturnURL, true, nil
}

func (s *Mongo) CleanupExpired(ctx context.Context) (int64, error) {
	res, err := s.c.DeleteMany(ctx, bson.M{
		"expires_at": bson.M{"$lt": time.Now().UTC()},
	})
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}

// Memory keeps state tokens in a map. Used by the memory store backend
// and the tests.
type Memory struct {
	mu     sync.Mutex
	states map[string]State
}

func NewMemory() *Memory {
	return &Memory{states: make(map[string]State)}
}

func (s *Memory) Save(ctx context.Context, state, returnURL string, expiresAt time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.states[state] = State{
		State:     state,
		ReturnURL: returnURL,
		ExpiresAt: expiresAt,
		CreatedAt: time.Now().UTC(),
	}
	return nil
}

func (s *Memory) Validate(ctx context.Context, state string) (string, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	st, ok := s.states[state]
	if !ok {
		return "", false, nil
	}
	delete(s.states, state)
	if time.Now().UTC().After(st.ExpiresAt) {
		return "", false, nil
	}
	return st.ReturnURL, true, nil
}

func (s *Memory) CleanupExpired(ctx context.Context) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := time.Now().UTC()
	var n int64
	for k, st := range s.states {
		if now.After(st.ExpiresAt) {
			delete(s.states, k)
			n++
		}
	}
	return n, nil
}
