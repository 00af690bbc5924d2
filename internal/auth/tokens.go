// Tator - Media Annotation Platform
// Copyright 2026 The Tator Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tator-io/tator

package auth

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/goccy/go-json"
	"github.com/google/uuid"
)

// Key layout:
//
//	token:<sha256 of key>          -> APIToken JSON
//	user_token:<user>:<sha256>     -> empty, for listing a user's tokens
const (
	tokenKeyPrefix     = "token:"
	userTokenKeyPrefix = "user_token:"
)

// APIToken is a long-lived credential sent as "Authorization: Token <key>".
// Only a digest of the key is stored.
type APIToken struct {
	Digest    string    `json:"digest"`
	User      int64     `json:"user"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
}

// TokenStore keeps API tokens in badger.
type TokenStore struct {
	db *badger.DB
}

// OpenTokenStore opens the badger directory at path, or an in-memory
// database when path is empty.
func OpenTokenStore(path string) (*TokenStore, error) {
	opts := badger.DefaultOptions(path)
	if path == "" {
		opts = opts.WithInMemory(true)
	}
	opts.Logger = nil

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open token store: %w", err)
	}
	return &TokenStore{db: db}, nil
}

func digest(key string) string {
	sum := sha256.Sum256([]byte(key))
	return hex.EncodeToString(sum[:])
}

func userTokenKey(user int64, d string) []byte {
	return []byte(userTokenKeyPrefix + strconv.FormatInt(user, 10) + ":" + d)
}

// Create issues a new token for user and returns the plaintext key, which
// cannot be recovered later.
func (s *TokenStore) Create(_ context.Context, user int64, name string) (string, *APIToken, error) {
	key := strings.ReplaceAll(uuid.NewString()+uuid.NewString(), "-", "")
	t := &APIToken{Digest: digest(key), User: user, Name: name, CreatedAt: time.Now().UTC()}
	data, err := json.Marshal(t)
	if err != nil {
		return "", nil, fmt.Errorf("marshal token: %w", err)
	}
	err = s.db.Update(func(txn *badger.Txn) error {
		if err := txn.Set([]byte(tokenKeyPrefix+t.Digest), data); err != nil {
			return err
		}
		return txn.Set(userTokenKey(user, t.Digest), nil)
	})
	if err != nil {
		return "", nil, fmt.Errorf("store token: %w", err)
	}
	return key, t, nil
}

// Lookup returns the token for a plaintext key.
func (s *TokenStore) Lookup(_ context.Context, key string) (*APIToken, error) {
	return s.get(digest(key))
}

func (s *TokenStore) get(d string) (*APIToken, error) {
	var t APIToken
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(tokenKeyPrefix + d))
		if errors.Is(err, badger.ErrKeyNotFound) {
			return ErrTokenNotFound
		}
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			return json.Unmarshal(val, &t)
		})
	})
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// List returns the tokens of user, oldest first.
func (s *TokenStore) List(_ context.Context, user int64) ([]APIToken, error) {
	var digests []string
	prefix := []byte(userTokenKeyPrefix + strconv.FormatInt(user, 10) + ":")
	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = false
		opts.Prefix = prefix
		it := txn.NewIterator(opts)
		defer it.Close()
		for it.Rewind(); it.Valid(); it.Next() {
			digests = append(digests, string(it.Item().Key()[len(prefix):]))
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("list tokens: %w", err)
	}

	out := make([]APIToken, 0, len(digests))
	for _, d := range digests {
		t, err := s.get(d)
		if errors.Is(err, ErrTokenNotFound) {
			continue
		}
		if err != nil {
			return nil, err
		}
		out = append(out, *t)
	}
	slices.SortFunc(out, func(a, b APIToken) int { return a.CreatedAt.Compare(b.CreatedAt) })
	return out, nil
}

// Revoke deletes the token with the given digest if it belongs to user.
func (s *TokenStore) Revoke(_ context.Context, user int64, d string) error {
	t, err := s.get(d)
	if err != nil {
		return err
	}
	if t.User != user {
		return ErrTokenNotFound
	}
	return s.db.Update(func(txn *badger.Txn) error {
		if err := txn.Delete([]byte(tokenKeyPrefix + d)); err != nil {
			return err
		}
		return txn.Delete(userTokenKey(user, d))
	})
}

func (s *TokenStore) Close() error {
	return s.db.Close()
}
