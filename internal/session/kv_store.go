//go:build js && wasm

package session

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/syumai/workers/cloudflare/kv"

	"github.com/dvcrn/steepshot-go/internal/logger"
)

const (
	kvBinding = "steepshot_kv"
	kvKey     = "steepshot_session"
)

// KVStore keeps the session in a Cloudflare Workers KV namespace.
type KVStore struct {
	ns *kv.Namespace
}

// NewKVStore opens the KV namespace bound as steepshot_kv in wrangler.toml.
func NewKVStore() (*KVStore, error) {
	ns, err := kv.NewNamespace(kvBinding)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize KV namespace: %w", err)
	}
	return &KVStore{ns: ns}, nil
}

func (k *KVStore) Load() (*Session, error) {
	raw, err := k.ns.GetString(kvKey, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to get session from KV: %w", err)
	}
	if raw == "" {
		return nil, ErrNoSession
	}
	s := &Session{}
	if err := json.Unmarshal([]byte(raw), s); err != nil {
		return nil, fmt.Errorf("failed to parse session JSON: %w", err)
	}
	return s, nil
}

func (k *KVStore) Save(s *Session) error {
	if s == nil || s.ID == "" {
		return errors.New("refusing to save an empty session")
	}
	data, err := json.Marshal(s)
	if err != nil {
		return fmt.Errorf("failed to marshal session: %w", err)
	}
	if err := k.ns.PutString(kvKey, string(data), nil); err != nil {
		return fmt.Errorf("failed to store session in KV: %w", err)
	}
	logger.Get().Info().Msg("Saved session to Cloudflare KV")
	return nil
}

func (k *KVStore) Clear() error {
	if err := k.ns.Delete(kvKey); err != nil {
		return fmt.Errorf("failed to delete session from KV: %w", err)
	}
	return nil
}

func (k *KVStore) Name() string { return "KVStore" }
