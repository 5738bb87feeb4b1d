package session

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/nats-io/nats.go/jetstream"
)

// DefaultBucket is the KV bucket name for session state.
const DefaultBucket = "PROMPTFORGE_SESSIONS"

// kvUpdateAttempts bounds the compare-and-swap retry loop in Update.
const kvUpdateAttempts = 5

// KVStore is a NATS JetStream KV backed session store. Sessions survive
// process restarts; Update atomicity comes from KV revision checks rather
// than in-process locks, so multiple service instances can share a bucket.
type KVStore struct {
	kv jetstream.KeyValue
}

// NewKVStore binds to the named bucket, creating it when absent.
func NewKVStore(ctx context.Context, js jetstream.JetStream, bucket string) (*KVStore, error) {
	if bucket == "" {
		bucket = DefaultBucket
	}
	kv, err := js.KeyValue(ctx, bucket)
	if err != nil {
		kv, err = js.CreateKeyValue(ctx, jetstream.KeyValueConfig{
			Bucket:      bucket,
			Description: "promptforge session storage",
			History:     5,
		})
		if err != nil {
			return nil, fmt.Errorf("create session bucket: %w", err)
		}
	}
	return &KVStore{kv: kv}, nil
}

func (k *KVStore) Put(ctx context.Context, s *Session) error {
	data, err := json.Marshal(s)
	if err != nil {
		return fmt.Errorf("marshal session: %w", err)
	}
	if _, err := k.kv.Put(ctx, s.ID, data); err != nil {
		return fmt.Errorf("store session: %w", err)
	}
	return nil
}

func (k *KVStore) Get(ctx context.Context, id string) (*Session, error) {
	s, _, err := k.get(ctx, id)
	return s, err
}

func (k *KVStore) get(ctx context.Context, id string) (*Session, uint64, error) {
	entry, err := k.kv.Get(ctx, id)
	if err != nil {
		if isKeyNotFound(err) {
			return nil, 0, ErrNotFound
		}
		return nil, 0, fmt.Errorf("get session: %w", err)
	}

	var s Session
	if err := json.Unmarshal(entry.Value(), &s); err != nil {
		return nil, 0, fmt.Errorf("unmarshal session: %w", err)
	}
	return &s, entry.Revision(), nil
}

func (k *KVStore) Delete(ctx context.Context, id string) error {
	if err := k.kv.Delete(ctx, id); err != nil && !isKeyNotFound(err) {
		return fmt.Errorf("delete session: %w", err)
	}
	return nil
}

// Update retries the read-mutate-write cycle until the revision check
// passes. A concurrent writer to the same session forces a re-read, so
// mutate must be safe to call more than once.
func (k *KVStore) Update(ctx context.Context, id string, mutate func(*Session) error) error {
	var lastErr error
	for attempt := 0; attempt < kvUpdateAttempts; attempt++ {
		s, revision, err := k.get(ctx, id)
		if err != nil {
			return err
		}
		if err := mutate(s); err != nil {
			return err
		}

		data, err := json.Marshal(s)
		if err != nil {
			return fmt.Errorf("marshal session: %w", err)
		}
		if _, err := k.kv.Update(ctx, id, data, revision); err != nil {
			lastErr = err
			continue
		}
		return nil
	}
	return fmt.Errorf("update session after %d attempts: %w", kvUpdateAttempts, lastErr)
}

func isKeyNotFound(err error) bool {
	return err != nil && strings.Contains(err.Error(), "key not found")
}
