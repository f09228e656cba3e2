// Copyright The DocuFlow Authors.
// SPDX-License-Identifier: MIT

// Package store contains the NATS JetStream key-value repositories backing
// the meet service's document store.
package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/nats-io/nats.go/jetstream"

	"github.com/docuflow/meet-service/internal/domain"
	"github.com/docuflow/meet-service/internal/logging"
)

// NATS Key-Value store bucket names
const (
	KVStoreNameMeetings      = "meetings"
	KVStoreNameEvents        = "events"
	KVStoreNameShares        = "shares"
	KVStoreNameUsers         = "users"
	KVStoreNameNotifications = "notifications"
	KVStoreNameTranscripts   = "transcripts"
)

// INatsKeyValue is the NATS KV interface needed by the repositories. It
// matches jetstream.KeyValue and allows mocking in tests.
type INatsKeyValue interface {
	ListKeys(context.Context, ...jetstream.WatchOpt) (jetstream.KeyLister, error)
	Get(ctx context.Context, key string) (jetstream.KeyValueEntry, error)
	Put(context.Context, string, []byte) (uint64, error)
	Update(context.Context, string, []byte, uint64) (uint64, error)
	Delete(context.Context, string, ...jetstream.KVDeleteOpt) error
}

// NatsBaseRepository provides common NATS KV operations reused by the entity
// repositories.
type NatsBaseRepository[T any] struct {
	kvStore    INatsKeyValue
	entityName string // used in error messages (e.g. "meeting", "event")
}

// NewNatsBaseRepository creates a new base repository for NATS KV operations.
func NewNatsBaseRepository[T any](kvStore INatsKeyValue, entityName string) *NatsBaseRepository[T] {
	return &NatsBaseRepository[T]{
		kvStore:    kvStore,
		entityName: entityName,
	}
}

// IsReady checks if the repository is ready for use.
func (r *NatsBaseRepository[T]) IsReady() bool {
	return r.kvStore != nil
}

// GetRaw retrieves a raw entry from the NATS KV store.
func (r *NatsBaseRepository[T]) GetRaw(ctx context.Context, key string) (jetstream.KeyValueEntry, error) {
	if !r.IsReady() {
		return nil, domain.NewUnavailableError(fmt.Sprintf("%s repository is not available", r.entityName))
	}

	entry, err := r.kvStore.Get(ctx, key)
	if err != nil {
		if errors.Is(err, jetstream.ErrKeyNotFound) {
			return nil, domain.NewNotFoundError(
				fmt.Sprintf("%s with key '%s' not found", r.entityName, key), err)
		}
		slog.ErrorContext(ctx, fmt.Sprintf("error getting %s from NATS KV", r.entityName),
			logging.ErrKey, err, "key", key)
		return nil, domain.NewInternalError(
			fmt.Sprintf("failed to retrieve %s from store", r.entityName), err)
	}

	return entry, nil
}

func (r *NatsBaseRepository[T]) unmarshal(ctx context.Context, entry jetstream.KeyValueEntry) (*T, error) {
	var entity T
	if err := json.Unmarshal(entry.Value(), &entity); err != nil {
		slog.ErrorContext(ctx, fmt.Sprintf("error unmarshaling %s", r.entityName),
			logging.ErrKey, err, "key", entry.Key())
		return nil, domain.ErrUnmarshal
	}
	return &entity, nil
}

// Get retrieves an entity by key.
func (r *NatsBaseRepository[T]) Get(ctx context.Context, key string) (*T, error) {
	entity, _, err := r.GetWithRevision(ctx, key)
	return entity, err
}

// GetWithRevision retrieves an entity and the revision it was read at.
func (r *NatsBaseRepository[T]) GetWithRevision(ctx context.Context, key string) (*T, uint64, error) {
	entry, err := r.GetRaw(ctx, key)
	if err != nil {
		return nil, 0, err
	}

	entity, err := r.unmarshal(ctx, entry)
	if err != nil {
		return nil, 0, err
	}

	return entity, entry.Revision(), nil
}

// Exists reports whether a key is present in the store.
func (r *NatsBaseRepository[T]) Exists(ctx context.Context, key string) (bool, error) {
	_, err := r.GetRaw(ctx, key)
	if err != nil {
		if domain.GetErrorType(err) == domain.ErrorTypeNotFound {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

// Put stores an entity unconditionally.
func (r *NatsBaseRepository[T]) Put(ctx context.Context, key string, entity *T) error {
	if !r.IsReady() {
		return domain.NewUnavailableError(fmt.Sprintf("%s repository is not available", r.entityName))
	}

	data, err := json.Marshal(entity)
	if err != nil {
		return domain.NewInternalError(fmt.Sprintf("failed to marshal %s", r.entityName), err)
	}

	if _, err := r.kvStore.Put(ctx, key, data); err != nil {
		slog.ErrorContext(ctx, fmt.Sprintf("error putting %s into NATS KV", r.entityName),
			logging.ErrKey, err, "key", key)
		return domain.NewInternalError(fmt.Sprintf("failed to store %s", r.entityName), err)
	}
	return nil
}

// Update stores an entity only if the store still holds the given revision.
// A concurrent writer surfaces as ErrRevisionMismatch so the caller can
// re-read and retry, or concede the race.
func (r *NatsBaseRepository[T]) Update(ctx context.Context, key string, entity *T, revision uint64) error {
	if !r.IsReady() {
		return domain.NewUnavailableError(fmt.Sprintf("%s repository is not available", r.entityName))
	}

	data, err := json.Marshal(entity)
	if err != nil {
		return domain.NewInternalError(fmt.Sprintf("failed to marshal %s", r.entityName), err)
	}

	if _, err := r.kvStore.Update(ctx, key, data, revision); err != nil {
		if isWrongRevision(err) {
			return domain.ErrRevisionMismatch
		}
		slog.ErrorContext(ctx, fmt.Sprintf("error updating %s in NATS KV", r.entityName),
			logging.ErrKey, err, "key", key, "revision", revision)
		return domain.NewInternalError(fmt.Sprintf("failed to update %s", r.entityName), err)
	}
	return nil
}

// DeleteKey removes a key from the store.
func (r *NatsBaseRepository[T]) DeleteKey(ctx context.Context, key string) error {
	if !r.IsReady() {
		return domain.NewUnavailableError(fmt.Sprintf("%s repository is not available", r.entityName))
	}

	if err := r.kvStore.Delete(ctx, key); err != nil && !errors.Is(err, jetstream.ErrKeyNotFound) {
		slog.ErrorContext(ctx, fmt.Sprintf("error deleting %s from NATS KV", r.entityName),
			logging.ErrKey, err, "key", key)
		return domain.NewInternalError(fmt.Sprintf("failed to delete %s", r.entityName), err)
	}
	return nil
}

// ListKeys returns every key in the bucket with the given prefix.
func (r *NatsBaseRepository[T]) ListKeys(ctx context.Context, prefix string) ([]string, error) {
	if !r.IsReady() {
		return nil, domain.NewUnavailableError(fmt.Sprintf("%s repository is not available", r.entityName))
	}

	lister, err := r.kvStore.ListKeys(ctx)
	if err != nil {
		slog.ErrorContext(ctx, fmt.Sprintf("error listing %s keys from NATS KV", r.entityName),
			logging.ErrKey, err)
		return nil, domain.ErrInternal
	}

	var keys []string
	for key := range lister.Keys() {
		if prefix == "" || strings.HasPrefix(key, prefix) {
			keys = append(keys, key)
		}
	}
	return keys, nil
}

// ListEntries returns every entity whose key carries the given prefix.
func (r *NatsBaseRepository[T]) ListEntries(ctx context.Context, prefix string) ([]*T, error) {
	keys, err := r.ListKeys(ctx, prefix)
	if err != nil {
		return nil, err
	}

	entities := make([]*T, 0, len(keys))
	for _, key := range keys {
		entity, _, err := r.GetWithRevision(ctx, key)
		if err != nil {
			// Deleted between listing and fetching; skip.
			if domain.GetErrorType(err) == domain.ErrorTypeNotFound {
				continue
			}
			return nil, err
		}
		entities = append(entities, entity)
	}
	return entities, nil
}

// isWrongRevision reports whether the error is NATS's compare-and-set
// failure for a stale revision.
func isWrongRevision(err error) bool {
	if errors.Is(err, jetstream.ErrKeyExists) {
		return true
	}
	var apiErr *jetstream.APIError
	if errors.As(err, &apiErr) {
		return apiErr.ErrorCode == jetstream.JSErrCodeStreamWrongLastSequence
	}
	return false
}
