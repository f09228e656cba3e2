// Copyright The DocuFlow Authors.
// SPDX-License-Identifier: MIT

package store

import (
	"context"
	"strings"
	"time"

	"github.com/docuflow/meet-service/internal/domain"
	"github.com/docuflow/meet-service/internal/domain/models"
)

// NatsShareRepository stores read grants keyed by (doctype, docname, user).
// Keys are segment-encoded because user identities are email addresses.
type NatsShareRepository struct {
	*NatsBaseRepository[models.ShareGrant]
	keyBuilder KeyBuilder
}

// NewNatsShareRepository creates a new NATS KV store repository for share grants.
func NewNatsShareRepository(shares INatsKeyValue) *NatsShareRepository {
	return &NatsShareRepository{
		NatsBaseRepository: NewNatsBaseRepository[models.ShareGrant](shares, "share grant"),
	}
}

// Grant stores a share grant. Granting an existing share overwrites it, so
// reconciliation stays idempotent.
func (r *NatsShareRepository) Grant(ctx context.Context, grant models.ShareGrant) error {
	key, err := r.keyBuilder.ShareKey(grant.DocType, grant.DocName, grant.User)
	if err != nil {
		return domain.NewInternalError("failed to build share key", err)
	}

	now := time.Now().UTC()
	grant.GrantedAt = &now
	return r.Put(ctx, key, &grant)
}

// Revoke removes a share grant. Revoking an absent grant is a no-op.
func (r *NatsShareRepository) Revoke(ctx context.Context, docType, docName, user string) error {
	key, err := r.keyBuilder.ShareKey(docType, docName, user)
	if err != nil {
		return domain.NewInternalError("failed to build share key", err)
	}
	return r.DeleteKey(ctx, key)
}

// ListUsers returns every user holding a grant on the record.
func (r *NatsShareRepository) ListUsers(ctx context.Context, docType, docName string) ([]string, error) {
	prefix, err := r.keyBuilder.SharePrefix(docType, docName)
	if err != nil {
		return nil, domain.NewInternalError("failed to build share prefix", err)
	}

	keys, err := r.ListKeys(ctx, prefix)
	if err != nil {
		return nil, err
	}

	users := make([]string, 0, len(keys))
	for _, key := range keys {
		decoded, err := r.keyBuilder.DecodeKey(key)
		if err != nil {
			return nil, domain.NewInternalError("failed to decode share key", err)
		}
		parts := strings.Split(decoded, "/")
		users = append(users, parts[len(parts)-1])
	}
	return users, nil
}
