// Copyright The DocuFlow Authors.
// SPDX-License-Identifier: MIT

// Package tokens issues signed JWTs for the Jitsi conferencing backend.
package tokens

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/google/uuid"

	"github.com/docuflow/meet-service/internal/domain"
	"github.com/docuflow/meet-service/internal/logging"
	"github.com/docuflow/meet-service/pkg/constants"
)

// Room scopes for issued tokens.
const (
	// RoomScopeExact limits a token to the single room it was issued for.
	RoomScopeExact = "exact"

	// RoomScopeWildcard issues tokens valid for any room on the deployment.
	RoomScopeWildcard = "wildcard"
)

// Config holds the Jitsi deployment settings for token issuance. An empty
// AppID or AppSecret marks the deployment unsecured: Issue then returns an
// empty token and callers join without one.
type Config struct {
	AppID     string
	AppSecret string
	Domain    string
	RoomScope string
	TTL       time.Duration
}

// JitsiIssuer signs HS256 conference tokens the way the Jitsi JWT
// authentication plugin expects them.
type JitsiIssuer struct {
	config     Config
	userReader domain.UserReader
}

// NewJitsiIssuer creates a new JitsiIssuer.
func NewJitsiIssuer(config Config, userReader domain.UserReader) *JitsiIssuer {
	if config.RoomScope == "" {
		config.RoomScope = RoomScopeExact
	}
	if config.TTL == 0 {
		config.TTL = constants.TokenTTL
	}
	return &JitsiIssuer{
		config:     config,
		userReader: userReader,
	}
}

// Issue builds a signed token for the identity to enter the room. A guest
// (empty identity) gets a generated guest id and never moderator rights.
func (i *JitsiIssuer) Issue(ctx context.Context, roomName, identity string, moderator bool) (string, error) {
	if i.config.AppID == "" || i.config.AppSecret == "" {
		return "", nil
	}

	name := "Guest"
	email := ""
	avatar := ""
	id := identity
	if identity == "" {
		id = fmt.Sprintf("guest-%s", uuid.New().String()[:8])
		moderator = false
	} else {
		// An identity without a directory record still gets a token; the
		// identity doubles as the display name.
		name = identity
		email = identity
		user, err := i.userReader.Get(ctx, identity)
		if err == nil {
			if user.FullName != "" {
				name = user.FullName
			}
			avatar = user.AvatarURL
		} else if domain.GetErrorType(err) != domain.ErrorTypeNotFound {
			slog.WarnContext(ctx, "error looking up user for token, issuing with identity only",
				logging.ErrKey, err, "identity", identity)
		}
	}

	affiliation := "member"
	if moderator {
		affiliation = "owner"
	}

	room := roomName
	if i.config.RoomScope == RoomScopeWildcard {
		room = "*"
	}

	now := time.Now()
	claims := jwt.MapClaims{
		"context": map[string]any{
			"user": map[string]any{
				"avatar":      avatar,
				"name":        name,
				"email":       email,
				"id":          id,
				"moderator":   moderator,
				"affiliation": affiliation,
			},
			"features": map[string]any{
				"livestreaming": moderator,
				"recording":     moderator,
			},
		},
		"aud":         "jitsi",
		"iss":         i.config.AppID,
		"sub":         "meet.jitsi",
		"room":        room,
		"moderator":   moderator,
		"affiliation": affiliation,
		"iat":         now.Unix(),
		"exp":         now.Add(i.config.TTL).Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(i.config.AppSecret))
	if err != nil {
		return "", domain.NewInternalError("failed to sign conference token", err)
	}
	return signed, nil
}
