// Copyright The DocuFlow Authors.
// SPDX-License-Identifier: MIT

package store

import (
	"encoding/base64"
	"fmt"
	"strings"

	"github.com/nats-io/nats.go"
)

// Common key prefixes
const (
	// Entity prefixes
	KeyPrefixMeeting      = "meeting"
	KeyPrefixEvent        = "event"
	KeyPrefixShare        = "share"
	KeyPrefixUser         = "user"
	KeyPrefixNotification = "notification"
	KeyPrefixTranscript   = "transcript"

	// Index prefixes
	KeyPrefixIndex        = "index"
	KeyPrefixIndexSession = "session"
)

// KeyBuilder provides utilities for building consistent NATS KV keys.
// Segments that may contain characters NATS rejects (user identities are
// email addresses) go through EncodeKey.
type KeyBuilder struct{}

// EntityKey builds a key for an entity (e.g. "meeting/uid-123").
func (kb *KeyBuilder) EntityKey(entityType, uid string) string {
	return fmt.Sprintf("%s/%s", entityType, uid)
}

// SessionIndexKey builds the secondary-index key mapping a session id to its
// meeting UID.
func (kb *KeyBuilder) SessionIndexKey(sessionID string) string {
	return fmt.Sprintf("%s/%s/%s", KeyPrefixIndex, KeyPrefixIndexSession, sessionID)
}

// ShareKey builds the encoded key for a share grant.
func (kb *KeyBuilder) ShareKey(docType, docName, user string) (string, error) {
	return kb.EncodeKey(fmt.Sprintf("%s/%s/%s/%s", KeyPrefixShare, docType, docName, user))
}

// SharePrefix builds the encoded key prefix under which every grant for a
// record lives.
func (kb *KeyBuilder) SharePrefix(docType, docName string) (string, error) {
	encoded, err := kb.EncodeKey(fmt.Sprintf("%s/%s/%s", KeyPrefixShare, docType, docName))
	if err != nil {
		return "", err
	}
	return encoded + ".", nil
}

// UserKey builds the encoded key for a directory record.
func (kb *KeyBuilder) UserKey(identity string) (string, error) {
	return kb.EncodeKey(fmt.Sprintf("%s/%s", KeyPrefixUser, identity))
}

// EncodeKey encodes a key for the NATS KV store, base64-encoding each path
// segment and joining with dots.
// From https://github.com/ripienaar/encodedkv
//
// NATS limitations: https://docs.nats.io/nats-concepts/jetstream/key-value-store#notes
func (kb *KeyBuilder) EncodeKey(key string) (string, error) {
	res := []string{}
	for _, part := range strings.Split(strings.TrimPrefix(key, "/"), "/") {
		if part == ">" || part == "*" {
			res = append(res, part)
			continue
		}

		dst := make([]byte, base64.StdEncoding.EncodedLen(len(part)))
		base64.StdEncoding.Encode(dst, []byte(part))
		res = append(res, string(dst))
	}

	if len(res) == 0 {
		return "", nats.ErrInvalidKey
	}

	return strings.Join(res, "."), nil
}

// DecodeKey reverses EncodeKey.
func (kb *KeyBuilder) DecodeKey(encoded string) (string, error) {
	res := []string{}
	for _, part := range strings.Split(encoded, ".") {
		if part == ">" || part == "*" {
			res = append(res, part)
			continue
		}

		decoded, err := base64.StdEncoding.DecodeString(part)
		if err != nil {
			return "", err
		}
		res = append(res, string(decoded))
	}

	return strings.Join(res, "/"), nil
}
