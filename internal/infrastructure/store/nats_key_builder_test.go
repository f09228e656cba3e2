// Copyright The DocuFlow Authors.
// SPDX-License-Identifier: MIT

package store

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKeyBuilderEntityKey(t *testing.T) {
	kb := &KeyBuilder{}

	assert.Equal(t, "meeting/uid-123", kb.EntityKey(KeyPrefixMeeting, "uid-123"))
	assert.Equal(t, "event/uid-456", kb.EntityKey(KeyPrefixEvent, "uid-456"))
}

func TestKeyBuilderSessionIndexKey(t *testing.T) {
	kb := &KeyBuilder{}

	assert.Equal(t, "index/session/Ab3xYz9k", kb.SessionIndexKey("Ab3xYz9k"))
}

func TestKeyBuilderEncodeDecodeRoundTrip(t *testing.T) {
	kb := &KeyBuilder{}

	tests := []struct {
		name string
		key  string
	}{
		{
			name: "share grant key with email segment",
			key:  "share/Project/PROJ-0001/alice@example.com",
		},
		{
			name: "user key",
			key:  "user/bob@example.com",
		},
		{
			name: "segment with spaces",
			key:  "share/Sales Order/SO 42/carol@example.com",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			encoded, err := kb.EncodeKey(tc.key)
			require.NoError(t, err)
			// Encoded keys are dot-joined base64 segments, safe for NATS KV.
			assert.NotContains(t, encoded, "/")
			assert.NotContains(t, encoded, " ")

			decoded, err := kb.DecodeKey(encoded)
			require.NoError(t, err)
			assert.Equal(t, tc.key, decoded)
		})
	}
}

func TestKeyBuilderSharePrefix(t *testing.T) {
	kb := &KeyBuilder{}

	key, err := kb.ShareKey("Project", "PROJ-0001", "alice@example.com")
	require.NoError(t, err)

	prefix, err := kb.SharePrefix("Project", "PROJ-0001")
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(key, prefix))

	other, err := kb.ShareKey("Project", "PROJ-0002", "alice@example.com")
	require.NoError(t, err)
	assert.False(t, strings.HasPrefix(other, prefix))
}

func TestKeyBuilderDecodeKeyInvalid(t *testing.T) {
	kb := &KeyBuilder{}

	_, err := kb.DecodeKey("not base64!!")
	assert.Error(t, err)
}
