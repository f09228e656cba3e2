// Copyright The DocuFlow Authors.
// SPDX-License-Identifier: MIT

package utils

import (
	"crypto/rand"

	"github.com/akamensky/base58"
)

// sessionIDBytes is the entropy of a session id. Six bytes base58-encode to
// an eight or nine character token, short enough to read aloud.
const sessionIDBytes = 6

// NewSessionID generates the short random token that identifies one meeting
// inside its room name. Session ids never contain hyphens, which the room
// name codec relies on.
func NewSessionID() string {
	buf := make([]byte, sessionIDBytes)
	// rand.Read never returns an error on supported platforms.
	_, _ = rand.Read(buf)
	return base58.Encode(buf)
}
