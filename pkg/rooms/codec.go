// Copyright The DocuFlow Authors.
// SPDX-License-Identifier: MIT

// Package rooms derives conferencing room names from meeting fields.
//
// Room names are never stored: they are recomputed from the meeting's
// reference document and session id, and decoded back to the session id on
// every room-name-bearing request. The session id is the join key for the
// meeting lifecycle.
package rooms

import (
	"errors"
	"strings"
)

// Prefix is the leading segment of every room name.
const Prefix = "Meet"

// InstantSegment is used in place of a reference document for ad-hoc rooms.
const InstantSegment = "Instant"

// ErrMalformedRoomName is returned when a room name cannot be decoded.
var ErrMalformedRoomName = errors.New("malformed room name")

// Encode builds the room name for a meeting. When both reference fields are
// set the name embeds them; otherwise the room is an instant room. Spaces are
// replaced with underscores so the name survives URL handling.
//
// Decode splits on the final hyphen, so callers must ensure none of the
// inputs end with a literal "-" (see ValidateComponents).
func Encode(refDocType, refDocName, sessionID string) string {
	var name string
	if refDocType != "" && refDocName != "" {
		name = Prefix + "-" + refDocType + "-" + refDocName + "-" + sessionID
	} else {
		name = Prefix + "-" + InstantSegment + "-" + sessionID
	}
	return strings.ReplaceAll(name, " ", "_")
}

// Decode recovers the session id from a room name. The trailing segment after
// the last hyphen is the session id; any "?..." query suffix is stripped.
func Decode(roomName string) (string, error) {
	idx := strings.LastIndex(roomName, "-")
	if idx < 0 || idx == len(roomName)-1 {
		return "", ErrMalformedRoomName
	}

	sessionID := roomName[idx+1:]
	if q := strings.Index(sessionID, "?"); q >= 0 {
		sessionID = sessionID[:q]
	}
	if sessionID == "" {
		return "", ErrMalformedRoomName
	}

	return sessionID, nil
}

// ValidateComponents rejects inputs that would desynchronize Encode and
// Decode: a component ending in a hyphen shifts the final-segment boundary.
func ValidateComponents(refDocType, refDocName, sessionID string) error {
	if sessionID == "" || strings.Contains(sessionID, "-") {
		return ErrMalformedRoomName
	}
	for _, part := range []string{refDocType, refDocName} {
		if strings.HasSuffix(strings.TrimSpace(part), "-") {
			return ErrMalformedRoomName
		}
	}
	return nil
}
