// Copyright The DocuFlow Authors.
// SPDX-License-Identifier: MIT

package domain

import "context"

// SpeechResult is the output of the external speech-to-text engine.
type SpeechResult struct {
	Text     string
	Language string
}

// SpeechToText is the narrow interface over the external transcription
// engine. The engine's internals (model, diarization) are out of scope.
type SpeechToText interface {
	Transcribe(ctx context.Context, recordingURL string) (*SpeechResult, error)
}

// TokenIssuer builds signed conferencing-access tokens. An empty token with
// a nil error means the deployment runs unsecured and callers should join
// without a token.
type TokenIssuer interface {
	Issue(ctx context.Context, roomName, identity string, moderator bool) (string, error)
}
