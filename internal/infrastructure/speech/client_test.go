// Copyright The DocuFlow Authors.
// SPDX-License-Identifier: MIT

package speech

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewClientDefaults(t *testing.T) {
	tests := []struct {
		name            string
		config          Config
		expectedTimeout time.Duration
		expectedRetries int
	}{
		{
			name:            "minimal config uses defaults",
			config:          Config{BaseURL: "http://engine.local"},
			expectedTimeout: DefaultClientTimeout,
			expectedRetries: DefaultMaxRetries,
		},
		{
			name: "explicit config kept",
			config: Config{
				BaseURL:    "http://engine.local",
				Timeout:    45 * time.Second,
				MaxRetries: 1,
			},
			expectedTimeout: 45 * time.Second,
			expectedRetries: 1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := NewClient(tt.config)
			require.NotNil(t, client)
			assert.Equal(t, tt.expectedTimeout, client.config.Timeout)
			assert.Equal(t, tt.expectedRetries, client.config.MaxRetries)
		})
	}
}

func TestTranscribeSuccess(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, transcriptionsPath, r.URL.Path)

		var req transcriptionRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "https://recordings.example.com/rec-1.mp4", req.RecordingURL)

		_ = json.NewEncoder(w).Encode(transcriptionResponse{
			Text:     "hello everyone",
			Language: "en",
		})
	}))
	defer server.Close()

	client := NewClient(Config{BaseURL: server.URL})

	result, err := client.Transcribe(context.Background(), "https://recordings.example.com/rec-1.mp4")
	require.NoError(t, err)
	assert.Equal(t, "hello everyone", result.Text)
	assert.Equal(t, "en", result.Language)
}

func TestTranscribeRetriesServerErrors(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		_ = json.NewEncoder(w).Encode(transcriptionResponse{Text: "recovered", Language: "en"})
	}))
	defer server.Close()

	client := NewClient(Config{
		BaseURL:        server.URL,
		InitialBackoff: time.Millisecond,
		MaxBackoff:     5 * time.Millisecond,
	})

	result, err := client.Transcribe(context.Background(), "https://recordings.example.com/rec-2.mp4")
	require.NoError(t, err)
	assert.Equal(t, "recovered", result.Text)
	assert.Equal(t, int32(2), calls.Load())
}

func TestTranscribeDoesNotRetryClientErrors(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusBadRequest)
	}))
	defer server.Close()

	client := NewClient(Config{BaseURL: server.URL, InitialBackoff: time.Millisecond})

	_, err := client.Transcribe(context.Background(), "https://recordings.example.com/rec-3.mp4")
	require.Error(t, err)
	assert.Equal(t, int32(1), calls.Load())
}

func TestTranscribeGivesUpAfterMaxRetries(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	client := NewClient(Config{
		BaseURL:        server.URL,
		MaxRetries:     2,
		InitialBackoff: time.Millisecond,
		MaxBackoff:     5 * time.Millisecond,
	})

	_, err := client.Transcribe(context.Background(), "https://recordings.example.com/rec-4.mp4")
	require.Error(t, err)
	assert.Equal(t, int32(3), calls.Load())
}
