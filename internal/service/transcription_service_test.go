// Copyright The DocuFlow Authors.
// SPDX-License-Identifier: MIT

package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/docuflow/meet-service/internal/domain"
	"github.com/docuflow/meet-service/internal/domain/mocks"
	"github.com/docuflow/meet-service/internal/domain/models"
)

type transcriptionFixture struct {
	meetingRepo    *mocks.MockMeetingRepository
	transcriptRepo *mocks.MockTranscriptRepository
	speech         *mocks.MockSpeechToText
	service        *TranscriptionService
}

func newTranscriptionFixture(config ServiceConfig) *transcriptionFixture {
	f := &transcriptionFixture{
		meetingRepo:    new(mocks.MockMeetingRepository),
		transcriptRepo: new(mocks.MockTranscriptRepository),
		speech:         new(mocks.MockSpeechToText),
	}
	f.service = NewTranscriptionService(f.meetingRepo, f.transcriptRepo, f.speech, config)
	return f
}

func TestTranscriptionServiceProcessRecording(t *testing.T) {
	ctx := context.Background()
	job := models.TranscribeRecordingJob{
		MeetingUID:   "uid-1",
		RecordingURL: "https://rec.example.com/a.mp4",
		RunAs:        "meet-service",
	}

	t.Run("stores the transcript and mirrors completion", func(t *testing.T) {
		f := newTranscriptionFixture(testConfig())
		meeting := syncTestMeeting()

		f.meetingRepo.On("Get", mock.Anything, "uid-1").Return(meeting, nil)
		f.meetingRepo.On("GetWithRevision", mock.Anything, "uid-1").Return(meeting, uint64(2), nil)
		f.meetingRepo.On("Update", mock.Anything, meeting, uint64(2)).Return(nil)

		var statuses []models.TranscriptStatus
		f.transcriptRepo.On("Put", mock.Anything, mock.AnythingOfType("*models.Transcript")).
			Run(func(args mock.Arguments) {
				statuses = append(statuses, args.Get(1).(*models.Transcript).Status)
			}).
			Return(nil)
		f.speech.On("Transcribe", mock.Anything, job.RecordingURL).
			Return(&domain.SpeechResult{Text: "hello world", Language: "en"}, nil)

		err := f.service.ProcessRecording(ctx, job)
		require.NoError(t, err)

		assert.Equal(t, []models.TranscriptStatus{
			models.TranscriptStatusProcessing,
			models.TranscriptStatusCompleted,
		}, statuses)
		assert.Equal(t, models.TranscriptStatusCompleted, meeting.TranscriptStatus)
	})

	t.Run("engine failure is recorded as Failed", func(t *testing.T) {
		f := newTranscriptionFixture(testConfig())
		meeting := syncTestMeeting()

		f.meetingRepo.On("Get", mock.Anything, "uid-1").Return(meeting, nil)
		f.meetingRepo.On("GetWithRevision", mock.Anything, "uid-1").Return(meeting, uint64(2), nil)
		f.meetingRepo.On("Update", mock.Anything, meeting, uint64(2)).Return(nil)

		var last *models.Transcript
		f.transcriptRepo.On("Put", mock.Anything, mock.AnythingOfType("*models.Transcript")).
			Run(func(args mock.Arguments) {
				last = args.Get(1).(*models.Transcript)
			}).
			Return(nil)
		f.speech.On("Transcribe", mock.Anything, job.RecordingURL).
			Return(nil, errors.New("engine offline"))

		err := f.service.ProcessRecording(ctx, job)
		require.NoError(t, err)

		require.NotNil(t, last)
		assert.Equal(t, models.TranscriptStatusFailed, last.Status)
		assert.Equal(t, "engine offline", last.Error)
	})

	t.Run("disabled transcription refuses the job", func(t *testing.T) {
		config := testConfig()
		config.TranscriptionEnabled = false
		f := newTranscriptionFixture(config)

		err := f.service.ProcessRecording(ctx, job)
		assert.ErrorIs(t, err, domain.ErrTranscriptionDisabled)
	})

	t.Run("missing meeting drops the job", func(t *testing.T) {
		f := newTranscriptionFixture(testConfig())
		f.meetingRepo.On("Get", mock.Anything, "uid-1").Return(nil, domain.ErrMeetingNotFound)

		err := f.service.ProcessRecording(ctx, job)
		assert.NoError(t, err)
	})

	t.Run("lost meeting mirror race keeps the transcript", func(t *testing.T) {
		f := newTranscriptionFixture(testConfig())
		meeting := syncTestMeeting()

		f.meetingRepo.On("Get", mock.Anything, "uid-1").Return(meeting, nil)
		f.meetingRepo.On("GetWithRevision", mock.Anything, "uid-1").Return(meeting, uint64(2), nil)
		f.meetingRepo.On("Update", mock.Anything, meeting, uint64(2)).Return(domain.ErrRevisionMismatch)
		f.transcriptRepo.On("Put", mock.Anything, mock.AnythingOfType("*models.Transcript")).Return(nil)
		f.speech.On("Transcribe", mock.Anything, job.RecordingURL).
			Return(&domain.SpeechResult{Text: "hello", Language: "en"}, nil)

		err := f.service.ProcessRecording(ctx, job)
		assert.NoError(t, err)
	})
}

func TestTranscriptionServiceGetTranscript(t *testing.T) {
	f := newTranscriptionFixture(testConfig())
	transcript := &models.Transcript{MeetingUID: "uid-1", Status: models.TranscriptStatusCompleted, Text: "hello"}
	f.transcriptRepo.On("Get", mock.Anything, "uid-1").Return(transcript, nil)

	got, err := f.service.GetTranscript(context.Background(), "uid-1")
	require.NoError(t, err)
	assert.Equal(t, transcript, got)
}
