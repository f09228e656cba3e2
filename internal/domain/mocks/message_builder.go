// Copyright The DocuFlow Authors.
// SPDX-License-Identifier: MIT

package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/docuflow/meet-service/internal/domain"
	"github.com/docuflow/meet-service/internal/domain/models"
)

// MockMessageBuilder implements domain.MessageBuilder for testing
type MockMessageBuilder struct {
	mock.Mock
}

func (m *MockMessageBuilder) SendInviteParticipants(ctx context.Context, job models.InviteParticipantsJob) error {
	args := m.Called(ctx, job)
	return args.Error(0)
}

func (m *MockMessageBuilder) SendShareReconcile(ctx context.Context, job models.ShareReconcileJob) error {
	args := m.Called(ctx, job)
	return args.Error(0)
}

func (m *MockMessageBuilder) SendTranscribeRecording(ctx context.Context, job models.TranscribeRecordingJob) error {
	args := m.Called(ctx, job)
	return args.Error(0)
}

// MockEmailService implements domain.EmailService for testing
type MockEmailService struct {
	mock.Mock
}

func (m *MockEmailService) SendMeetingInvitation(ctx context.Context, invitation domain.EmailInvitation) error {
	args := m.Called(ctx, invitation)
	return args.Error(0)
}

// MockTokenIssuer implements domain.TokenIssuer for testing
type MockTokenIssuer struct {
	mock.Mock
}

func (m *MockTokenIssuer) Issue(ctx context.Context, roomName, identity string, moderator bool) (string, error) {
	args := m.Called(ctx, roomName, identity, moderator)
	return args.String(0), args.Error(1)
}

// MockSpeechToText implements domain.SpeechToText for testing
type MockSpeechToText struct {
	mock.Mock
}

func (m *MockSpeechToText) Transcribe(ctx context.Context, recordingURL string) (*domain.SpeechResult, error) {
	args := m.Called(ctx, recordingURL)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.SpeechResult), args.Error(1)
}

// MockMessage implements domain.Message for testing
type MockMessage struct {
	mock.Mock
}

func (m *MockMessage) Subject() string {
	args := m.Called()
	return args.String(0)
}

func (m *MockMessage) Data() []byte {
	args := m.Called()
	if args.Get(0) == nil {
		return nil
	}
	return args.Get(0).([]byte)
}

func (m *MockMessage) Respond(data []byte) error {
	args := m.Called(data)
	return args.Error(0)
}

func (m *MockMessage) HasReply() bool {
	args := m.Called()
	return args.Bool(0)
}
