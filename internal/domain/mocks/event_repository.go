// Copyright The DocuFlow Authors.
// SPDX-License-Identifier: MIT

package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/docuflow/meet-service/internal/domain/models"
)

// MockEventRepository implements domain.EventRepository for testing
type MockEventRepository struct {
	mock.Mock
}

func (m *MockEventRepository) Create(ctx context.Context, event *models.CalendarEvent) error {
	args := m.Called(ctx, event)
	return args.Error(0)
}

func (m *MockEventRepository) Get(ctx context.Context, uid string) (*models.CalendarEvent, error) {
	args := m.Called(ctx, uid)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.CalendarEvent), args.Error(1)
}

func (m *MockEventRepository) GetWithRevision(ctx context.Context, uid string) (*models.CalendarEvent, uint64, error) {
	args := m.Called(ctx, uid)
	if args.Get(0) == nil {
		return nil, args.Get(1).(uint64), args.Error(2)
	}
	return args.Get(0).(*models.CalendarEvent), args.Get(1).(uint64), args.Error(2)
}

func (m *MockEventRepository) Update(ctx context.Context, event *models.CalendarEvent, revision uint64) error {
	args := m.Called(ctx, event, revision)
	return args.Error(0)
}

// MockShareRepository implements domain.ShareRepository for testing
type MockShareRepository struct {
	mock.Mock
}

func (m *MockShareRepository) Grant(ctx context.Context, grant models.ShareGrant) error {
	args := m.Called(ctx, grant)
	return args.Error(0)
}

func (m *MockShareRepository) Revoke(ctx context.Context, docType, docName, user string) error {
	args := m.Called(ctx, docType, docName, user)
	return args.Error(0)
}

func (m *MockShareRepository) ListUsers(ctx context.Context, docType, docName string) ([]string, error) {
	args := m.Called(ctx, docType, docName)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]string), args.Error(1)
}

// MockUserReader implements domain.UserReader for testing
type MockUserReader struct {
	mock.Mock
}

func (m *MockUserReader) Get(ctx context.Context, identity string) (*models.User, error) {
	args := m.Called(ctx, identity)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

// MockNotificationWriter implements domain.NotificationWriter for testing
type MockNotificationWriter struct {
	mock.Mock
}

func (m *MockNotificationWriter) Create(ctx context.Context, notification *models.Notification) error {
	args := m.Called(ctx, notification)
	return args.Error(0)
}

// MockTranscriptRepository implements domain.TranscriptRepository for testing
type MockTranscriptRepository struct {
	mock.Mock
}

func (m *MockTranscriptRepository) Put(ctx context.Context, transcript *models.Transcript) error {
	args := m.Called(ctx, transcript)
	return args.Error(0)
}

func (m *MockTranscriptRepository) Get(ctx context.Context, meetingUID string) (*models.Transcript, error) {
	args := m.Called(ctx, meetingUID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Transcript), args.Error(1)
}
