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

type invitationFixture struct {
	meetingRepo *mocks.MockMeetingRepository
	shareRepo   *mocks.MockShareRepository
	notifier    *mocks.MockNotificationWriter
	userReader  *mocks.MockUserReader
	email       *mocks.MockEmailService
	service     *InvitationService
}

func newInvitationFixture() *invitationFixture {
	f := &invitationFixture{
		meetingRepo: new(mocks.MockMeetingRepository),
		shareRepo:   new(mocks.MockShareRepository),
		notifier:    new(mocks.MockNotificationWriter),
		userReader:  new(mocks.MockUserReader),
		email:       new(mocks.MockEmailService),
	}
	eventSync := NewEventSyncService(new(mocks.MockEventRepository), new(mocks.MockMessageBuilder), NewOccurrenceService(), testConfig())
	f.service = NewInvitationService(f.meetingRepo, f.shareRepo, f.notifier, f.userReader, f.email, eventSync, testConfig())
	return f
}

func TestInvitationServiceDispatchInvitations(t *testing.T) {
	ctx := context.Background()

	t.Run("shares, notifies, and emails each added user", func(t *testing.T) {
		f := newInvitationFixture()
		meeting := syncTestMeeting()

		f.meetingRepo.On("Get", mock.Anything, "uid-1").Return(meeting, nil)
		f.userReader.On("Get", mock.Anything, "alice@example.com").Return(&models.User{Identity: "alice@example.com", FullName: "Alice Doe"}, nil)
		f.userReader.On("Get", mock.Anything, "bob@example.com").Return(&models.User{Identity: "bob@example.com", FullName: "Bob Roe"}, nil)

		f.shareRepo.On("Grant", mock.Anything, mock.MatchedBy(func(grant models.ShareGrant) bool {
			return grant.DocType == "Meeting" && grant.DocName == "uid-1" && grant.User == "bob@example.com" && grant.Read
		})).Return(nil)
		f.notifier.On("Create", mock.Anything, mock.MatchedBy(func(n *models.Notification) bool {
			return n.ForUser == "bob@example.com" && n.DocName == "uid-1"
		})).Return(nil)
		f.email.On("SendMeetingInvitation", mock.Anything, mock.MatchedBy(func(inv domain.EmailInvitation) bool {
			return inv.RecipientEmail == "bob@example.com" &&
				inv.RecipientName == "Bob Roe" &&
				inv.HostName == "Alice Doe" &&
				inv.JoinLink != ""
		})).Return(nil)

		err := f.service.DispatchInvitations(ctx, models.InviteParticipantsJob{
			MeetingUID: "uid-1",
			AddedUsers: []string{"alice@example.com", "bob@example.com"},
			RunAs:      "meet-service",
		})
		require.NoError(t, err)

		f.shareRepo.AssertExpectations(t)
		f.notifier.AssertExpectations(t)
		f.email.AssertExpectations(t)
		// The host never gets an invitation.
		f.shareRepo.AssertNumberOfCalls(t, "Grant", 1)
	})

	t.Run("email failure does not fail the batch", func(t *testing.T) {
		f := newInvitationFixture()
		meeting := syncTestMeeting()

		f.meetingRepo.On("Get", mock.Anything, "uid-1").Return(meeting, nil)
		f.userReader.On("Get", mock.Anything, mock.AnythingOfType("string")).Return(nil, domain.ErrUserNotFound)
		f.shareRepo.On("Grant", mock.Anything, mock.AnythingOfType("models.ShareGrant")).Return(nil)
		f.notifier.On("Create", mock.Anything, mock.AnythingOfType("*models.Notification")).Return(nil)
		f.email.On("SendMeetingInvitation", mock.Anything, mock.AnythingOfType("domain.EmailInvitation")).Return(errors.New("smtp down"))

		err := f.service.DispatchInvitations(ctx, models.InviteParticipantsJob{
			MeetingUID: "uid-1",
			AddedUsers: []string{"bob@example.com"},
		})
		assert.NoError(t, err)
	})

	t.Run("share failure skips the user but continues", func(t *testing.T) {
		f := newInvitationFixture()
		meeting := syncTestMeeting()

		f.meetingRepo.On("Get", mock.Anything, "uid-1").Return(meeting, nil)
		f.userReader.On("Get", mock.Anything, mock.AnythingOfType("string")).Return(nil, domain.ErrUserNotFound)
		f.shareRepo.On("Grant", mock.Anything, mock.MatchedBy(func(grant models.ShareGrant) bool {
			return grant.User == "bob@example.com"
		})).Return(errors.New("kv down"))
		f.shareRepo.On("Grant", mock.Anything, mock.MatchedBy(func(grant models.ShareGrant) bool {
			return grant.User == "dave@example.com"
		})).Return(nil)
		f.notifier.On("Create", mock.Anything, mock.MatchedBy(func(n *models.Notification) bool {
			return n.ForUser == "dave@example.com"
		})).Return(nil)
		f.email.On("SendMeetingInvitation", mock.Anything, mock.AnythingOfType("domain.EmailInvitation")).Return(nil)

		err := f.service.DispatchInvitations(ctx, models.InviteParticipantsJob{
			MeetingUID: "uid-1",
			AddedUsers: []string{"bob@example.com", "dave@example.com"},
		})
		assert.NoError(t, err)
		f.notifier.AssertNumberOfCalls(t, "Create", 1)
	})

	t.Run("missing meeting drops the job", func(t *testing.T) {
		f := newInvitationFixture()
		f.meetingRepo.On("Get", mock.Anything, "gone").Return(nil, domain.ErrMeetingNotFound)

		err := f.service.DispatchInvitations(ctx, models.InviteParticipantsJob{MeetingUID: "gone", AddedUsers: []string{"x@example.com"}})
		assert.NoError(t, err)
	})
}
