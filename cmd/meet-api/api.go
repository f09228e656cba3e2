// Copyright The DocuFlow Authors.
// SPDX-License-Identifier: MIT

package main

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/docuflow/meet-service/internal/domain"
	"github.com/docuflow/meet-service/internal/domain/models"
	"github.com/docuflow/meet-service/internal/middleware"
	"github.com/docuflow/meet-service/internal/service"
)

// MeetAPI exposes the meet service's use cases over HTTP.
type MeetAPI struct {
	meetingService       *service.MeetingService
	webhookService       *service.WebhookService
	transcriptionService *service.TranscriptionService
}

// NewMeetAPI creates a new MeetAPI.
func NewMeetAPI(
	meetingService *service.MeetingService,
	webhookService *service.WebhookService,
	transcriptionService *service.TranscriptionService,
) *MeetAPI {
	return &MeetAPI{
		meetingService:       meetingService,
		webhookService:       webhookService,
		transcriptionService: transcriptionService,
	}
}

// errorResponse is the JSON error body shared by all routes.
type errorResponse struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

// writeError maps a domain error to its HTTP status.
func writeError(c *gin.Context, err error) {
	var code int
	switch domain.GetErrorType(err) {
	case domain.ErrorTypeValidation:
		code = http.StatusBadRequest
	case domain.ErrorTypeUnauthorized:
		code = http.StatusUnauthorized
	case domain.ErrorTypeForbidden:
		code = http.StatusForbidden
	case domain.ErrorTypeNotFound:
		code = http.StatusNotFound
	case domain.ErrorTypeConflict:
		code = http.StatusConflict
	case domain.ErrorTypeUnavailable:
		code = http.StatusServiceUnavailable
	default:
		code = http.StatusInternalServerError
	}
	c.AbortWithStatusJSON(code, errorResponse{Code: code, Message: err.Error()})
}

// Livez checks if the service is alive.
func (a *MeetAPI) Livez(c *gin.Context) {
	// This always returns as long as the service is still running. As this
	// endpoint is expected to be used as a Kubernetes liveness check, this
	// service must likewise self-detect non-recoverable errors and
	// self-terminate.
	c.String(http.StatusOK, "OK\n")
}

// Readyz checks if the service is able to take inbound requests.
func (a *MeetAPI) Readyz(c *gin.Context) {
	if !a.meetingService.ServiceReady() || !a.webhookService.ServiceReady() {
		writeError(c, domain.ErrServiceUnavailable)
		return
	}
	c.String(http.StatusOK, "OK\n")
}

// createRoomPayload is the request body for room creation.
type createRoomPayload struct {
	ReferenceDocType string     `json:"reference_doctype"`
	ReferenceDocName string     `json:"reference_docname"`
	Details          string     `json:"meeting_details"`
	StartTime        *time.Time `json:"start_time"`
	Participants     []string   `json:"participants"`

	RepeatThisMeeting bool                   `json:"repeat_this_meeting"`
	RepeatOn          models.RepeatFrequency `json:"repeat_on"`
	RepeatTill        *time.Time             `json:"repeat_till"`
	Weekdays          models.Weekdays        `json:"weekdays"`
}

// createRoomResponse is the response body for room creation.
type createRoomResponse struct {
	Meeting  *models.Meeting `json:"meeting"`
	RoomName string          `json:"room_name"`
	JoinLink string          `json:"join_link"`
}

// CreateRoom handles POST /api/v1/rooms.
func (a *MeetAPI) CreateRoom(c *gin.Context) {
	var payload createRoomPayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		writeError(c, domain.NewValidationError("invalid request body", err))
		return
	}

	result, err := a.meetingService.CreateRoom(c.Request.Context(), service.CreateRoomRequest{
		Host:              middleware.GetPrincipal(c),
		ReferenceDocType:  payload.ReferenceDocType,
		ReferenceDocName:  payload.ReferenceDocName,
		Details:           payload.Details,
		StartTime:         payload.StartTime,
		Participants:      payload.Participants,
		RepeatThisMeeting: payload.RepeatThisMeeting,
		RepeatOn:          payload.RepeatOn,
		RepeatTill:        payload.RepeatTill,
		Weekdays:          payload.Weekdays,
	})
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusCreated, createRoomResponse{
		Meeting:  result.Meeting,
		RoomName: result.RoomName,
		JoinLink: result.JoinLink,
	})
}

// JoinRoom handles GET /api/v1/rooms/:room/join. It redirects the browser to
// the conferencing deployment, with a signed token when the deployment is
// secured.
func (a *MeetAPI) JoinRoom(c *gin.Context) {
	target, err := a.meetingService.JoinRoom(c.Request.Context(), c.Param("room"), middleware.GetPrincipal(c))
	if err != nil {
		writeError(c, err)
		return
	}
	c.Redirect(http.StatusFound, target)
}

// StartRoom handles POST /api/v1/rooms/:room/start.
func (a *MeetAPI) StartRoom(c *gin.Context) {
	err := a.meetingService.StartRoom(c.Request.Context(), c.Param("room"), middleware.GetPrincipal(c))
	if err != nil {
		writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// EndRoom handles POST /api/v1/rooms/:room/end.
func (a *MeetAPI) EndRoom(c *gin.Context) {
	err := a.meetingService.EndRoom(c.Request.Context(), c.Param("room"), middleware.GetPrincipal(c))
	if err != nil {
		writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// rsvpPayload is the request body for RSVP.
type rsvpPayload struct {
	Status models.InvitationStatus `json:"status"`
}

// RSVP handles POST /api/v1/rooms/:room/rsvp.
func (a *MeetAPI) RSVP(c *gin.Context) {
	var payload rsvpPayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		writeError(c, domain.NewValidationError("invalid request body", err))
		return
	}

	err := a.meetingService.RSVP(c.Request.Context(), c.Param("room"), middleware.GetPrincipal(c), payload.Status)
	if err != nil {
		writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// GetMeeting handles GET /api/v1/meetings/:uid.
func (a *MeetAPI) GetMeeting(c *gin.Context) {
	meeting, err := a.meetingService.GetMeeting(c.Request.Context(), c.Param("uid"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, meeting)
}

// replaceParticipantsPayload is the request body for the participant list
// replacement.
type replaceParticipantsPayload struct {
	Participants []models.Participant `json:"participants"`
}

// ReplaceParticipants handles PUT /api/v1/meetings/:uid/participants.
func (a *MeetAPI) ReplaceParticipants(c *gin.Context) {
	var payload replaceParticipantsPayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		writeError(c, domain.NewValidationError("invalid request body", err))
		return
	}

	meeting, err := a.meetingService.ReplaceParticipants(
		c.Request.Context(), c.Param("uid"), middleware.GetPrincipal(c), payload.Participants)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, meeting)
}

// GetTranscript handles GET /api/v1/meetings/:uid/transcript.
func (a *MeetAPI) GetTranscript(c *gin.Context) {
	transcript, err := a.transcriptionService.GetTranscript(c.Request.Context(), c.Param("uid"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, transcript)
}

// webhookPayload is the request body posted by the conferencing backend:
// the event, the room it concerns, and the shared token.
type webhookPayload struct {
	service.WebhookEvent
	Token string `json:"token"`
}

// Webhook handles POST /webhooks/jitsi. The shared token travels in the
// payload; an Authorization bearer header is accepted as an alternative.
// Payloads for unknown rooms are acknowledged and dropped.
func (a *MeetAPI) Webhook(c *gin.Context) {
	var payload webhookPayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		writeError(c, domain.NewValidationError("invalid webhook payload", err))
		return
	}

	token := payload.Token
	if token == "" {
		token = strings.TrimPrefix(c.GetHeader("Authorization"), "Bearer ")
	}
	if err := a.webhookService.Authorize(token); err != nil {
		writeError(c, err)
		return
	}

	if err := a.webhookService.HandleEvent(c.Request.Context(), payload.WebhookEvent); err != nil {
		writeError(c, err)
		return
	}
	c.Status(http.StatusOK)
}
