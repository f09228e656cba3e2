// Copyright The DocuFlow Authors.
// SPDX-License-Identifier: MIT

// Package main is the meet service API that exposes a RESTful API for video
// meeting rooms and consumes the service's NATS job subjects.
package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/nats-io/nats.go"

	"github.com/docuflow/meet-service/internal/handlers"
	"github.com/docuflow/meet-service/internal/infrastructure/messaging"
	"github.com/docuflow/meet-service/internal/infrastructure/tokens"
	"github.com/docuflow/meet-service/internal/logging"
	"github.com/docuflow/meet-service/internal/service"
)

// sweepInterval is how often the lifecycle sweep runs.
const sweepInterval = time.Hour

func main() {
	env := parseEnv()
	flags := parseFlags(env.Port)

	logging.InitStructureLogConfig()

	// Initialize email service (independent of NATS)
	emailService, err := setupEmailService(env)
	if err != nil {
		slog.With(logging.ErrKey, err).Error("error setting up email service")
		return
	}

	// Setup graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	done := make(chan os.Signal, 1)
	signal.Notify(done, os.Interrupt, syscall.SIGINT, syscall.SIGTERM)
	gracefulCloseWG := sync.WaitGroup{}

	// Setup NATS connection
	natsConn, err := setupNATS(ctx, env, &gracefulCloseWG, done)
	if err != nil {
		slog.With(logging.ErrKey, err).Error("error setting up NATS")
		return
	}

	// Get the key-value stores for the service.
	repos, err := getKeyValueStores(ctx, natsConn)
	if err != nil {
		slog.With(logging.ErrKey, err).Error("error getting key-value stores")
		return
	}

	// Initialize services
	serviceConfig := service.ServiceConfig{
		IntegrationEnabled:   env.IntegrationEnabled,
		TranscriptionEnabled: env.TranscriptionEnabled,
		ServiceIdentity:      env.ServiceIdentity,
		PublicURL:            env.PublicURL,
		ConferencingDomain:   env.Jitsi.Domain,
	}
	messageBuilder := messaging.NewMessageBuilder(natsConn)
	tokenIssuer := tokens.NewJitsiIssuer(tokens.Config{
		AppID:     env.Jitsi.AppID,
		AppSecret: env.Jitsi.AppSecret,
		Domain:    env.Jitsi.Domain,
		RoomScope: env.Jitsi.RoomScope,
	}, repos.User)
	occurrenceService := service.NewOccurrenceService()
	eventSyncService := service.NewEventSyncService(
		repos.Event,
		messageBuilder,
		occurrenceService,
		serviceConfig,
	)
	meetingService := service.NewMeetingService(
		repos.Meeting,
		eventSyncService,
		messageBuilder,
		tokenIssuer,
		serviceConfig,
	)
	webhookService := service.NewWebhookService(
		repos.Meeting,
		messageBuilder,
		env.Jitsi.WebhookSecret,
		serviceConfig,
	)
	invitationService := service.NewInvitationService(
		repos.Meeting,
		repos.Share,
		repos.Notification,
		repos.User,
		emailService,
		eventSyncService,
		serviceConfig,
	)
	shareService := service.NewShareReconcileService(
		repos.Event,
		repos.Share,
	)
	transcriptionService := service.NewTranscriptionService(
		repos.Meeting,
		repos.Transcript,
		setupSpeechToText(env),
		serviceConfig,
	)
	sweepService := service.NewSweepService(
		repos.Meeting,
		eventSyncService,
		occurrenceService,
	)

	// Initialize handlers
	jobHandler := handlers.NewJobHandler(
		invitationService,
		shareService,
		transcriptionService,
	)

	api := NewMeetAPI(
		meetingService,
		webhookService,
		transcriptionService,
	)

	httpServer := setupHTTPServer(flags, api, &gracefulCloseWG)

	// Create NATS subscriptions for the service.
	err = createNatsSubscriptions(ctx, jobHandler, natsConn)
	if err != nil {
		slog.With(logging.ErrKey, err).Error("error creating NATS subscriptions")
		return
	}

	startSweepLoop(ctx, sweepService)

	// This next line blocks until SIGINT or SIGTERM is received.
	<-done

	gracefulShutdown(httpServer, natsConn, &gracefulCloseWG, cancel)
}

// startSweepLoop runs the lifecycle sweep on an interval until the context
// is cancelled. One sweep runs shortly after startup so restarts do not
// delay overdue cleanup by a full interval.
func startSweepLoop(ctx context.Context, sweepService *service.SweepService) {
	go func() {
		ticker := time.NewTicker(sweepInterval)
		defer ticker.Stop()

		startup := time.NewTimer(time.Minute)
		defer startup.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-startup.C:
			case <-ticker.C:
			}

			if err := sweepService.Sweep(ctx, time.Now().UTC()); err != nil {
				slog.ErrorContext(ctx, "lifecycle sweep failed", logging.ErrKey, err)
			}
		}
	}()
}

// gracefulShutdown stops the HTTP listener, drains the NATS connection, and
// waits for both to finish.
func gracefulShutdown(httpServer *http.Server, natsConn *nats.Conn, gracefulCloseWG *sync.WaitGroup, cancel context.CancelFunc) {
	slog.Info("shutting down")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 25*time.Second)
	defer shutdownCancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		slog.With(logging.ErrKey, err).Error("error shutting down http server")
	}
	gracefulCloseWG.Done()

	if !natsConn.IsClosed() {
		// Drain unsubscribes and flushes in-flight messages; the closed
		// handler decrements the wait group.
		if err := natsConn.Drain(); err != nil {
			slog.With(logging.ErrKey, err).Error("error draining NATS connection")
		}
	}

	cancel()
	gracefulCloseWG.Wait()
	slog.Info("shutdown complete")
}
