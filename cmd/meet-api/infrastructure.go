// Copyright The DocuFlow Authors.
// SPDX-License-Identifier: MIT

package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"sync"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"

	"github.com/docuflow/meet-service/internal/domain"
	"github.com/docuflow/meet-service/internal/domain/models"
	"github.com/docuflow/meet-service/internal/infrastructure/email"
	"github.com/docuflow/meet-service/internal/infrastructure/speech"
	"github.com/docuflow/meet-service/internal/infrastructure/store"
	"github.com/docuflow/meet-service/internal/logging"
)

// setupNATS establishes the NATS connection used for both the KV stores and
// the job queue. The connection's closed handler participates in graceful
// shutdown via the wait group.
func setupNATS(ctx context.Context, env environment, gracefulCloseWG *sync.WaitGroup, done chan os.Signal) (*nats.Conn, error) {
	gracefulCloseWG.Add(1)

	natsConn, err := nats.Connect(
		env.NatsURL,
		nats.DrainTimeout(25*time.Second),
		nats.ConnectHandler(func(_ *nats.Conn) {
			slog.InfoContext(ctx, "NATS connection established", "nats_url", env.NatsURL)
		}),
		nats.ErrorHandler(func(_ *nats.Conn, s *nats.Subscription, err error) {
			if s != nil {
				slog.ErrorContext(ctx, "async NATS error", logging.ErrKey, err, "subject", s.Subject)
				return
			}
			slog.ErrorContext(ctx, "async NATS error", logging.ErrKey, err)
		}),
		nats.ClosedHandler(func(conn *nats.Conn) {
			slog.InfoContext(ctx, "NATS connection closed", logging.ErrKey, conn.LastError())
			gracefulCloseWG.Done()
			// If the connection closed without a shutdown signal, trigger one
			// so the rest of the process stops too.
			select {
			case done <- os.Interrupt:
			default:
			}
		}),
	)
	if err != nil {
		gracefulCloseWG.Done()
		return nil, fmt.Errorf("failed to connect to NATS at %s: %w", env.NatsURL, err)
	}

	return natsConn, nil
}

// repositories are the NATS KV backed stores used by the services.
type repositories struct {
	Meeting      *store.NatsMeetingRepository
	Event        *store.NatsEventRepository
	Share        *store.NatsShareRepository
	User         *store.NatsUserRepository
	Notification *store.NatsNotificationRepository
	Transcript   *store.NatsTranscriptRepository
}

// getKeyValueStores binds the service's KV buckets, creating any that do not
// exist yet, and wraps them in the entity repositories.
func getKeyValueStores(ctx context.Context, natsConn *nats.Conn) (*repositories, error) {
	js, err := jetstream.New(natsConn)
	if err != nil {
		return nil, fmt.Errorf("failed to create JetStream context: %w", err)
	}

	buckets := make(map[string]jetstream.KeyValue)
	for _, bucket := range []string{
		store.KVStoreNameMeetings,
		store.KVStoreNameEvents,
		store.KVStoreNameShares,
		store.KVStoreNameUsers,
		store.KVStoreNameNotifications,
		store.KVStoreNameTranscripts,
	} {
		kv, err := js.CreateOrUpdateKeyValue(ctx, jetstream.KeyValueConfig{
			Bucket:  bucket,
			History: 20,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to bind KV bucket %s: %w", bucket, err)
		}
		buckets[bucket] = kv
	}

	return &repositories{
		Meeting:      store.NewNatsMeetingRepository(buckets[store.KVStoreNameMeetings]),
		Event:        store.NewNatsEventRepository(buckets[store.KVStoreNameEvents]),
		Share:        store.NewNatsShareRepository(buckets[store.KVStoreNameShares]),
		User:         store.NewNatsUserRepository(buckets[store.KVStoreNameUsers]),
		Notification: store.NewNatsNotificationRepository(buckets[store.KVStoreNameNotifications]),
		Transcript:   store.NewNatsTranscriptRepository(buckets[store.KVStoreNameTranscripts]),
	}, nil
}

// natsMessage adapts *nats.Msg to the domain.Message interface.
type natsMessage struct {
	msg *nats.Msg
}

func (m *natsMessage) Subject() string {
	return m.msg.Subject
}

func (m *natsMessage) Data() []byte {
	return m.msg.Data
}

func (m *natsMessage) Respond(data []byte) error {
	return m.msg.Respond(data)
}

func (m *natsMessage) HasReply() bool {
	return m.msg.Reply != ""
}

// createNatsSubscriptions subscribes the job handler to the service's queue
// subjects. All instances join the same queue group so each job is delivered
// once.
func createNatsSubscriptions(ctx context.Context, handler domain.MessageHandler, natsConn *nats.Conn) error {
	subjects := []string{
		models.InviteParticipantsSubject,
		models.ShareReconcileSubject,
		models.TranscribeRecordingSubject,
	}

	for _, subject := range subjects {
		if _, err := natsConn.QueueSubscribe(subject, models.MeetQueue, func(msg *nats.Msg) {
			handler.HandleMessage(ctx, &natsMessage{msg: msg})
		}); err != nil {
			return fmt.Errorf("failed to subscribe to %s: %w", subject, err)
		}
		slog.InfoContext(ctx, "subscribed to NATS subject", "subject", subject, "queue", models.MeetQueue)
	}

	return nil
}

// setupEmailService picks the SMTP implementation when a mail host is
// configured and the no-op implementation otherwise.
func setupEmailService(env environment) (domain.EmailService, error) {
	if env.SMTP.Host == "" {
		slog.Info("SMTP_HOST not set, email delivery disabled")
		return email.NewNoOpService(), nil
	}

	return email.NewSMTPService(email.SMTPConfig{
		Host:     env.SMTP.Host,
		Port:     env.SMTP.Port,
		From:     env.SMTP.From,
		Username: env.SMTP.Username,
		Password: env.SMTP.Password,
	})
}

// setupSpeechToText builds the speech engine client used by the
// transcription job.
func setupSpeechToText(env environment) domain.SpeechToText {
	return speech.NewClient(speech.Config{
		BaseURL:      env.Speech.BaseURL,
		TokenURL:     env.Speech.TokenURL,
		ClientID:     env.Speech.ClientID,
		ClientSecret: env.Speech.ClientSecret,
	})
}
