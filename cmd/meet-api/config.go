// Copyright The DocuFlow Authors.
// SPDX-License-Identifier: MIT

package main

import (
	"flag"
	"log/slog"
	"net/url"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"

	"github.com/docuflow/meet-service/internal/infrastructure/tokens"
	"github.com/docuflow/meet-service/internal/logging"
)

// flags are the command line flags for the meet service.
type flags struct {
	Debug bool
	Port  string
	Bind  string
}

// environment are the environment variables for the meet service.
type environment struct {
	Port                 string
	NatsURL              string
	PublicURL            string
	ServiceIdentity      string
	IntegrationEnabled   bool
	TranscriptionEnabled bool
	Jitsi                jitsiConfig
	SMTP                 smtpConfig
	Speech               speechConfig
}

// jitsiConfig holds the conferencing deployment settings.
type jitsiConfig struct {
	AppID         string
	AppSecret     string
	Domain        string
	RoomScope     string
	WebhookSecret string
}

// smtpConfig holds the outbound mail settings. An empty Host disables email
// delivery.
type smtpConfig struct {
	Host     string
	Port     int
	From     string
	Username string
	Password string
}

// speechConfig holds the speech-to-text engine settings. An empty BaseURL is
// fine when transcription is disabled.
type speechConfig struct {
	BaseURL      string
	TokenURL     string
	ClientID     string
	ClientSecret string
}

// parseFlags parses command line flags for the meet service.
func parseFlags(defaultPort string) flags {
	var debug = flag.Bool("d", false, "enable debug logging")
	var port = flag.String("p", defaultPort, "listen port")
	var bind = flag.String("bind", "*", "interface to bind on")

	flag.Usage = func() {
		flag.PrintDefaults()
		os.Exit(2)
	}
	flag.Parse()

	// Based on the debug flag, set the log level environment variable used by [logging.InitStructureLogConfig]
	if *debug {
		err := os.Setenv("LOG_LEVEL", "debug")
		if err != nil {
			slog.With(logging.ErrKey, err).Error("error setting log level")
			os.Exit(1)
		}
	}

	return flags{
		Debug: *debug,
		Port:  *port,
		Bind:  *bind,
	}
}

// parseEnv parses environment variables for the meet service. A .env file in
// the working directory is loaded first so local runs need no exported
// variables.
func parseEnv() environment {
	_ = godotenv.Load()

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	natsURL := os.Getenv("NATS_URL")
	if natsURL == "" {
		natsURL = "nats://localhost:4222"
	}

	publicURL := strings.TrimSuffix(os.Getenv("MEET_PUBLIC_URL"), "/")
	if publicURL == "" {
		publicURL = "http://localhost:" + port
	} else if _, err := url.Parse(publicURL); err != nil {
		slog.With(logging.ErrKey, err, "url", publicURL).Error("invalid MEET_PUBLIC_URL provided")
		os.Exit(1)
	}

	serviceIdentity := os.Getenv("MEET_SERVICE_IDENTITY")
	if serviceIdentity == "" {
		serviceIdentity = "meet-service"
	}

	// Integration defaults on; transcription defaults off.
	integrationEnabled := os.Getenv("MEET_INTEGRATION_ENABLED") != "false"
	transcriptionEnabled := os.Getenv("MEET_TRANSCRIPTION_ENABLED") == "true"

	return environment{
		Port:                 port,
		NatsURL:              natsURL,
		PublicURL:            publicURL,
		ServiceIdentity:      serviceIdentity,
		IntegrationEnabled:   integrationEnabled,
		TranscriptionEnabled: transcriptionEnabled,
		Jitsi:                parseJitsiConfig(),
		SMTP:                 parseSMTPConfig(),
		Speech:               parseSpeechConfig(),
	}
}

// parseJitsiConfig parses the conferencing deployment configuration from
// environment variables.
func parseJitsiConfig() jitsiConfig {
	domain := os.Getenv("JITSI_DOMAIN")
	if domain == "" {
		domain = "meet.jit.si"
	}

	roomScope := os.Getenv("JITSI_TOKEN_ROOM_SCOPE")
	switch roomScope {
	case "", tokens.RoomScopeExact:
		roomScope = tokens.RoomScopeExact
	case tokens.RoomScopeWildcard:
	default:
		slog.With("room_scope", roomScope).Error("invalid JITSI_TOKEN_ROOM_SCOPE, expected 'exact' or 'wildcard'")
		os.Exit(1)
	}

	return jitsiConfig{
		AppID:         os.Getenv("JITSI_APP_ID"),
		AppSecret:     os.Getenv("JITSI_APP_SECRET"),
		Domain:        domain,
		RoomScope:     roomScope,
		WebhookSecret: os.Getenv("JITSI_WEBHOOK_SECRET"),
	}
}

// parseSMTPConfig parses the outbound mail configuration from environment
// variables.
func parseSMTPConfig() smtpConfig {
	port := 587
	if raw := os.Getenv("SMTP_PORT"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil {
			slog.With(logging.ErrKey, err, "port", raw).Error("invalid SMTP_PORT provided")
			os.Exit(1)
		}
		port = parsed
	}

	return smtpConfig{
		Host:     os.Getenv("SMTP_HOST"),
		Port:     port,
		From:     os.Getenv("SMTP_FROM"),
		Username: os.Getenv("SMTP_USERNAME"),
		Password: os.Getenv("SMTP_PASSWORD"),
	}
}

// parseSpeechConfig parses the speech-to-text engine configuration from
// environment variables.
func parseSpeechConfig() speechConfig {
	return speechConfig{
		BaseURL:      strings.TrimSuffix(os.Getenv("SPEECH_ENGINE_URL"), "/"),
		TokenURL:     os.Getenv("SPEECH_ENGINE_TOKEN_URL"),
		ClientID:     os.Getenv("SPEECH_ENGINE_CLIENT_ID"),
		ClientSecret: os.Getenv("SPEECH_ENGINE_CLIENT_SECRET"),
	}
}
