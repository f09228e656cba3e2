// Copyright The DocuFlow Authors.
// SPDX-License-Identifier: MIT

// Package service implements the meet service's use cases on top of the
// domain transition rules and the repository interfaces.
package service

// Service is implemented by every service with external dependencies.
type Service interface {
	ServiceReady() bool
}

// ServiceConfig is the configuration shared by the services.
type ServiceConfig struct {
	// IntegrationEnabled gates room creation for the whole deployment.
	IntegrationEnabled bool
	// TranscriptionEnabled gates the transcription job.
	TranscriptionEnabled bool
	// ServiceIdentity is the principal background jobs run as.
	ServiceIdentity string
	// PublicURL is the externally reachable base URL of this service, used
	// to build join links.
	PublicURL string
	// ConferencingDomain is the Jitsi deployment rooms live on.
	ConferencingDomain string
}
