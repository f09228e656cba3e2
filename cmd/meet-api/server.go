// Copyright The DocuFlow Authors.
// SPDX-License-Identifier: MIT

package main

import (
	"log/slog"
	"net/http"
	"os"
	"sync"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/docuflow/meet-service/internal/logging"
	"github.com/docuflow/meet-service/internal/middleware"
)

// setupHTTPServer configures and starts the HTTP server.
func setupHTTPServer(flags flags, api *MeetAPI, gracefulCloseWG *sync.WaitGroup) *http.Server {
	if !flags.Debug {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(
		gin.Recovery(),
		middleware.RequestID(),
		middleware.Principal(),
		middleware.RequestLogger(),
	)

	router.GET("/livez", api.Livez)
	router.GET("/readyz", api.Readyz)

	v1 := router.Group("/api/v1")
	{
		v1.POST("/rooms", api.CreateRoom)
		v1.GET("/rooms/:room/join", api.JoinRoom)
		v1.POST("/rooms/:room/start", api.StartRoom)
		v1.POST("/rooms/:room/end", api.EndRoom)
		v1.POST("/rooms/:room/rsvp", api.RSVP)

		v1.GET("/meetings/:uid", api.GetMeeting)
		v1.PUT("/meetings/:uid/participants", api.ReplaceParticipants)
		v1.GET("/meetings/:uid/transcript", api.GetTranscript)
	}

	router.POST("/webhooks/jitsi", api.Webhook)

	// Set up http listener in a goroutine using provided command line parameters.
	var addr string
	if flags.Bind == "*" {
		addr = ":" + flags.Port
	} else {
		addr = flags.Bind + ":" + flags.Port
	}
	httpServer := &http.Server{
		Addr:              addr,
		Handler:           router,
		ReadHeaderTimeout: 3 * time.Second,
	}
	gracefulCloseWG.Add(1)
	go func() {
		slog.With("addr", addr).Debug("starting http server, listening on port " + flags.Port)
		err := httpServer.ListenAndServe()
		if err != nil && err != http.ErrServerClosed {
			slog.With(logging.ErrKey, err).Error("http listener error")
			os.Exit(1)
		}
		// Because ErrServerClosed is *immediately* returned when Shutdown is
		// called, not when when Shutdown completes, this must not yet decrement
		// the wait group.
	}()

	return httpServer
}
