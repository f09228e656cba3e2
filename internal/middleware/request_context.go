// Copyright The DocuFlow Authors.
// SPDX-License-Identifier: MIT

// Package middleware holds the gin middleware shared by all HTTP routes.
package middleware

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/docuflow/meet-service/pkg/constants"
)

// RequestID attaches a request id to the request context and echoes it on
// the response. An inbound X-REQUEST-ID is trusted; otherwise one is
// generated.
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := c.GetHeader(constants.RequestIDHeader)
		if requestID == "" {
			requestID = uuid.New().String()
		}

		c.Set(string(constants.RequestIDContextID), requestID)
		c.Header(constants.RequestIDHeader, requestID)
		c.Next()
	}
}

// Principal extracts the acting user from the x-on-behalf-of header set by
// the fronting records application. An absent header means guest; routes
// decide for themselves whether guests are allowed.
func Principal() gin.HandlerFunc {
	return func(c *gin.Context) {
		if principal := c.GetHeader(constants.XOnBehalfOfHeader); principal != "" {
			c.Set(string(constants.PrincipalContextID), principal)
		}
		c.Next()
	}
}

// GetPrincipal returns the acting user for the request, or empty for a
// guest.
func GetPrincipal(c *gin.Context) string {
	return c.GetString(string(constants.PrincipalContextID))
}

// GetRequestID returns the request id attached by RequestID.
func GetRequestID(c *gin.Context) string {
	return c.GetString(string(constants.RequestIDContextID))
}
