// Copyright The DocuFlow Authors.
// SPDX-License-Identifier: MIT

package models

import "time"

// User is the directory record consulted by the token issuer.
type User struct {
	// Identity is the user's email address, the primary key of the
	// directory bucket.
	Identity  string `json:"identity"`
	FullName  string `json:"full_name"`
	AvatarURL string `json:"avatar_url,omitempty"`
}

// Notification is an in-app notification record written by the invitation
// dispatcher.
type Notification struct {
	UID       string     `json:"uid"`
	ForUser   string     `json:"for_user"`
	Subject   string     `json:"subject"`
	Body      string     `json:"body"`
	DocType   string     `json:"document_type,omitempty"`
	DocName   string     `json:"document_name,omitempty"`
	CreatedAt *time.Time `json:"created_at,omitempty"`
}

// ShareGrant is a read grant on a record, keyed by (doctype, docname, user).
type ShareGrant struct {
	DocType   string     `json:"doctype"`
	DocName   string     `json:"docname"`
	User      string     `json:"user"`
	Read      bool       `json:"read"`
	GrantedAt *time.Time `json:"granted_at,omitempty"`
}
