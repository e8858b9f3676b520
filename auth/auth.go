// Copyright (c) 2025 Hosteldesk.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package auth

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"net/http"
	"strings"

	"github.com/hosteldesk/messvote/models"
)

var (
	ErrMissingIdentity = errors.New("missing identity headers")
	ErrInvalidIdentity = errors.New("invalid identity key")
)

// Identity header names set by the identity provider in front of the API
const (
	HeaderUserID      = "X-User-Id"
	HeaderRole        = "X-User-Role"
	HeaderHostel      = "X-Hostel"
	HeaderIdentityKey = "X-Identity-Key"
)

// Identity is the caller as resolved by the external identity provider.
type Identity struct {
	UserID string
	Role   string
	Hostel string
}

// SignIdentity computes the key the identity provider attaches as
// X-Identity-Key. Deterministic, so it can be verified without storing
// anything on this side.
func SignIdentity(userID, role, hostel, salt string) string {
	h := hmac.New(sha256.New, []byte(salt))
	h.Write([]byte(userID + "|" + role + "|" + hostel))
	sum := h.Sum(nil)
	// URL-safe base64 without padding for cleaner keys
	return strings.TrimRight(base64.URLEncoding.EncodeToString(sum), "=")
}

// FromRequest resolves and verifies the caller's identity from the
// signed headers on r.
func FromRequest(r *http.Request, salt string) (Identity, error) {
	id := Identity{
		UserID: r.Header.Get(HeaderUserID),
		Role:   r.Header.Get(HeaderRole),
		Hostel: r.Header.Get(HeaderHostel),
	}
	if id.UserID == "" || id.Role == "" {
		return Identity{}, ErrMissingIdentity
	}

	expected := SignIdentity(id.UserID, id.Role, id.Hostel, salt)
	key := r.Header.Get(HeaderIdentityKey)
	if !hmac.Equal([]byte(key), []byte(expected)) {
		return Identity{}, ErrInvalidIdentity
	}

	return id, nil
}

// IsStaff reports whether the caller may manage weeks, options, and
// finalization.
func (id Identity) IsStaff() bool {
	return id.Role == models.RoleCaretaker || id.Role == models.RoleWarden
}

// IsStudent reports whether the caller may vote.
func (id Identity) IsStudent() bool {
	return id.Role == models.RoleStudent
}
