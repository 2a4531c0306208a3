package dto

import "time"

// ConnectRequest links a platform account, either from an OAuth handshake the
// frontend completed or from manual token entry.
type ConnectRequest struct {
	Platform         string `json:"platform" binding:"required"`
	AccessToken      string `json:"access_token" binding:"required"`
	RefreshToken     string `json:"refresh_token"`
	ExpiresInSeconds int64  `json:"expires_in_seconds"`
}

// CredentialStatus is the user-facing view of a stored credential. Token
// material never leaves the server.
type CredentialStatus struct {
	Platform        string     `json:"platform"`
	Connected       bool       `json:"connected"`
	IsValid         bool       `json:"is_valid"`
	Username        *string    `json:"username,omitempty"`
	ExpiresAt       *time.Time `json:"expires_at,omitempty"`
	LastValidatedAt *time.Time `json:"last_validated_at,omitempty"`
	LastError       *string    `json:"last_error,omitempty"`
}
