// Package api defines the wire types of the BrainDrive backend endpoints
// this client talks to: the authenticated-user endpoint and the generic
// settings-instances endpoint.
package api

import "encoding/json"

// User is the shape returned by GET /api/v1/auth/me. Only the id is
// required; everything else the backend sends is ignored.
type User struct {
	ID       string `json:"id"`
	Username string `json:"username,omitempty"`
	Email    string `json:"email,omitempty"`
}

// SettingInstance is a single stored settings record, scoped to one user
// and one definition. The value payload is opaque to the settings service;
// it may come back as a JSON object or as a JSON-encoded string.
type SettingInstance struct {
	ID           string          `json:"id,omitempty"`
	Name         string          `json:"name,omitempty"`
	DefinitionID string          `json:"definition_id,omitempty"`
	Scope        string          `json:"scope,omitempty"`
	UserID       string          `json:"user_id,omitempty"`
	Value        json.RawMessage `json:"value,omitempty"`
	UpdatedAt    string          `json:"updated_at,omitempty"`
}

// SaveInstanceRequest is the body of POST /settings/instances. Value is a
// JSON-encoded string (the backend stores it verbatim). Including ID makes
// the write an update-in-place; omitting it creates a new instance.
type SaveInstanceRequest struct {
	ID           string `json:"id,omitempty"`
	DefinitionID string `json:"definition_id"`
	Name         string `json:"name"`
	Value        string `json:"value"`
	Scope        string `json:"scope"`
	UserID       string `json:"user_id"`
}

// KeyPayload is the value blob stored inside the credential instance.
// The underscore fields are computed server-side on read; api_key is the
// raw key on write and a masked representation on read.
type KeyPayload struct {
	APIKey   string `json:"api_key"`
	HasKey   bool   `json:"_has_key,omitempty"`
	KeyValid bool   `json:"_key_valid,omitempty"`
}

// ErrorResponse is the backend's structured error envelope. FastAPI-style
// backends put the human-readable text in detail; some put it in message.
type ErrorResponse struct {
	Detail  json.RawMessage `json:"detail,omitempty"`
	Message string          `json:"message,omitempty"`
}
