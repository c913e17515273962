package gateway

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"

	"github.com/braindrive/bdkeys/api"
)

// Settings definition this client manages. The definition and instance
// name are fixed by the backend plugin that provisions them.
const (
	DefinitionID = "openai_api_keys_settings"
	InstanceName = "OpenAI API Keys"
	ScopeUser    = "user"
)

// KeyStatus is the stored credential summary as reported by the settings
// service. The masked key is computed server-side and safe to display.
type KeyStatus struct {
	SettingID string
	HasKey    bool
	KeyValid  bool
	MaskedKey string
	UpdatedAt string
}

// FetchKeyStatus queries the settings service for the user's credential
// instance. A missing instance is not an error: the result is nil, nil.
func (c *Client) FetchKeyStatus(ctx context.Context, userID string) (*KeyStatus, error) {
	q := url.Values{}
	q.Set("definition_id", DefinitionID)
	q.Set("scope", ScopeUser)
	q.Set("user_id", userID)

	body, err := c.request(ctx, http.MethodGet, instancesPath+"?"+q.Encode(), nil)
	if err != nil {
		return nil, err
	}

	inst, err := normalizeInstance(body)
	if err != nil {
		return nil, fmt.Errorf("parsing settings response: %w", err)
	}
	if inst == nil {
		return nil, nil
	}

	payload, err := decodeValue(inst.Value)
	if err != nil {
		return nil, fmt.Errorf("parsing instance value: %w", err)
	}

	return &KeyStatus{
		SettingID: inst.ID,
		HasKey:    payload.HasKey,
		KeyValid:  payload.KeyValid,
		MaskedKey: payload.APIKey,
		UpdatedAt: inst.UpdatedAt,
	}, nil
}

// SaveKey writes the credential value for a user. A known settingID makes
// the write an update-in-place; an empty settingID creates the instance.
// Writing an empty apiKey blanks the stored credential without deleting
// the record. Returns the instance id assigned by the settings service.
func (c *Client) SaveKey(ctx context.Context, userID, settingID, apiKey string) (string, error) {
	value, err := json.Marshal(api.KeyPayload{APIKey: apiKey})
	if err != nil {
		return "", err
	}

	req := api.SaveInstanceRequest{
		ID:           settingID,
		DefinitionID: DefinitionID,
		Name:         InstanceName,
		Value:        string(value),
		Scope:        ScopeUser,
		UserID:       userID,
	}

	body, err := c.request(ctx, http.MethodPost, instancesPath, req)
	if err != nil {
		return "", err
	}

	var inst api.SettingInstance
	if err := json.Unmarshal(body, &inst); err != nil {
		return "", fmt.Errorf("parsing save response: %w", err)
	}
	if inst.ID != "" {
		return inst.ID, nil
	}
	return settingID, nil
}

// normalizeInstance reduces the settings service's inconsistent response
// shapes — bare array, {"data": ...} envelope, or bare object — to at most
// one instance. The first element wins when the result is a collection.
// A known smell: the real contract allows all three shapes, so all three
// stay supported here.
func normalizeInstance(body []byte) (*api.SettingInstance, error) {
	var raw json.RawMessage
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil, err
	}

	// Unwrap a {"data": ...} envelope first.
	var envelope struct {
		Data json.RawMessage `json:"data"`
	}
	if err := json.Unmarshal(raw, &envelope); err == nil && len(envelope.Data) > 0 {
		raw = envelope.Data
	}

	var list []api.SettingInstance
	if err := json.Unmarshal(raw, &list); err == nil {
		if len(list) == 0 {
			return nil, nil
		}
		return &list[0], nil
	}

	var inst api.SettingInstance
	if err := json.Unmarshal(raw, &inst); err != nil {
		return nil, err
	}
	if inst.ID == "" && len(inst.Value) == 0 {
		return nil, nil
	}
	return &inst, nil
}

// decodeValue parses an instance value payload, which arrives either as a
// JSON object or as a JSON-encoded string containing one.
func decodeValue(raw json.RawMessage) (api.KeyPayload, error) {
	var payload api.KeyPayload
	if len(raw) == 0 {
		return payload, nil
	}

	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		if s == "" {
			return payload, nil
		}
		raw = json.RawMessage(s)
	}

	if err := json.Unmarshal(raw, &payload); err != nil {
		return payload, err
	}
	return payload, nil
}
