// Package controller sequences the credential lifecycle: identity lookup,
// settings fetch, save, and removal. It owns all mutable state and
// publishes snapshots to the presentation layer through a latest-wins
// updates channel.
package controller

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/braindrive/bdkeys/api"
	"github.com/braindrive/bdkeys/internal/apikey"
	"github.com/braindrive/bdkeys/internal/gateway"
	"github.com/braindrive/bdkeys/internal/theme"
)

// User-facing messages produced by lifecycle transitions.
const (
	msgIdentityFailed     = "Failed to get current user ID"
	msgGatewayUnavailable = "Settings service is not available"
	msgKeySaved           = "API key saved successfully"
	msgKeyRemoved         = "API key removed"
)

// DefaultClearAfter is how long a success message stays visible.
const DefaultClearAfter = 3 * time.Second

// Gateway is what the controller needs from the settings service client.
type Gateway interface {
	CurrentUser(ctx context.Context) (api.User, error)
	FetchKeyStatus(ctx context.Context, userID string) (*gateway.KeyStatus, error)
	SaveKey(ctx context.Context, userID, settingID, apiKey string) (string, error)
}

// Controller runs the credential lifecycle state machine. All methods are
// safe for concurrent use, though the intended model is one caller at a
// time: mid-flight operations ignore further user actions.
type Controller struct {
	mu          sync.Mutex
	st          State
	api         Gateway
	themes      theme.Source
	log         *slog.Logger
	updates     chan State
	unsubscribe func()
	closed      bool

	// msgGen tags each success message so a stale auto-clear timer cannot
	// wipe a newer message.
	msgGen     int
	clearAfter time.Duration
}

// Option configures a Controller.
type Option func(*Controller)

// WithClearAfter overrides the success-message auto-clear delay.
func WithClearAfter(d time.Duration) Option {
	return func(c *Controller) { c.clearAfter = d }
}

// New creates a Controller. A nil gateway is tolerated until Start, which
// then reports the settings service as unavailable.
func New(gw Gateway, themes theme.Source, log *slog.Logger, opts ...Option) *Controller {
	if log == nil {
		log = slog.Default()
	}
	c := &Controller{
		api:        gw,
		themes:     themes,
		log:        log,
		updates:    make(chan State, 1),
		clearAfter: DefaultClearAfter,
		st:         State{Phase: PhaseUninitialized},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Updates returns the snapshot channel. The channel holds at most one
// pending snapshot; newer state replaces unread state.
func (c *Controller) Updates() <-chan State {
	return c.updates
}

// State returns the current snapshot.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.st
}

// Start resolves the current user's identity and, on success, fetches the
// stored credential status. An identity failure is fatal to the component:
// the controller parks in the errored phase and never contacts the
// settings endpoint.
func (c *Controller) Start(ctx context.Context) {
	c.mu.Lock()
	if c.closed || c.st.Phase != PhaseUninitialized {
		c.mu.Unlock()
		return
	}
	if c.themes != nil {
		c.st.Theme = c.themes.Current()
		c.unsubscribe = c.themes.Subscribe(c.onThemeChange)
	}
	if c.api == nil {
		c.st.Phase = PhaseErrored
		c.st.ErrorMsg = msgGatewayUnavailable
		c.notifyLocked()
		c.mu.Unlock()
		return
	}
	c.st.Phase = PhaseResolvingIdentity
	c.st.Loading = true
	c.notifyLocked()
	c.mu.Unlock()

	user, err := c.api.CurrentUser(ctx)

	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	if err != nil || user.ID == "" {
		c.log.Warn("identity lookup failed", "error", err)
		c.st.Phase = PhaseErrored
		c.st.Loading = false
		c.st.ErrorMsg = msgIdentityFailed
		c.notifyLocked()
		c.mu.Unlock()
		return
	}
	c.st.UserID = user.ID
	c.mu.Unlock()

	c.fetch(ctx)
}

// Refresh re-queries the stored credential status. No-op before identity
// has been resolved or while another operation is mid-flight.
func (c *Controller) Refresh(ctx context.Context) {
	c.mu.Lock()
	if c.closed || c.st.UserID == "" || c.st.Phase != PhaseReady {
		c.mu.Unlock()
		return
	}
	c.mu.Unlock()
	c.fetch(ctx)
}

// fetch loads the credential summary from the settings service. Absence
// of an instance is not an error; a request failure restores the ready
// phase with the previous summary untouched.
func (c *Controller) fetch(ctx context.Context) {
	c.mu.Lock()
	if c.closed || c.st.UserID == "" {
		c.mu.Unlock()
		return
	}
	c.st.Phase = PhaseFetchingStatus
	c.st.Loading = true
	userID := c.st.UserID
	c.notifyLocked()
	c.mu.Unlock()

	status, err := c.api.FetchKeyStatus(ctx, userID)

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	c.st.Phase = PhaseReady
	c.st.Loading = false
	if err != nil {
		c.log.Warn("key status fetch failed", "user_id", userID, "error", err)
		c.st.ErrorMsg = gateway.HumanMessage(err)
		c.st.SuccessMsg = ""
		c.notifyLocked()
		return
	}
	if status == nil {
		c.st.Summary = KeySummary{}
	} else {
		c.st.Summary = KeySummary{
			HasAPIKey:   status.HasKey,
			KeyValid:    status.KeyValid,
			MaskedKey:   status.MaskedKey,
			LastUpdated: status.UpdatedAt,
			SettingID:   status.SettingID,
		}
	}
	c.notifyLocked()
}

// SetInput replaces the raw input buffer.
func (c *Controller) SetInput(s string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	c.st.Input = s
	c.notifyLocked()
}

// ToggleVisibility flips whether the input buffer renders as plain text.
// The stored masked summary is unaffected; that masking is server-side.
func (c *Controller) ToggleVisibility() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	c.st.ShowKey = !c.st.ShowKey
	c.notifyLocked()
}

// Save validates the input buffer and writes it to the settings service.
// A validation failure surfaces the reason without contacting the gateway.
// On success the buffer is cleared, the summary is refreshed, and a
// success message shows until the auto-clear delay elapses.
func (c *Controller) Save(ctx context.Context) {
	c.mu.Lock()
	if c.closed || c.st.Phase != PhaseReady {
		c.mu.Unlock()
		return
	}
	if err := apikey.Validate(c.st.Input); err != nil {
		c.st.ErrorMsg = err.Error()
		c.st.SuccessMsg = ""
		c.notifyLocked()
		c.mu.Unlock()
		return
	}
	key := apikey.Normalize(c.st.Input)
	c.st.Phase = PhaseSaving
	c.st.Loading = true
	c.st.ErrorMsg = ""
	c.st.SuccessMsg = ""
	userID, settingID := c.st.UserID, c.st.Summary.SettingID
	c.notifyLocked()
	c.mu.Unlock()

	id, err := c.api.SaveKey(ctx, userID, settingID, key)

	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	if err != nil {
		c.log.Warn("key save failed", "user_id", userID, "error", err)
		c.st.Phase = PhaseReady
		c.st.Loading = false
		c.st.ErrorMsg = gateway.HumanMessage(err)
		c.notifyLocked()
		c.mu.Unlock()
		return
	}
	c.st.Input = ""
	c.st.Summary.SettingID = id
	c.setSuccessLocked(msgKeySaved)
	c.mu.Unlock()

	c.fetch(ctx)
}

// RequestRemoval opens the removal confirmation. Only meaningful when a
// key is stored and nothing is mid-flight.
func (c *Controller) RequestRemoval() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed || c.st.Phase != PhaseReady || !c.st.Summary.HasAPIKey {
		return
	}
	c.st.Phase = PhaseConfirmingRemoval
	c.st.ConfirmingRemoval = true
	c.notifyLocked()
}

// CancelRemoval dismisses the confirmation. Calling it in any other phase
// is a no-op.
func (c *Controller) CancelRemoval() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed || c.st.Phase != PhaseConfirmingRemoval {
		return
	}
	c.st.Phase = PhaseReady
	c.st.ConfirmingRemoval = false
	c.notifyLocked()
}

// ConfirmRemoval blanks the stored credential. The backing record
// persists with an empty value, so the setting id survives for future
// update-in-place writes. The confirmation dialog is dismissed whether or
// not the write succeeds.
func (c *Controller) ConfirmRemoval(ctx context.Context) {
	c.mu.Lock()
	if c.closed || c.st.Phase != PhaseConfirmingRemoval {
		c.mu.Unlock()
		return
	}
	c.st.ConfirmingRemoval = false
	c.st.Phase = PhaseRemoving
	c.st.Removing = true
	c.st.ErrorMsg = ""
	c.st.SuccessMsg = ""
	userID, settingID := c.st.UserID, c.st.Summary.SettingID
	c.notifyLocked()
	c.mu.Unlock()

	_, err := c.api.SaveKey(ctx, userID, settingID, "")

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	c.st.Phase = PhaseReady
	c.st.Removing = false
	if err != nil {
		c.log.Warn("key removal failed", "user_id", userID, "error", err)
		c.st.ErrorMsg = gateway.HumanMessage(err)
		c.notifyLocked()
		return
	}
	c.st.Summary.HasAPIKey = false
	c.st.Summary.KeyValid = false
	c.st.Summary.MaskedKey = ""
	c.st.Summary.LastUpdated = ""
	c.setSuccessLocked(msgKeyRemoved)
}

// Stop tears the controller down: the theme subscription is released and
// any in-flight completion or pending timer becomes a no-op.
func (c *Controller) Stop() {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.closed = true
	unsub := c.unsubscribe
	c.unsubscribe = nil
	c.mu.Unlock()

	if unsub != nil {
		unsub()
	}
}

func (c *Controller) onThemeChange(name string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	c.st.Theme = name
	c.notifyLocked()
}

// setSuccessLocked installs a success message and schedules its auto-clear.
// The generation counter ensures a stale timer never wipes a message set
// after it was armed.
func (c *Controller) setSuccessLocked(msg string) {
	c.st.SuccessMsg = msg
	c.st.ErrorMsg = ""
	c.msgGen++
	gen := c.msgGen
	time.AfterFunc(c.clearAfter, func() {
		c.mu.Lock()
		defer c.mu.Unlock()
		if c.closed || gen != c.msgGen {
			return
		}
		c.st.SuccessMsg = ""
		c.notifyLocked()
	})
	c.notifyLocked()
}

// notifyLocked publishes a snapshot, replacing any unread one.
func (c *Controller) notifyLocked() {
	snap := c.st
	for {
		select {
		case c.updates <- snap:
			return
		default:
		}
		select {
		case <-c.updates:
		default:
		}
	}
}
