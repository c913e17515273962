package controller

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/braindrive/bdkeys/api"
	"github.com/braindrive/bdkeys/internal/gateway"
	"github.com/braindrive/bdkeys/internal/theme"
)

// fakeGateway is a scriptable in-memory settings service.
type fakeGateway struct {
	user       api.User
	userErr    error
	status     *gateway.KeyStatus
	fetchErr   error
	saveErr    error
	savedKeys  []string
	savedIDs   []string
	assignID   string
	fetchCalls int
	saveCalls  int
	userCalls  int
	afterSave  func(key string) // lets tests simulate server-side masking
}

func (f *fakeGateway) CurrentUser(ctx context.Context) (api.User, error) {
	f.userCalls++
	return f.user, f.userErr
}

func (f *fakeGateway) FetchKeyStatus(ctx context.Context, userID string) (*gateway.KeyStatus, error) {
	f.fetchCalls++
	return f.status, f.fetchErr
}

func (f *fakeGateway) SaveKey(ctx context.Context, userID, settingID, key string) (string, error) {
	f.saveCalls++
	if f.saveErr != nil {
		return "", f.saveErr
	}
	f.savedKeys = append(f.savedKeys, key)
	f.savedIDs = append(f.savedIDs, settingID)
	if f.afterSave != nil {
		f.afterSave(key)
	}
	if f.assignID != "" {
		return f.assignID, nil
	}
	return settingID, nil
}

func newReady(t *testing.T, gw *fakeGateway) *Controller {
	t.Helper()
	c := New(gw, theme.NewNotifier(theme.Light), nil, WithClearAfter(10*time.Millisecond))
	t.Cleanup(c.Stop)
	c.Start(context.Background())
	require.Equal(t, PhaseReady, c.State().Phase)
	return c
}

func TestStart_NoInstanceIsReadyWithoutError(t *testing.T) {
	gw := &fakeGateway{user: api.User{ID: "user-1"}}
	c := newReady(t, gw)

	st := c.State()
	assert.Equal(t, "user-1", st.UserID)
	assert.False(t, st.Summary.HasAPIKey)
	assert.Empty(t, st.ErrorMsg)
	assert.False(t, st.Loading)
}

func TestStart_IdentityFailureSkipsSettingsFetch(t *testing.T) {
	gw := &fakeGateway{userErr: errors.New("connection refused")}
	c := New(gw, nil, nil)
	defer c.Stop()

	c.Start(context.Background())

	st := c.State()
	assert.Equal(t, PhaseErrored, st.Phase)
	assert.Equal(t, "Failed to get current user ID", st.ErrorMsg)
	assert.Zero(t, gw.fetchCalls, "settings fetch must not be attempted")
}

func TestStart_EmptyUserIDIsIdentityFailure(t *testing.T) {
	gw := &fakeGateway{user: api.User{}}
	c := New(gw, nil, nil)
	defer c.Stop()

	c.Start(context.Background())
	assert.Equal(t, "Failed to get current user ID", c.State().ErrorMsg)
	assert.Zero(t, gw.fetchCalls)
}

func TestStart_NilGateway(t *testing.T) {
	c := New(nil, nil, nil)
	defer c.Stop()

	c.Start(context.Background())

	st := c.State()
	assert.Equal(t, PhaseErrored, st.Phase)
	assert.Equal(t, "Settings service is not available", st.ErrorMsg)
}

func TestSave_ValidationFailureDoesNotContactGateway(t *testing.T) {
	gw := &fakeGateway{user: api.User{ID: "user-1"}}
	c := newReady(t, gw)
	fetchesBefore := gw.fetchCalls

	c.SetInput("not-a-key")
	c.Save(context.Background())

	st := c.State()
	assert.Equal(t, "missing prefix", st.ErrorMsg)
	assert.Equal(t, PhaseReady, st.Phase)
	assert.Zero(t, gw.saveCalls)
	assert.Equal(t, fetchesBefore, gw.fetchCalls)
}

func TestSave_RoundTrip(t *testing.T) {
	gw := &fakeGateway{user: api.User{ID: "user-1"}, assignID: "inst-1"}
	gw.afterSave = func(key string) {
		gw.status = &gateway.KeyStatus{
			SettingID: "inst-1",
			HasKey:    true,
			KeyValid:  true,
			MaskedKey: "sk-a...stu",
			UpdatedAt: "2026-08-28T12:00:00Z",
		}
	}
	c := newReady(t, gw)

	c.SetInput("sk-abcdefghijklmnopqrstu")
	c.Save(context.Background())

	st := c.State()
	assert.Equal(t, PhaseReady, st.Phase)
	assert.Empty(t, st.Input, "input buffer must be cleared after save")
	assert.True(t, st.Summary.HasAPIKey)
	assert.Equal(t, "inst-1", st.Summary.SettingID)
	assert.Equal(t, "sk-a...stu", st.Summary.MaskedKey)
	assert.Equal(t, "API key saved successfully", st.SuccessMsg)
	assert.Empty(t, st.ErrorMsg)
	require.Len(t, gw.savedKeys, 1)
	assert.Equal(t, "sk-abcdefghijklmnopqrstu", gw.savedKeys[0])
	assert.Empty(t, gw.savedIDs[0], "first save is a create")
}

func TestSave_SecondSaveIsUpdateInPlace(t *testing.T) {
	gw := &fakeGateway{
		user:     api.User{ID: "user-1"},
		status:   &gateway.KeyStatus{SettingID: "inst-1", HasKey: true},
		assignID: "inst-1",
	}
	c := newReady(t, gw)

	c.SetInput("sk-abcdefghijklmnopqrstu")
	c.Save(context.Background())

	require.Len(t, gw.savedIDs, 1)
	assert.Equal(t, "inst-1", gw.savedIDs[0], "known setting id must ride along")
}

func TestSave_FailureSurfacesDetailAndKeepsSummary(t *testing.T) {
	gw := &fakeGateway{
		user:    api.User{ID: "user-1"},
		status:  &gateway.KeyStatus{SettingID: "inst-1", HasKey: true, MaskedKey: "sk-a...old"},
		saveErr: &gateway.APIError{Status: 429, Detail: "rate limited"},
	}
	c := newReady(t, gw)

	c.SetInput("sk-abcdefghijklmnopqrstu")
	c.Save(context.Background())

	st := c.State()
	assert.Equal(t, PhaseReady, st.Phase)
	assert.False(t, st.Loading)
	assert.Equal(t, "rate limited", st.ErrorMsg)
	assert.Equal(t, "sk-a...old", st.Summary.MaskedKey, "previous summary untouched")
	assert.True(t, st.Summary.HasAPIKey)
}

func TestSuccessMessageAutoClears(t *testing.T) {
	gw := &fakeGateway{user: api.User{ID: "user-1"}, assignID: "inst-1"}
	c := newReady(t, gw)

	c.SetInput("sk-abcdefghijklmnopqrstu")
	c.Save(context.Background())
	require.NotEmpty(t, c.State().SuccessMsg)

	assert.Eventually(t, func() bool {
		return c.State().SuccessMsg == ""
	}, time.Second, 5*time.Millisecond)
}

func TestStaleTimerDoesNotClearNewerMessage(t *testing.T) {
	gw := &fakeGateway{user: api.User{ID: "user-1"}, assignID: "inst-1"}
	c := New(gw, nil, nil, WithClearAfter(30*time.Millisecond))
	defer c.Stop()
	c.Start(context.Background())

	c.SetInput("sk-abcdefghijklmnopqrstu")
	c.Save(context.Background())

	// Second save within the first timer's window arms a second message.
	time.Sleep(10 * time.Millisecond)
	c.SetInput("sk-vwxyzabcdefghijklmnop")
	c.Save(context.Background())

	// When the first timer fires, the newer message must survive.
	time.Sleep(25 * time.Millisecond)
	assert.Equal(t, "API key saved successfully", c.State().SuccessMsg)
}

func TestRemoval_Flow(t *testing.T) {
	gw := &fakeGateway{
		user:   api.User{ID: "user-1"},
		status: &gateway.KeyStatus{SettingID: "inst-1", HasKey: true, KeyValid: true, MaskedKey: "sk-a...xyz", UpdatedAt: "2026-08-27T09:00:00Z"},
	}
	c := newReady(t, gw)

	c.RequestRemoval()
	assert.Equal(t, PhaseConfirmingRemoval, c.State().Phase)
	assert.Zero(t, gw.saveCalls, "no gateway call before confirmation")

	c.ConfirmRemoval(context.Background())

	st := c.State()
	assert.Equal(t, PhaseReady, st.Phase)
	assert.False(t, st.ConfirmingRemoval)
	assert.False(t, st.Removing)
	assert.False(t, st.Summary.HasAPIKey)
	assert.False(t, st.Summary.KeyValid)
	assert.Empty(t, st.Summary.MaskedKey)
	assert.Empty(t, st.Summary.LastUpdated)
	assert.Equal(t, "inst-1", st.Summary.SettingID, "record persists with blanked value")
	assert.Equal(t, "API key removed", st.SuccessMsg)
	require.Len(t, gw.savedKeys, 1)
	assert.Empty(t, gw.savedKeys[0], "removal writes an empty credential")
}

func TestRemoval_FailureDismissesDialog(t *testing.T) {
	gw := &fakeGateway{
		user:    api.User{ID: "user-1"},
		status:  &gateway.KeyStatus{SettingID: "inst-1", HasKey: true, MaskedKey: "sk-a...xyz"},
		saveErr: errors.New("boom"),
	}
	c := newReady(t, gw)

	c.RequestRemoval()
	c.ConfirmRemoval(context.Background())

	st := c.State()
	assert.Equal(t, PhaseReady, st.Phase)
	assert.False(t, st.ConfirmingRemoval, "dialog dismissed regardless of outcome")
	assert.Equal(t, "boom", st.ErrorMsg)
	assert.True(t, st.Summary.HasAPIKey, "summary untouched on failure")
}

func TestCancelRemoval_IsNoOpOutsideConfirmation(t *testing.T) {
	gw := &fakeGateway{user: api.User{ID: "user-1"}}
	c := newReady(t, gw)

	before := c.State()
	c.CancelRemoval()
	assert.Equal(t, before.Phase, c.State().Phase)
}

func TestRequestRemoval_RequiresStoredKey(t *testing.T) {
	gw := &fakeGateway{user: api.User{ID: "user-1"}}
	c := newReady(t, gw)

	c.RequestRemoval()
	assert.Equal(t, PhaseReady, c.State().Phase)
}

func TestToggleVisibility(t *testing.T) {
	gw := &fakeGateway{user: api.User{ID: "user-1"}}
	c := newReady(t, gw)

	assert.False(t, c.State().ShowKey)
	c.ToggleVisibility()
	assert.True(t, c.State().ShowKey)
	c.ToggleVisibility()
	assert.False(t, c.State().ShowKey)
}

func TestThemeSubscription(t *testing.T) {
	gw := &fakeGateway{user: api.User{ID: "user-1"}}
	themes := theme.NewNotifier(theme.Light)
	c := New(gw, themes, nil)
	c.Start(context.Background())

	assert.Equal(t, theme.Light, c.State().Theme)
	themes.Set(theme.Dark)
	assert.Equal(t, theme.Dark, c.State().Theme)

	// After Stop, theme changes no longer reach the controller.
	c.Stop()
	themes.Set(theme.Light)
	assert.Equal(t, theme.Dark, c.State().Theme)
}

func TestStop_GuardsLateCompletions(t *testing.T) {
	gw := &fakeGateway{user: api.User{ID: "user-1"}}
	c := newReady(t, gw)

	c.Stop()
	c.SetInput("sk-abcdefghijklmnopqrstu")
	c.Save(context.Background())

	st := c.State()
	assert.Empty(t, st.Input, "no mutation after teardown")
	assert.Zero(t, gw.saveCalls)
}

func TestFetchFailureRestoresReady(t *testing.T) {
	gw := &fakeGateway{
		user:     api.User{ID: "user-1"},
		fetchErr: &gateway.APIError{Status: 500, Detail: "backend down"},
	}
	c := New(gw, nil, nil)
	defer c.Stop()

	c.Start(context.Background())

	st := c.State()
	assert.Equal(t, PhaseReady, st.Phase)
	assert.False(t, st.Loading)
	assert.Equal(t, "backend down", st.ErrorMsg)
}

func TestUpdatesChannelLatestWins(t *testing.T) {
	gw := &fakeGateway{user: api.User{ID: "user-1"}}
	c := newReady(t, gw)

	c.SetInput("a")
	c.SetInput("ab")
	c.SetInput("abc")

	select {
	case st := <-c.Updates():
		assert.Equal(t, "abc", st.Input)
	default:
		t.Fatal("expected a pending snapshot")
	}
}
