package controller

// Phase is the controller's position in the credential lifecycle.
type Phase int

const (
	PhaseUninitialized Phase = iota
	PhaseResolvingIdentity
	PhaseFetchingStatus
	PhaseReady
	PhaseSaving
	PhaseRemoving
	PhaseConfirmingRemoval
	PhaseErrored
)

func (p Phase) String() string {
	switch p {
	case PhaseUninitialized:
		return "uninitialized"
	case PhaseResolvingIdentity:
		return "resolving-identity"
	case PhaseFetchingStatus:
		return "fetching-status"
	case PhaseReady:
		return "ready"
	case PhaseSaving:
		return "saving"
	case PhaseRemoving:
		return "removing"
	case PhaseConfirmingRemoval:
		return "confirming-removal"
	case PhaseErrored:
		return "errored"
	default:
		return "unknown"
	}
}

// KeySummary is the last-known stored credential state, as reported by the
// settings service. SettingID is only populated after the first successful
// read or write of the instance; while empty, the next save creates the
// instance rather than updating it.
type KeySummary struct {
	HasAPIKey   bool
	KeyValid    bool
	MaskedKey   string
	LastUpdated string
	SettingID   string
}

// State is an immutable snapshot of the controller. Error and success
// messages are mutually exclusive, last write wins.
type State struct {
	Phase             Phase
	Input             string
	Loading           bool
	Removing          bool
	ConfirmingRemoval bool
	ShowKey           bool
	ErrorMsg          string
	SuccessMsg        string
	Theme             string
	UserID            string
	Summary           KeySummary
}
