package canvas

// Reason explains why a message left the canvas unchanged
type Reason string

const (
	ReasonStaleTarget        Reason = "stale_target"
	ReasonNotMounted         Reason = "not_mounted"
	ReasonOutOfOrder         Reason = "out_of_order"
	ReasonConflictingSession Reason = "conflicting_session"
	ReasonConsumed           Reason = "consumed"
	ReasonNotSelected        Reason = "not_selected"
	ReasonEmptySelection     Reason = "empty_selection"
	ReasonNotOwner           Reason = "not_owner"
	ReasonNoListener         Reason = "no_listener"
	ReasonSuppressed         Reason = "suppressed"
	ReasonInvalid            Reason = "invalid"
	ReasonClosed             Reason = "closed"
)

// Outcome is the result of dispatching one message
type Outcome struct {
	Applied bool   `json:"applied"`
	Reason  Reason `json:"reason,omitempty"`
	// Session is the sequence number of a drag session this message started
	Session uint64 `json:"session,omitempty"`
}

func applied() Outcome { return Outcome{Applied: true} }

func ignored(r Reason) Outcome { return Outcome{Reason: r} }

// Label is the metrics label for the outcome
func (o Outcome) Label() string {
	if o.Applied {
		return "applied"
	}
	return "ignored"
}
