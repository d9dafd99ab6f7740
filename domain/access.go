package domain

// AccessOutcome names the terminal result of evaluating the viewing guards.
type AccessOutcome string

const (
	OutcomeGranted          AccessOutcome = "granted"
	OutcomeNotStarted       AccessOutcome = "not-started"
	OutcomeEnded            AccessOutcome = "ended"
	OutcomeUnauthorized     AccessOutcome = "unauthorized"
	OutcomeTierInsufficient AccessOutcome = "tier-insufficient"
	OutcomePaymentRequired  AccessOutcome = "payment-required"
	OutcomeTermsNotAccepted AccessOutcome = "terms-not-accepted"
	OutcomeAccessDenied     AccessOutcome = "access-denied"
	OutcomeError            AccessOutcome = "error"
)

// AccessDecision is the evaluated result for one request. Computed per
// request, never persisted.
type AccessDecision struct {
	HasAccess bool          `json:"has_access"`
	Reason    AccessOutcome `json:"reason,omitempty"`
	Viewer    Viewer        `json:"viewer"`
}

// EventAccess carries the per-event facts the core API owns: whether the
// viewer has settled payment for the event, accepted its terms, or has been
// explicitly barred.
type EventAccess struct {
	PaymentSettled bool `json:"payment_settled"`
	TermsAccepted  bool `json:"terms_accepted"`
	Denied         bool `json:"denied"`
}
