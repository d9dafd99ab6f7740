// Package access decides whether a viewer may join a live session or watch
// a recording. The precedence rules are an explicit contract: guards run in
// a fixed order and the first failing guard names the outcome, so an
// unauthenticated viewer is always told to log in before ever hearing about
// tiers or payment.
package access

import (
	"time"

	"github.com/budokan/backend/domain"
)

// Input is everything one evaluation needs. Event carries the facts the
// core API owns; EventErr is set when that lookup failed, in which case the
// evaluation fails closed.
type Input struct {
	Session  *domain.TrainingSession
	Viewer   domain.Viewer
	Event    *domain.EventAccess
	EventErr error
	Now      time.Time
}

// A guard either passes (OutcomeGranted) or returns the terminal outcome.
type guard struct {
	name  string
	check func(Input) domain.AccessOutcome
}

var windowGuards = []guard{
	{name: "window-start", check: func(in Input) domain.AccessOutcome {
		if in.Session.NotStarted(in.Now) {
			return domain.OutcomeNotStarted
		}
		return domain.OutcomeGranted
	}},
	{name: "window-end", check: func(in Input) domain.AccessOutcome {
		if in.Session.Ended(in.Now) {
			return domain.OutcomeEnded
		}
		return domain.OutcomeGranted
	}},
}

var viewerGuards = []guard{
	{name: "authenticated", check: func(in Input) domain.AccessOutcome {
		if !in.Viewer.IsAuthenticated() {
			return domain.OutcomeUnauthorized
		}
		return domain.OutcomeGranted
	}},
	{name: "tier", check: func(in Input) domain.AccessOutcome {
		if !domain.TierAtLeast(in.Viewer.Tier, in.Session.RequiredTier) {
			return domain.OutcomeTierInsufficient
		}
		return domain.OutcomeGranted
	}},
	{name: "event-facts", check: func(in Input) domain.AccessOutcome {
		// Never grant on an ambiguous failure.
		if in.EventErr != nil || in.Event == nil {
			return domain.OutcomeError
		}
		return domain.OutcomeGranted
	}},
	{name: "payment", check: func(in Input) domain.AccessOutcome {
		if !in.Event.PaymentSettled {
			return domain.OutcomePaymentRequired
		}
		return domain.OutcomeGranted
	}},
	{name: "terms", check: func(in Input) domain.AccessOutcome {
		if !in.Event.TermsAccepted {
			return domain.OutcomeTermsNotAccepted
		}
		return domain.OutcomeGranted
	}},
	{name: "deny-list", check: func(in Input) domain.AccessOutcome {
		if in.Event.Denied {
			return domain.OutcomeAccessDenied
		}
		return domain.OutcomeGranted
	}},
}

// EvaluateLive runs the full guard chain: time window first, then viewer
// identity, tier, and the event facts.
func EvaluateLive(in Input) domain.AccessDecision {
	return evaluate(append(append([]guard{}, windowGuards...), viewerGuards...), in)
}

// EvaluateVOD skips the time-window guards: a recording is watched after
// the live window has closed.
func EvaluateVOD(in Input) domain.AccessDecision {
	return evaluate(viewerGuards, in)
}

func evaluate(guards []guard, in Input) domain.AccessDecision {
	if in.Session == nil {
		return domain.AccessDecision{Reason: domain.OutcomeError, Viewer: in.Viewer}
	}
	if in.Now.IsZero() {
		in.Now = time.Now()
	}
	for _, g := range guards {
		if outcome := g.check(in); outcome != domain.OutcomeGranted {
			return domain.AccessDecision{Reason: outcome, Viewer: in.Viewer}
		}
	}
	return domain.AccessDecision{HasAccess: true, Reason: domain.OutcomeGranted, Viewer: in.Viewer}
}
