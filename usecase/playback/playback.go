// Package playback sequences the watch-page checks: fetch the session,
// evaluate access, resolve the stream, gather supporting data. Each check
// short-circuits into a redirect; only a fully passed chain renders.
package playback

import (
	"context"
	"fmt"
	"net/url"
	"time"

	"go.uber.org/zap"

	"github.com/budokan/backend/domain"
	"github.com/budokan/backend/usecase"
	"github.com/budokan/backend/usecase/access"
)

const (
	loginPath   = "/login"
	eventsPath  = "/events"
	upgradePath = "/membership/upgrade"
)

// ProgressReader is the slice of the progress use case the VOD page needs.
type ProgressReader interface {
	Get(ctx context.Context, sessionID, userID string) (domain.WatchProgress, error)
}

// ViewerCounter reports live presence for the realtime page.
type ViewerCounter interface {
	ViewerCount(ctx context.Context, sessionID string) (int, error)
}

type UseCase struct {
	sessions     usecase.SessionGateway
	accessChecks usecase.AccessGateway
	streams      usecase.StreamResolver
	progress     ProgressReader
	presence     ViewerCounter
	relatedLimit int
	logger       *zap.Logger
	now          func() time.Time
}

func New(
	sessions usecase.SessionGateway,
	accessChecks usecase.AccessGateway,
	streams usecase.StreamResolver,
	progress ProgressReader,
	presence ViewerCounter,
	relatedLimit int,
	logger *zap.Logger,
) *UseCase {
	if relatedLimit <= 0 {
		relatedLimit = 6
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &UseCase{
		sessions:     sessions,
		accessChecks: accessChecks,
		streams:      streams,
		progress:     progress,
		presence:     presence,
		relatedLimit: relatedLimit,
		logger:       logger,
		now:          time.Now,
	}
}

// LivePage decides what the live watch page does for this viewer.
// returnPath is where the login page should send the viewer back to.
func (uc *UseCase) LivePage(ctx context.Context, sessionID string, viewer domain.Viewer, returnPath string) Result {
	session, err := uc.sessions.GetSession(ctx, sessionID)
	if err != nil {
		return redirect(eventsPath + "?error=session-not-found")
	}

	decision := access.EvaluateLive(access.Input{
		Session: session,
		Viewer:  viewer,
		Event:   uc.eventFacts(ctx, session.ID, viewer, false),
		Now:     uc.now(),
	})
	if !decision.HasAccess {
		return uc.redirectFor(decision.Reason, session, returnPath, false)
	}

	view := &LiveView{Session: session, Viewer: viewer}
	if uc.presence != nil {
		if count, err := uc.presence.ViewerCount(ctx, session.ID); err == nil {
			view.ViewerCount = count
		} else {
			uc.logger.Warn("viewer count unavailable", zap.String("session_id", session.ID), zap.Error(err))
		}
	}
	return Result{Kind: KindRender, Live: view}
}

// VODPage decides what the recording page does for this viewer. Unlike the
// live page, an insufficient tier renders an upgrade prompt in place.
func (uc *UseCase) VODPage(ctx context.Context, sessionID string, viewer domain.Viewer, returnPath string) Result {
	session, err := uc.sessions.GetSession(ctx, sessionID)
	if err != nil {
		return redirect(eventsPath + "?error=session-not-found")
	}
	if !session.HasRecording() {
		return redirect(eventErrorTarget(session.EventID, "recording-not-found"))
	}

	decision := access.EvaluateVOD(access.Input{
		Session: session,
		Viewer:  viewer,
		Event:   uc.eventFacts(ctx, session.ID, viewer, true),
		Now:     uc.now(),
	})
	if !decision.HasAccess {
		if decision.Reason == domain.OutcomeTierInsufficient {
			return Result{Kind: KindUpgradePrompt, Upgrade: &UpgradeInfo{
				Session:      session,
				CurrentTier:  viewer.Tier,
				RequiredTier: session.RequiredTier,
				UpgradeURL:   upgradePath,
			}}
		}
		return uc.redirectFor(decision.Reason, session, returnPath, true)
	}

	streamURL, err := uc.streams.ResolveStreamURL(ctx, session.RecordingID, session.ID)
	if err != nil || streamURL == "" {
		return redirect(eventErrorTarget(session.EventID, "stream-unavailable"))
	}

	view := &VODView{
		Session:   session,
		Viewer:    viewer,
		StreamURL: streamURL,
		Progress:  domain.ZeroProgress(session.ID, viewer.ID),
	}
	if uc.progress != nil && viewer.ID != "" {
		if stored, err := uc.progress.Get(ctx, session.ID, viewer.ID); err == nil {
			view.Progress = stored
		} else {
			uc.logger.Warn("stored progress unavailable", zap.String("session_id", session.ID), zap.Error(err))
		}
	}
	view.Related = uc.relatedSessions(ctx, session)

	return Result{Kind: KindRender, VOD: view}
}

// eventFacts fetches the payment/terms facts for authenticated viewers.
// Anonymous viewers fail the auth guard before the facts are consulted, so
// the call is skipped. A nil return makes the evaluator fail closed.
func (uc *UseCase) eventFacts(ctx context.Context, sessionID string, viewer domain.Viewer, vod bool) *domain.EventAccess {
	if !viewer.IsAuthenticated() {
		return nil
	}
	check := uc.accessChecks.CheckLiveAccess
	if vod {
		check = uc.accessChecks.CheckVODAccess
	}
	facts, err := check(ctx, sessionID, viewer.ID)
	if err != nil {
		uc.logger.Warn("event access check failed",
			zap.String("session_id", sessionID),
			zap.Error(err))
		return nil
	}
	return facts
}

// relatedSessions is best-effort: failures surface as an empty list.
func (uc *UseCase) relatedSessions(ctx context.Context, session *domain.TrainingSession) []domain.TrainingSession {
	related, err := uc.sessions.RelatedSessions(ctx, domain.RelatedQuery{
		Category:     session.Category,
		InstructorID: session.InstructorID,
		Limit:        uc.relatedLimit,
		Exclude:      session.ID,
	})
	if err != nil {
		uc.logger.Warn("related sessions unavailable", zap.String("session_id", session.ID), zap.Error(err))
		return nil
	}
	return related
}

// redirectFor maps each non-granted outcome to its one redirect target.
func (uc *UseCase) redirectFor(reason domain.AccessOutcome, session *domain.TrainingSession, returnPath string, vod bool) Result {
	switch reason {
	case domain.OutcomeUnauthorized:
		return redirect(loginPath + "?redirect=" + url.QueryEscape(returnPath))
	case domain.OutcomePaymentRequired:
		return redirect("/checkout?eventId=" + url.QueryEscape(session.EventID))
	case domain.OutcomeTierInsufficient:
		// VOD handles tier in place; this arm is the live page's.
		return redirect(upgradePath)
	default:
		return redirect(eventErrorTarget(session.EventID, string(reason)))
	}
}

func eventErrorTarget(eventID, reason string) string {
	if eventID == "" {
		return fmt.Sprintf("%s?error=%s", eventsPath, url.QueryEscape(reason))
	}
	return fmt.Sprintf("%s/%s?error=%s", eventsPath, url.PathEscape(eventID), url.QueryEscape(reason))
}
