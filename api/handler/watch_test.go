package handler

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/valyala/fasthttp"

	"github.com/budokan/backend/domain"
	"github.com/budokan/backend/internal/middleware"
	playbackUC "github.com/budokan/backend/usecase/playback"
)

type stubGateway struct {
	session    *domain.TrainingSession
	sessionErr error
	facts      *domain.EventAccess
	streamURL  string
}

func (g *stubGateway) GetSession(ctx context.Context, sessionID string) (*domain.TrainingSession, error) {
	if g.sessionErr != nil {
		return nil, g.sessionErr
	}
	return g.session, nil
}

func (g *stubGateway) RelatedSessions(ctx context.Context, query domain.RelatedQuery) ([]domain.TrainingSession, error) {
	return nil, nil
}

func (g *stubGateway) CheckLiveAccess(ctx context.Context, sessionID, userID string) (*domain.EventAccess, error) {
	return g.facts, nil
}

func (g *stubGateway) CheckVODAccess(ctx context.Context, sessionID, userID string) (*domain.EventAccess, error) {
	return g.facts, nil
}

func (g *stubGateway) ResolveStreamURL(ctx context.Context, recordingID, sessionID string) (string, error) {
	return g.streamURL, nil
}

func newWatchHandler(g *stubGateway) *WatchHandler {
	uc := playbackUC.New(g, g, g, nil, nil, 6, nil)
	return NewWatchHandler(uc, nil, nil)
}

func watchCtx(path, sessionID string) *fasthttp.RequestCtx {
	ctx := &fasthttp.RequestCtx{}
	ctx.Request.SetRequestURI(path)
	ctx.SetUserValue("id", sessionID)
	return ctx
}

func asMember(ctx *fasthttp.RequestCtx, tier string) {
	ctx.Request.Header.Set(middleware.HeaderUserID, "u1")
	ctx.Request.Header.Set(middleware.HeaderUserTier, tier)
}

func TestWatchHandler_LiveRenders(t *testing.T) {
	now := time.Now()
	h := newWatchHandler(&stubGateway{
		session: &domain.TrainingSession{
			ID:           "sess-1",
			EventID:      "evt-1",
			RequiredTier: domain.TierBasic,
			StartsAt:     now.Add(-30 * time.Minute),
			EndsAt:       now.Add(time.Hour),
		},
		facts: &domain.EventAccess{PaymentSettled: true, TermsAccepted: true},
	})

	ctx := watchCtx("/api/v1/watch/live/sess-1", "sess-1")
	asMember(ctx, domain.TierBasic)
	h.Live(ctx)

	require.Equal(t, fasthttp.StatusOK, ctx.Response.StatusCode())

	var envelope struct {
		Status string `json:"status"`
		Data   struct {
			View string `json:"view"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(ctx.Response.Body(), &envelope))
	assert.Equal(t, "success", envelope.Status)
	assert.Equal(t, "live", envelope.Data.View)
}

func TestWatchHandler_LiveAnonymousRedirectsToLogin(t *testing.T) {
	now := time.Now()
	h := newWatchHandler(&stubGateway{
		session: &domain.TrainingSession{
			ID:           "sess-1",
			EventID:      "evt-1",
			RequiredTier: domain.TierBasic,
			StartsAt:     now.Add(-30 * time.Minute),
			EndsAt:       now.Add(time.Hour),
		},
	})

	ctx := watchCtx("/api/v1/watch/live/sess-1", "sess-1")
	h.Live(ctx)

	assert.Equal(t, fasthttp.StatusFound, ctx.Response.StatusCode())
	assert.Equal(t, "/login?redirect=%2Fapi%2Fv1%2Fwatch%2Flive%2Fsess-1",
		string(ctx.Response.Header.Peek("Location")))
}

func TestWatchHandler_VODSessionNotFoundRedirects(t *testing.T) {
	h := newWatchHandler(&stubGateway{sessionErr: domain.ErrSessionNotFound})

	ctx := watchCtx("/api/v1/watch/vod/missing", "missing")
	asMember(ctx, domain.TierBasic)
	h.VOD(ctx)

	assert.Equal(t, fasthttp.StatusFound, ctx.Response.StatusCode())
	assert.Equal(t, "/events?error=session-not-found", string(ctx.Response.Header.Peek("Location")))
}

func TestWatchHandler_VODUpgradePrompt(t *testing.T) {
	now := time.Now()
	h := newWatchHandler(&stubGateway{
		session: &domain.TrainingSession{
			ID:           "sess-1",
			EventID:      "evt-1",
			RequiredTier: domain.TierPremium,
			StartsAt:     now.Add(-48 * time.Hour),
			EndsAt:       now.Add(-47 * time.Hour),
			RecordingID:  "rec-1",
		},
		facts: &domain.EventAccess{PaymentSettled: true, TermsAccepted: true},
	})

	ctx := watchCtx("/api/v1/watch/vod/sess-1", "sess-1")
	asMember(ctx, domain.TierBasic)
	h.VOD(ctx)

	require.Equal(t, fasthttp.StatusOK, ctx.Response.StatusCode())

	var envelope struct {
		Data struct {
			View    string `json:"view"`
			Upgrade struct {
				RequiredTier string `json:"required_tier"`
			} `json:"upgrade"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(ctx.Response.Body(), &envelope))
	assert.Equal(t, "upgrade", envelope.Data.View)
	assert.Equal(t, domain.TierPremium, envelope.Data.Upgrade.RequiredTier)
}

func TestWatchHandler_MissingSessionID(t *testing.T) {
	h := newWatchHandler(&stubGateway{})

	ctx := &fasthttp.RequestCtx{}
	ctx.Request.SetRequestURI("/api/v1/watch/live/")
	h.Live(ctx)

	assert.Equal(t, fasthttp.StatusBadRequest, ctx.Response.StatusCode())
}
