package handler

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/valyala/fasthttp"

	"github.com/budokan/backend/domain"
	"github.com/budokan/backend/repository/memory"
	progressUC "github.com/budokan/backend/usecase/progress"
)

func newProgressHandler() *ProgressHandler {
	return NewProgressHandler(progressUC.New(memory.NewProgressRepository(), nil, nil), nil, nil)
}

func progressCtx(method, body, sessionID string) *fasthttp.RequestCtx {
	ctx := &fasthttp.RequestCtx{}
	ctx.Request.Header.SetMethod(method)
	ctx.Request.SetRequestURI("/api/v1/sessions/" + sessionID + "/progress")
	if body != "" {
		ctx.Request.SetBodyString(body)
	}
	ctx.SetUserValue("id", sessionID)
	return ctx
}

func TestProgressHandler_GetDefaultsToZero(t *testing.T) {
	h := newProgressHandler()

	ctx := progressCtx(fasthttp.MethodGet, "", "sess-1")
	asMember(ctx, domain.TierBasic)
	h.Get(ctx)

	require.Equal(t, fasthttp.StatusOK, ctx.Response.StatusCode())

	var envelope struct {
		Data domain.WatchProgress `json:"data"`
	}
	require.NoError(t, json.Unmarshal(ctx.Response.Body(), &envelope))
	assert.Equal(t, "sess-1", envelope.Data.SessionID)
	assert.Equal(t, "u1", envelope.Data.UserID)
	assert.Equal(t, float64(0), envelope.Data.TotalWatchTime)
}

func TestProgressHandler_RecordThenRead(t *testing.T) {
	h := newProgressHandler()

	write := progressCtx(fasthttp.MethodPost,
		`{"lastWatchedPosition":120,"totalWatchTime":300}`, "sess-1")
	asMember(write, domain.TierBasic)
	h.Record(write)
	require.Equal(t, fasthttp.StatusOK, write.Response.StatusCode())

	// A stale follow-up write rewinds the position but not the total.
	stale := progressCtx(fasthttp.MethodPost,
		`{"lastWatchedPosition":90,"totalWatchTime":200}`, "sess-1")
	asMember(stale, domain.TierBasic)
	h.Record(stale)
	require.Equal(t, fasthttp.StatusOK, stale.Response.StatusCode())

	read := progressCtx(fasthttp.MethodGet, "", "sess-1")
	asMember(read, domain.TierBasic)
	h.Get(read)

	var envelope struct {
		Data domain.WatchProgress `json:"data"`
	}
	require.NoError(t, json.Unmarshal(read.Response.Body(), &envelope))
	assert.Equal(t, float64(90), envelope.Data.LastWatchedPosition)
	assert.Equal(t, float64(300), envelope.Data.TotalWatchTime)
}

func TestProgressHandler_RecordRequiresBothCounters(t *testing.T) {
	h := newProgressHandler()

	for _, body := range []string{
		`{}`,
		`{"lastWatchedPosition":120}`,
		`{"totalWatchTime":300}`,
	} {
		ctx := progressCtx(fasthttp.MethodPost, body, "sess-1")
		asMember(ctx, domain.TierBasic)
		h.Record(ctx)
		assert.Equal(t, fasthttp.StatusBadRequest, ctx.Response.StatusCode(), "body: %s", body)
	}
}

func TestProgressHandler_RecordRejectsNegative(t *testing.T) {
	h := newProgressHandler()

	ctx := progressCtx(fasthttp.MethodPost,
		`{"lastWatchedPosition":-10,"totalWatchTime":0}`, "sess-1")
	asMember(ctx, domain.TierBasic)
	h.Record(ctx)

	assert.Equal(t, fasthttp.StatusBadRequest, ctx.Response.StatusCode())
}

func TestProgressHandler_RecordIgnoresBodyUserID(t *testing.T) {
	h := newProgressHandler()

	ctx := progressCtx(fasthttp.MethodPost,
		`{"userId":"someone-else","lastWatchedPosition":10,"totalWatchTime":10}`, "sess-1")
	asMember(ctx, domain.TierBasic)
	h.Record(ctx)
	require.Equal(t, fasthttp.StatusOK, ctx.Response.StatusCode())

	var envelope struct {
		Data domain.WatchProgress `json:"data"`
	}
	require.NoError(t, json.Unmarshal(ctx.Response.Body(), &envelope))
	assert.Equal(t, "u1", envelope.Data.UserID)
}

func TestProgressHandler_ListSessionRequiresInstructor(t *testing.T) {
	h := newProgressHandler()

	ctx := progressCtx(fasthttp.MethodGet, "", "sess-1")
	asMember(ctx, domain.TierPremium)
	h.ListSession(ctx)
	assert.Equal(t, fasthttp.StatusForbidden, ctx.Response.StatusCode())

	allowed := progressCtx(fasthttp.MethodGet, "", "sess-1")
	asMember(allowed, domain.TierInstructor)
	h.ListSession(allowed)
	assert.Equal(t, fasthttp.StatusOK, allowed.Response.StatusCode())
}
