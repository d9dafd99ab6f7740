package handler

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	"github.com/budokan/backend/api/transport"
	"github.com/budokan/backend/domain"
	"github.com/budokan/backend/pkg/httpcontext"
	progressUC "github.com/budokan/backend/usecase/progress"
)

type ProgressHandler struct {
	baseHandler
	uc *progressUC.UseCase
}

func NewProgressHandler(uc *progressUC.UseCase, adapter *httpcontext.Adapter, logger *zap.Logger) *ProgressHandler {
	return &ProgressHandler{
		baseHandler: newBaseHandler(adapter, logger),
		uc:          uc,
	}
}

// @Summary Read own watch progress
// @Tags progress
// @Router /api/v1/sessions/{id}/progress [get]
func (h *ProgressHandler) Get(ctx *fasthttp.RequestCtx) {
	sessionID, _ := ctx.UserValue("id").(string)
	viewer := h.viewer(ctx)

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	record, err := h.uc.Get(stdCtx, sessionID, viewer.ID)
	if err != nil {
		h.respondError(ctx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusOK, record)
}

// @Summary Record watch progress
// @Tags progress
// @Router /api/v1/sessions/{id}/progress [post]
func (h *ProgressHandler) Record(ctx *fasthttp.RequestCtx) {
	sessionID, _ := ctx.UserValue("id").(string)

	var req transport.ProgressWriteRequest
	if err := json.Unmarshal(ctx.PostBody(), &req); err != nil {
		h.respondJSON(ctx, http.StatusBadRequest, transport.NewError(string(domain.ErrCodeInvalid), "invalid payload", nil))
		return
	}
	if req.LastWatchedPosition == nil || req.TotalWatchTime == nil {
		h.respondJSON(ctx, http.StatusBadRequest,
			transport.NewError(string(domain.ErrCodeInvalid), "lastWatchedPosition and totalWatchTime are required", nil))
		return
	}

	// Writes are scoped to the authenticated viewer regardless of the body.
	viewer := h.viewer(ctx)
	userID := viewer.ID
	if userID == "" {
		userID = req.UserID
	}

	update := domain.ProgressUpdate{
		SessionID:           sessionID,
		UserID:              userID,
		LastWatchedPosition: *req.LastWatchedPosition,
		TotalWatchTime:      *req.TotalWatchTime,
		Completed:           req.Completed,
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	record, err := h.uc.Record(stdCtx, update)
	if err != nil {
		h.respondError(ctx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusOK, record)
}

// @Summary List a session's progress records
// @Tags progress
// @Router /api/v1/sessions/{id}/progress/all [get]
func (h *ProgressHandler) ListSession(ctx *fasthttp.RequestCtx) {
	sessionID, _ := ctx.UserValue("id").(string)

	viewer := h.viewer(ctx)
	if !domain.TierAtLeast(viewer.Tier, domain.TierInstructor) {
		h.respondJSON(ctx, http.StatusForbidden,
			transport.NewError(string(domain.ErrCodeForbidden), "instructor tier required", nil))
		return
	}

	limit := parseInt(string(ctx.QueryArgs().Peek("limit")), 50)

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	records, err := h.uc.SessionProgress(stdCtx, sessionID, limit)
	if err != nil {
		h.respondError(ctx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusOK, records)
}

func parseInt(value string, fallback int) int {
	if v, err := strconv.Atoi(value); err == nil {
		return v
	}
	return fallback
}
