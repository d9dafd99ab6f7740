package handler

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	"github.com/budokan/backend/api/transport"
	"github.com/budokan/backend/domain"
	"github.com/budokan/backend/pkg/httpcontext"
	attendanceUC "github.com/budokan/backend/usecase/attendance"
)

type AttendanceHandler struct {
	baseHandler
	uc *attendanceUC.UseCase
}

func NewAttendanceHandler(uc *attendanceUC.UseCase, adapter *httpcontext.Adapter, logger *zap.Logger) *AttendanceHandler {
	return &AttendanceHandler{
		baseHandler: newBaseHandler(adapter, logger),
		uc:          uc,
	}
}

// @Summary Record a session join
// @Tags attendance
// @Router /api/v1/sessions/{id}/attendance [post]
func (h *AttendanceHandler) Join(ctx *fasthttp.RequestCtx) {
	sessionID, _ := ctx.UserValue("id").(string)

	var req transport.AttendanceJoinRequest
	if err := json.Unmarshal(ctx.PostBody(), &req); err != nil {
		h.respondJSON(ctx, http.StatusBadRequest, transport.NewError(string(domain.ErrCodeInvalid), "invalid payload", nil))
		return
	}

	viewer := h.viewer(ctx)
	userID := viewer.ID
	if userID == "" {
		userID = req.UserID
	}

	join := domain.AttendanceJoin{
		SessionID: sessionID,
		UserID:    userID,
	}
	if req.JoinedAt != "" {
		if parsed, err := time.Parse(time.RFC3339, req.JoinedAt); err == nil {
			join.JoinedAt = parsed
		}
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	if err := h.uc.Join(stdCtx, join); err != nil {
		h.respondError(ctx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusCreated, nil)
}

// @Summary Add watch time to an attendance record
// @Tags attendance
// @Router /api/v1/sessions/{id}/attendance/{userId} [put]
func (h *AttendanceHandler) AddWatchTime(ctx *fasthttp.RequestCtx) {
	sessionID, _ := ctx.UserValue("id").(string)
	userID, _ := ctx.UserValue("userId").(string)

	var req transport.AttendanceIncrementRequest
	if err := json.Unmarshal(ctx.PostBody(), &req); err != nil || req.WatchTimeIncrement == nil {
		h.respondJSON(ctx, http.StatusBadRequest,
			transport.NewError(string(domain.ErrCodeInvalid), "watchTimeIncrement is required", nil))
		return
	}

	inc := domain.AttendanceIncrement{
		SessionID:          sessionID,
		UserID:             userID,
		WatchTimeIncrement: *req.WatchTimeIncrement,
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	if err := h.uc.AddWatchTime(stdCtx, inc); err != nil {
		h.respondError(ctx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusOK, nil)
}

// @Summary Read an attendance record
// @Tags attendance
// @Router /api/v1/sessions/{id}/attendance/{userId} [get]
func (h *AttendanceHandler) Get(ctx *fasthttp.RequestCtx) {
	sessionID, _ := ctx.UserValue("id").(string)
	userID, _ := ctx.UserValue("userId").(string)

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	record, err := h.uc.Get(stdCtx, sessionID, userID)
	if err != nil {
		h.respondError(ctx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusOK, record)
}

// @Summary Drop a viewer's live presence
// @Tags attendance
// @Router /api/v1/sessions/{id}/attendance/{userId} [delete]
func (h *AttendanceHandler) Leave(ctx *fasthttp.RequestCtx) {
	sessionID, _ := ctx.UserValue("id").(string)
	userID, _ := ctx.UserValue("userId").(string)

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	if err := h.uc.Leave(stdCtx, sessionID, userID); err != nil {
		h.respondError(ctx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusNoContent, nil)
}
