package handler

import (
	"net/http"

	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	"github.com/budokan/backend/api/transport"
	"github.com/budokan/backend/domain"
	"github.com/budokan/backend/pkg/httpcontext"
	playbackUC "github.com/budokan/backend/usecase/playback"
)

// WatchHandler is the thin rendering shell over the page controllers: it
// turns a playback.Result into an HTTP response, either a 302 or a JSON
// view payload.
type WatchHandler struct {
	baseHandler
	uc *playbackUC.UseCase
}

func NewWatchHandler(uc *playbackUC.UseCase, adapter *httpcontext.Adapter, logger *zap.Logger) *WatchHandler {
	return &WatchHandler{
		baseHandler: newBaseHandler(adapter, logger),
		uc:          uc,
	}
}

// @Summary Live watch page
// @Tags watch
// @Router /api/v1/watch/live/{id} [get]
func (h *WatchHandler) Live(ctx *fasthttp.RequestCtx) {
	sessionID, ok := h.sessionID(ctx)
	if !ok {
		return
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	result := h.uc.LivePage(stdCtx, sessionID, h.viewer(ctx), string(ctx.RequestURI()))
	h.renderResult(ctx, result, "live")
}

// @Summary Recording watch page
// @Tags watch
// @Router /api/v1/watch/vod/{id} [get]
func (h *WatchHandler) VOD(ctx *fasthttp.RequestCtx) {
	sessionID, ok := h.sessionID(ctx)
	if !ok {
		return
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	result := h.uc.VODPage(stdCtx, sessionID, h.viewer(ctx), string(ctx.RequestURI()))
	h.renderResult(ctx, result, "vod")
}

func (h *WatchHandler) renderResult(ctx *fasthttp.RequestCtx, result playbackUC.Result, page string) {
	switch result.Kind {
	case playbackUC.KindRedirect:
		ctx.Redirect(result.Redirect, fasthttp.StatusFound)
	case playbackUC.KindUpgradePrompt:
		h.respondSuccess(ctx, http.StatusOK, map[string]interface{}{
			"view":    "upgrade",
			"upgrade": result.Upgrade,
		})
	case playbackUC.KindRender:
		payload := map[string]interface{}{"view": page}
		if result.Live != nil {
			payload["live"] = result.Live
		}
		if result.VOD != nil {
			payload["vod"] = result.VOD
		}
		h.respondSuccess(ctx, http.StatusOK, payload)
	default:
		h.logger.Error("unhandled page result", zap.String("page", page), zap.Int("kind", int(result.Kind)))
		h.respondJSON(ctx, http.StatusInternalServerError,
			transport.NewError(string(domain.ErrCodeInternal), "unhandled page result", nil))
	}
}

func (h *WatchHandler) sessionID(ctx *fasthttp.RequestCtx) (string, bool) {
	id, _ := ctx.UserValue("id").(string)
	if id == "" {
		h.respondJSON(ctx, http.StatusBadRequest, transport.NewError(string(domain.ErrCodeInvalid), "missing session id", nil))
		return "", false
	}
	return id, true
}
