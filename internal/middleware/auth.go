package middleware

import (
	"strings"

	"github.com/golang-jwt/jwt/v4"
	"github.com/valyala/fasthttp"
	"go.uber.org/zap"
)

// Viewer identity travels to handlers via request headers set from verified
// token claims. Incoming copies of these headers are always stripped first
// so a client cannot spoof an identity.
const (
	HeaderUserID   = "X-User-ID"
	HeaderUserName = "X-User-Name"
	HeaderUserTier = "X-User-Tier"
)

// RequireViewer rejects requests without a valid token. Used on write
// endpoints where an anonymous caller has no business.
func RequireViewer(secret string, logger *zap.Logger) func(fasthttp.RequestHandler) fasthttp.RequestHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return func(next fasthttp.RequestHandler) fasthttp.RequestHandler {
		return func(ctx *fasthttp.RequestCtx) {
			stripIdentityHeaders(ctx)

			tokenString := extractToken(ctx)
			if tokenString == "" {
				ctx.SetStatusCode(fasthttp.StatusUnauthorized)
				return
			}

			claims, err := parseClaims(tokenString, secret)
			if err != nil {
				logger.Warn("invalid jwt token", zap.Error(err))
				ctx.SetStatusCode(fasthttp.StatusUnauthorized)
				return
			}

			applyClaims(ctx, claims)
			next(ctx)
		}
	}
}

// OptionalViewer extracts the identity when a valid token is present and
// lets the request through either way. The watch pages depend on this: an
// anonymous viewer must reach the access evaluator so it can answer
// "unauthorized" with a login redirect rather than a bare 401.
func OptionalViewer(secret string, logger *zap.Logger) func(fasthttp.RequestHandler) fasthttp.RequestHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return func(next fasthttp.RequestHandler) fasthttp.RequestHandler {
		return func(ctx *fasthttp.RequestCtx) {
			stripIdentityHeaders(ctx)

			if tokenString := extractToken(ctx); tokenString != "" {
				claims, err := parseClaims(tokenString, secret)
				if err != nil {
					logger.Debug("ignoring invalid jwt token", zap.Error(err))
				} else {
					applyClaims(ctx, claims)
				}
			}
			next(ctx)
		}
	}
}

func parseClaims(tokenString, secret string) (jwt.MapClaims, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		return []byte(secret), nil
	})
	if err != nil {
		return nil, err
	}
	if !token.Valid {
		return nil, jwt.ErrTokenUnverifiable
	}
	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil, jwt.ErrTokenInvalidClaims
	}
	return claims, nil
}

func applyClaims(ctx *fasthttp.RequestCtx, claims jwt.MapClaims) {
	if userID, ok := claims["user_id"].(string); ok {
		ctx.Request.Header.Set(HeaderUserID, userID)
	}
	if name, ok := claims["name"].(string); ok {
		ctx.Request.Header.Set(HeaderUserName, name)
	}
	if tier, ok := claims["tier"].(string); ok {
		ctx.Request.Header.Set(HeaderUserTier, tier)
	}
}

func stripIdentityHeaders(ctx *fasthttp.RequestCtx) {
	ctx.Request.Header.Del(HeaderUserID)
	ctx.Request.Header.Del(HeaderUserName)
	ctx.Request.Header.Del(HeaderUserTier)
}

func extractToken(ctx *fasthttp.RequestCtx) string {
	header := string(ctx.Request.Header.Peek("Authorization"))
	if header == "" {
		return ""
	}
	if strings.HasPrefix(header, "Bearer ") {
		return strings.TrimPrefix(header, "Bearer ")
	}
	return header
}
