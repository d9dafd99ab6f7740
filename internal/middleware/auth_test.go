package middleware

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/valyala/fasthttp"
)

const testSecret = "test-secret"

func signToken(t *testing.T, secret string, claims jwt.MapClaims) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(secret))
	require.NoError(t, err)
	return signed
}

func viewerToken(t *testing.T) string {
	return signToken(t, testSecret, jwt.MapClaims{
		"user_id": "u1",
		"name":    "Aiko",
		"tier":    "premium",
		"exp":     time.Now().Add(time.Hour).Unix(),
	})
}

func newCtx() *fasthttp.RequestCtx {
	ctx := &fasthttp.RequestCtx{}
	ctx.Request.SetRequestURI("/api/v1/sessions/s1/progress")
	return ctx
}

func TestRequireViewer_ValidToken(t *testing.T) {
	ctx := newCtx()
	ctx.Request.Header.Set("Authorization", "Bearer "+viewerToken(t))

	var called bool
	RequireViewer(testSecret, nil)(func(ctx *fasthttp.RequestCtx) {
		called = true
		assert.Equal(t, "u1", string(ctx.Request.Header.Peek(HeaderUserID)))
		assert.Equal(t, "Aiko", string(ctx.Request.Header.Peek(HeaderUserName)))
		assert.Equal(t, "premium", string(ctx.Request.Header.Peek(HeaderUserTier)))
	})(ctx)

	assert.True(t, called)
}

func TestRequireViewer_MissingToken(t *testing.T) {
	ctx := newCtx()

	var called bool
	RequireViewer(testSecret, nil)(func(ctx *fasthttp.RequestCtx) {
		called = true
	})(ctx)

	assert.False(t, called)
	assert.Equal(t, fasthttp.StatusUnauthorized, ctx.Response.StatusCode())
}

func TestRequireViewer_WrongSecret(t *testing.T) {
	ctx := newCtx()
	ctx.Request.Header.Set("Authorization", "Bearer "+signToken(t, "other-secret", jwt.MapClaims{
		"user_id": "u1",
	}))

	var called bool
	RequireViewer(testSecret, nil)(func(ctx *fasthttp.RequestCtx) {
		called = true
	})(ctx)

	assert.False(t, called)
	assert.Equal(t, fasthttp.StatusUnauthorized, ctx.Response.StatusCode())
}

func TestRequireViewer_ExpiredToken(t *testing.T) {
	ctx := newCtx()
	ctx.Request.Header.Set("Authorization", "Bearer "+signToken(t, testSecret, jwt.MapClaims{
		"user_id": "u1",
		"exp":     time.Now().Add(-time.Hour).Unix(),
	}))

	var called bool
	RequireViewer(testSecret, nil)(func(ctx *fasthttp.RequestCtx) {
		called = true
	})(ctx)

	assert.False(t, called)
	assert.Equal(t, fasthttp.StatusUnauthorized, ctx.Response.StatusCode())
}

func TestRequireViewer_StripsSpoofedHeaders(t *testing.T) {
	ctx := newCtx()
	ctx.Request.Header.Set(HeaderUserID, "spoofed-admin")
	ctx.Request.Header.Set(HeaderUserTier, "instructor")
	ctx.Request.Header.Set("Authorization", "Bearer "+viewerToken(t))

	RequireViewer(testSecret, nil)(func(ctx *fasthttp.RequestCtx) {
		// Identity comes from the token, never the incoming headers.
		assert.Equal(t, "u1", string(ctx.Request.Header.Peek(HeaderUserID)))
		assert.Equal(t, "premium", string(ctx.Request.Header.Peek(HeaderUserTier)))
	})(ctx)
}

func TestOptionalViewer_AnonymousPassesThrough(t *testing.T) {
	ctx := newCtx()
	ctx.Request.Header.Set(HeaderUserID, "spoofed")

	var called bool
	OptionalViewer(testSecret, nil)(func(ctx *fasthttp.RequestCtx) {
		called = true
		assert.Empty(t, string(ctx.Request.Header.Peek(HeaderUserID)))
	})(ctx)

	assert.True(t, called)
}

func TestOptionalViewer_InvalidTokenTreatedAsAnonymous(t *testing.T) {
	ctx := newCtx()
	ctx.Request.Header.Set("Authorization", "Bearer not-a-token")

	var called bool
	OptionalViewer(testSecret, nil)(func(ctx *fasthttp.RequestCtx) {
		called = true
		assert.Empty(t, string(ctx.Request.Header.Peek(HeaderUserID)))
	})(ctx)

	assert.True(t, called)
}

func TestOptionalViewer_ValidTokenSetsIdentity(t *testing.T) {
	ctx := newCtx()
	ctx.Request.Header.Set("Authorization", "Bearer "+viewerToken(t))

	OptionalViewer(testSecret, nil)(func(ctx *fasthttp.RequestCtx) {
		assert.Equal(t, "u1", string(ctx.Request.Header.Peek(HeaderUserID)))
	})(ctx)
}
