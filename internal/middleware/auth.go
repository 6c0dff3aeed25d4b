package middleware

import (
	"strings"
	"time"

	"github.com/bytedance/sonic"
	"github.com/golang-jwt/jwt/v4"
	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	"github.com/fastygo/taskproof/api/transport"
	"github.com/fastygo/taskproof/domain"
	"github.com/fastygo/taskproof/pkg/httpcontext"
)

// Middleware wraps a fasthttp handler.
type Middleware func(fasthttp.RequestHandler) fasthttp.RequestHandler

const (
	userIDKey    = httpcontext.UserValueKey
	userIDHeader = "X-User-ID"
)

// UserID returns the identity attached by one of the auth middlewares.
func UserID(ctx *fasthttp.RequestCtx) string {
	id, _ := ctx.UserValue(userIDKey).(string)
	return id
}

// JWTAuth accepts HS256 bearer tokens carrying a user_id (or sub) claim and
// an exp claim. Tokens are issued by the identity provider; this service only
// verifies them.
func JWTAuth(secret, issuer string, logger *zap.Logger) Middleware {
	if logger == nil {
		logger = zap.NewNop()
	}
	parser := jwt.NewParser(jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))

	return func(next fasthttp.RequestHandler) fasthttp.RequestHandler {
		return func(ctx *fasthttp.RequestCtx) {
			// never trust a caller-supplied identity header
			ctx.Request.Header.Del(userIDHeader)

			tokenString := extractToken(ctx)
			if tokenString == "" {
				unauthorized(ctx, "missing bearer token")
				return
			}

			claims := jwt.MapClaims{}
			token, err := parser.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
				return []byte(secret), nil
			})
			if err != nil || !token.Valid {
				logger.Warn("invalid jwt token", zap.Error(err))
				unauthorized(ctx, "invalid token")
				return
			}
			// MapClaims only checks exp when present
			if !claims.VerifyExpiresAt(time.Now().Unix(), true) {
				logger.Warn("jwt without expiry")
				unauthorized(ctx, "token has no expiry")
				return
			}
			if issuer != "" && !claims.VerifyIssuer(issuer, true) {
				logger.Warn("jwt issuer mismatch")
				unauthorized(ctx, "invalid token issuer")
				return
			}

			userID := claimUserID(claims)
			if userID == "" {
				unauthorized(ctx, "token carries no user")
				return
			}
			ctx.SetUserValue(userIDKey, userID)
			ctx.Request.Header.Set(userIDHeader, userID)

			next(ctx)
		}
	}
}

// HeaderIdentity trusts the X-User-ID header. Only for local development
// and the bundled terminal client, never behind a public listener.
func HeaderIdentity() Middleware {
	return func(next fasthttp.RequestHandler) fasthttp.RequestHandler {
		return func(ctx *fasthttp.RequestCtx) {
			userID := strings.TrimSpace(string(ctx.Request.Header.Peek(userIDHeader)))
			if userID == "" {
				unauthorized(ctx, "missing user id")
				return
			}
			ctx.SetUserValue(userIDKey, userID)
			next(ctx)
		}
	}
}

func unauthorized(ctx *fasthttp.RequestCtx, message string) {
	body, err := sonic.Marshal(transport.NewError(string(domain.ErrCodeUnauthorized), message, nil))
	if err != nil {
		body = []byte(`{"status":"error","code":"UNAUTHORIZED"}`)
	}
	ctx.Response.Header.SetContentType("application/json")
	ctx.SetStatusCode(fasthttp.StatusUnauthorized)
	ctx.SetBody(body)
}

func claimUserID(claims jwt.MapClaims) string {
	if id, ok := claims["user_id"].(string); ok && id != "" {
		return id
	}
	id, _ := claims["sub"].(string)
	return id
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
