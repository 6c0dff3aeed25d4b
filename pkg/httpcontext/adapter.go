// Package httpcontext bridges fasthttp request contexts to context.Context.
package httpcontext

import (
	"context"
	"time"
	"unicode"

	"github.com/google/uuid"
	"github.com/valyala/fasthttp"

	appLogger "github.com/fastygo/taskproof/pkg/logger"
)

// UserValueKey is the fasthttp user value the auth middlewares store the caller's id under.
const UserValueKey = "user_id"

const (
	requestIDHeader    = "X-Request-ID"
	maxRequestIDLength = 64
)

type remoteAddrKey struct{}

// Adapter derives a deadline-bound context per request carrying the request
// id, the caller's identity and the remote address.
type Adapter struct {
	timeout time.Duration
	newID   func() string
}

// NewAdapter builds an Adapter. A non-positive timeout falls back to five seconds.
func NewAdapter(timeout time.Duration) *Adapter {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &Adapter{timeout: timeout, newID: uuid.NewString}
}

// Timeout is the deadline applied to every attached context.
func (a *Adapter) Timeout() time.Duration {
	return a.timeout
}

// Attach returns the request's context. The request id is echoed back in the
// response header.
func (a *Adapter) Attach(ctx *fasthttp.RequestCtx) (context.Context, context.CancelFunc) {
	stdCtx, cancel := context.WithTimeout(context.Background(), a.timeout)
	if ctx == nil {
		return appLogger.ContextWithRequestID(stdCtx, a.newID()), cancel
	}

	reqID := string(ctx.Request.Header.Peek(requestIDHeader))
	if !validRequestID(reqID) {
		reqID = a.newID()
	}
	ctx.Response.Header.Set(requestIDHeader, reqID)
	stdCtx = appLogger.ContextWithRequestID(stdCtx, reqID)

	if userID, _ := ctx.UserValue(UserValueKey).(string); userID != "" {
		stdCtx = appLogger.ContextWithUserID(stdCtx, userID)
	}
	if addr := ctx.RemoteAddr(); addr != nil {
		stdCtx = context.WithValue(stdCtx, remoteAddrKey{}, addr.String())
	}
	return stdCtx, cancel
}

// RemoteAddr returns the client address recorded by Attach.
func RemoteAddr(ctx context.Context) string {
	addr, _ := ctx.Value(remoteAddrKey{}).(string)
	return addr
}

// validRequestID accepts short printable ids so callers cannot inject log noise.
func validRequestID(id string) bool {
	if id == "" || len(id) > maxRequestIDLength {
		return false
	}
	for _, r := range id {
		if r > unicode.MaxASCII || !unicode.IsPrint(r) || unicode.IsSpace(r) {
			return false
		}
	}
	return true
}
