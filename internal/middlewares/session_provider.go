package middlewares

import (
	"net/http"
	"time"
)

//go:generate mockgen -source=session_provider.go -destination=../mocks/session.go -package=mocks

// SessionProvider is the slice of session behavior the gate needs: mark the
// calling browser as admitted, ask whether it still is, and tear the mark
// down again. LoadAndSave is the scs middleware and must wrap every route
// that touches session state.
type SessionProvider interface {
	StoreSessionToken(ctx *AppContext)
	HasValidSession(ctx *AppContext) bool
	SessionExpiresAt(ctx *AppContext) (time.Time, bool)
	ClearSession(ctx *AppContext) error

	LoadAndSave(next http.Handler) http.Handler
}
