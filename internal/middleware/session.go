package middleware

import (
	"context"
	"net/http"

	"github.com/rs/zerolog"

	"pixelmorph/internal/studio"
)

type sessionKey struct{}

// Session resolves the editing session from the named cookie, creating one
// (and setting the cookie) when the cookie is missing or unknown.
func Session(store *studio.Store, cookieName string, l zerolog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			var id string
			if c, err := r.Cookie(cookieName); err == nil {
				id = c.Value
			}
			sess, created := store.GetOrCreate(id)
			if created {
				http.SetCookie(w, &http.Cookie{
					Name:     cookieName,
					Value:    sess.ID(),
					Path:     "/",
					HttpOnly: true,
					SameSite: http.SameSiteLaxMode,
				})
				l.Debug().
					Str("request_id", RequestIDFromContext(r.Context())).
					Str("session_id", sess.ID()).
					Msg("issued session cookie")
			}
			next.ServeHTTP(w, r.WithContext(ContextWithSession(r.Context(), sess)))
		})
	}
}

// ContextWithSession stores sess in ctx.
func ContextWithSession(ctx context.Context, sess *studio.Session) context.Context {
	if sess == nil {
		return ctx
	}
	return context.WithValue(ctx, sessionKey{}, sess)
}

// SessionFromContext returns the session stored by Session, or nil.
func SessionFromContext(ctx context.Context) *studio.Session {
	if v, ok := ctx.Value(sessionKey{}).(*studio.Session); ok {
		return v
	}
	return nil
}
