// Package session provides HTTP middleware for session management.
package session

import (
	"context"
	"net/http"
)

// contextKey is a type for context keys to avoid collisions
type contextKey string

const (
	// ctxKey is the key used to store session data in context
	ctxKey contextKey = "session"
)

// Middleware creates a middleware that adds session data to the request context
func (m *Manager) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		session, err := m.GetSession(r.Context(), r)
		if err == nil {
			ctx := context.WithValue(r.Context(), ctxKey, session)
			r = r.WithContext(ctx)
		}
		next.ServeHTTP(w, r)
	})
}

// EnsureSession guarantees every request carries a session, creating an
// anonymous one when none exists. Guest carts hang off the anonymous session key.
func (m *Manager) EnsureSession(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		session, err := m.GetSession(r.Context(), r)
		if err != nil {
			session = &Data{}
			sessionID, createErr := m.CreateSession(r.Context(), w, session)
			if createErr != nil {
				http.Error(w, "failed to create session", http.StatusInternalServerError)
				return
			}
			// Make the fresh cookie visible to SessionKey within this request.
			r.AddCookie(&http.Cookie{Name: cookieName, Value: sessionID})
		}
		ctx := context.WithValue(r.Context(), ctxKey, session)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// RequireAuth is a middleware that requires a logged-in user session.
func (m *Manager) RequireAuth() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			session, err := m.GetSession(r.Context(), r)
			if err != nil || !session.Authenticated() {
				http.Error(w, "authentication required", http.StatusUnauthorized)
				return
			}

			ctx := context.WithValue(r.Context(), ctxKey, session)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireStaff requires a logged-in staff session.
func (m *Manager) RequireStaff() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			session, err := m.GetSession(r.Context(), r)
			if err != nil || !session.Authenticated() {
				http.Error(w, "authentication required", http.StatusUnauthorized)
				return
			}
			if !session.IsStaff {
				http.Error(w, "staff access required", http.StatusForbidden)
				return
			}

			ctx := context.WithValue(r.Context(), ctxKey, session)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// GetSessionFromContext retrieves session data from the request context.
func GetSessionFromContext(ctx context.Context) *Data {
	if ctx == nil {
		return nil
	}
	session, ok := ctx.Value(ctxKey).(*Data)
	if !ok {
		return nil
	}
	return session
}
