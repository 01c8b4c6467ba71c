package handlers

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/gorilla/sessions"
)

const (
	sessionName = "portfolio"
	nonceKey    = "form_nonce"
)

// NewSessionStore returns the cookie store that carries flash messages and
// the form-token nonce, signed with secret.
func NewSessionStore(secret string, secure bool) *sessions.CookieStore {
	store := sessions.NewCookieStore([]byte(secret))
	store.Options = &sessions.Options{
		Path:     "/",
		MaxAge:   86400 * 7,
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteLaxMode,
	}
	return store
}

// session returns the request's session. A cookie that fails to decode
// (rotated SECRET_KEY, tampering) yields a fresh session.
func (h *Handler) session(r *http.Request) *sessions.Session {
	s, err := h.sessions.Get(r, sessionName)
	if err != nil {
		h.log.Debug().Err(err).Msg("session cookie discarded")
	}
	return s
}

// formNonce returns the session's nonce, creating one if needed.
// The second result reports whether the session must be saved.
func formNonce(s *sessions.Session) (string, bool) {
	if n, ok := s.Values[nonceKey].(string); ok && n != "" {
		return n, false
	}
	n := uuid.NewString()
	s.Values[nonceKey] = n
	return n, true
}

// flash queues a warning for the next rendered page.
func (h *Handler) flash(w http.ResponseWriter, r *http.Request, msg string) {
	s := h.session(r)
	s.AddFlash(msg)
	if err := s.Save(r, w); err != nil {
		h.log.Error().Err(err).Msg("save flash")
	}
}

// popFlashes drains queued messages. The caller saves the session.
func popFlashes(s *sessions.Session) []string {
	var out []string
	for _, f := range s.Flashes() {
		if msg, ok := f.(string); ok {
			out = append(out, msg)
		}
	}
	return out
}
