package pkg

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gorilla/securecookie"
	"github.com/gorilla/sessions"
)

// SessionCookieName is the signed cookie that binds a browser to its game.
const SessionCookieName = "user_session"

const (
	sessionIDKey  = "id"
	sessionKeyLen = 32
)

// NewSessionStore - cookie store shared by the page handlers and the websocket handshake.
// The cookie lives as long as the stored game.
func NewSessionStore(key []byte, ttl time.Duration) *sessions.CookieStore {
	store := sessions.NewCookieStore(key)
	store.Options = &sessions.Options{
		Path:     "/",
		MaxAge:   int(ttl.Seconds()),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	}

	return store
}

// GenerateSessionKey - random signing key for deployments without a configured one.
func GenerateSessionKey() ([]byte, error) {
	key := securecookie.GenerateRandomKey(sessionKeyLen)
	if key == nil {
		return nil, fmt.Errorf("failed to generate session key")
	}

	return key, nil
}

// SessionID returns the game session id kept in sess. A new id is stored when there is none,
// in that case created is true and the session must be saved.
func SessionID(sess *sessions.Session) (id string, created bool) {
	if stored, ok := sess.Values[sessionIDKey].(string); ok && stored != "" {
		return stored, false
	}

	id = GenerateNewSessionID()
	sess.Values[sessionIDKey] = id

	return id, true
}
