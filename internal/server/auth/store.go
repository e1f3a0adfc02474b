package auth

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/dmitrijs2005/loanportal/internal/common"
	"github.com/dmitrijs2005/loanportal/internal/server/models"
	"github.com/dmitrijs2005/loanportal/internal/server/repositories/sessions"
	gsessions "github.com/gorilla/sessions"
	"github.com/jonboulle/clockwork"
)

// UserIDKey is the session value holding the authenticated principal id.
const UserIDKey = "user_id"

const sessionIDBytes = 32

// ServerStore is a gorilla/sessions Store that keeps session state on the
// server. The cookie carries only a signed token naming the session id.
//
// Only authenticated sessions are persisted: a session without UserIDKey is
// never written and produces no cookie.
type ServerStore struct {
	repo    sessions.Repository
	codec   *TokenCodec
	clock   clockwork.Clock
	Options *gsessions.Options
}

func NewServerStore(repo sessions.Repository, codec *TokenCodec, clock clockwork.Clock, opts *gsessions.Options) *ServerStore {
	return &ServerStore{repo: repo, codec: codec, clock: clock, Options: opts}
}

// Get returns the session for name, cached for the lifetime of the request.
func (s *ServerStore) Get(r *http.Request, name string) (*gsessions.Session, error) {
	return gsessions.GetRegistry(r).Get(s, name)
}

// New loads the session named by the request cookie. A missing, forged or
// expired cookie yields a fresh anonymous session and no error; only backing
// store failures are reported.
func (s *ServerStore) New(r *http.Request, name string) (*gsessions.Session, error) {
	session := gsessions.NewSession(s, name)
	opts := *s.Options
	session.Options = &opts
	session.IsNew = true

	cookie, err := r.Cookie(name)
	if err != nil {
		return session, nil
	}

	sid, err := s.codec.GetSessionIDFromToken(cookie.Value)
	if err != nil {
		return session, nil
	}

	rec, err := s.repo.Get(r.Context(), sid)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return session, nil
		}
		return session, fmt.Errorf("session lookup: %w", err)
	}

	session.ID = rec.ID
	session.Values[UserIDKey] = rec.UserID
	session.IsNew = false
	return session, nil
}

// Save persists an authenticated session and writes its cookie. A negative
// MaxAge destroys the session: the backing record is deleted and the cookie
// expired.
func (s *ServerStore) Save(r *http.Request, w http.ResponseWriter, session *gsessions.Session) error {
	if session.Options.MaxAge < 0 {
		if session.ID != "" {
			if err := s.repo.Delete(r.Context(), session.ID); err != nil {
				return fmt.Errorf("session delete: %w", err)
			}
		}
		session.ID = ""
		http.SetCookie(w, gsessions.NewCookie(session.Name(), "", session.Options))
		return nil
	}

	userID, ok := session.Values[UserIDKey].(int64)
	if !ok {
		return nil
	}

	if session.ID == "" {
		id, err := common.MakeRandHexString(sessionIDBytes)
		if err != nil {
			return fmt.Errorf("session id: %w", err)
		}
		session.ID = id
	}

	expiresAt := s.clock.Now().Add(time.Duration(session.Options.MaxAge) * time.Second)
	if err := s.repo.Save(r.Context(), &models.Session{ID: session.ID, UserID: userID, ExpiresAt: expiresAt}); err != nil {
		return fmt.Errorf("session save: %w", err)
	}

	token, err := s.codec.GenerateToken(session.ID, expiresAt)
	if err != nil {
		return fmt.Errorf("session token: %w", err)
	}

	http.SetCookie(w, gsessions.NewCookie(session.Name(), token, session.Options))
	return nil
}

// Regenerate drops the backing record of session and clears its id so the
// next Save issues a fresh one. Values are kept. Call it on every privilege
// change (login, registration).
func (s *ServerStore) Regenerate(r *http.Request, session *gsessions.Session) error {
	if session.ID != "" {
		if err := s.repo.Delete(r.Context(), session.ID); err != nil {
			return fmt.Errorf("session delete: %w", err)
		}
	}
	session.ID = ""
	session.IsNew = true
	return nil
}

// UserID returns the principal id stored in session, if any.
func UserID(session *gsessions.Session) (int64, bool) {
	id, ok := session.Values[UserIDKey].(int64)
	return id, ok
}
