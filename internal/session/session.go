// Package session holds the dispatcher's authentication state. The session
// is an explicit object handed to the API client; nothing here relies on
// ambient globals.
package session

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const fileName = "session.json"

// Session is the persisted login state for a workspace. The zero value is a
// logged-out in-memory session.
type Session struct {
	path  string
	token string
	// invalidated latches so the logout side effect fires once per session
	// no matter how many concurrent requests hit a 401.
	invalidated bool

	// OnInvalidate, when set, runs the first time the session is
	// invalidated (forced logout).
	OnInvalidate func()
}

type sessionFile struct {
	AccessToken string `json:"access_token"`
}

// Load reads the session persisted in the workspace directory. A missing
// file yields a logged-out session, not an error.
func Load(workspaceDir string) (*Session, error) {
	s := &Session{path: filepath.Join(workspaceDir, fileName)}
	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return s, nil
		}
		return nil, err
	}
	var f sessionFile
	if err := json.Unmarshal(data, &f); err != nil {
		// A corrupt session file is treated as logged out.
		return s, nil
	}
	s.token = f.AccessToken
	return s, nil
}

// Token returns the current bearer token, empty when logged out.
func (s *Session) Token() string { return s.token }

// Authenticated reports whether a token is present.
func (s *Session) Authenticated() bool { return s.token != "" }

// SetToken stores a fresh token, re-arms invalidation, and persists the
// session when the workspace is known.
func (s *Session) SetToken(token string) error {
	s.token = token
	s.invalidated = false
	if s.path == "" {
		return nil
	}
	data, err := json.Marshal(sessionFile{AccessToken: token})
	if err != nil {
		return err
	}
	return os.WriteFile(s.path, data, 0o600)
}

// Invalidate drops the token and removes the persisted session. The side
// effect (including OnInvalidate) runs at most once until a new token is
// set.
func (s *Session) Invalidate() {
	if s.invalidated {
		return
	}
	s.invalidated = true
	s.token = ""
	if s.path != "" {
		_ = os.Remove(s.path)
	}
	if s.OnInvalidate != nil {
		s.OnInvalidate()
	}
}

// ExpiresAt peeks at the token's exp claim without verifying the signature;
// the client has no key material, the claim is advisory only.
func (s *Session) ExpiresAt() (time.Time, error) {
	if s.token == "" {
		return time.Time{}, errors.New("not authenticated")
	}
	claims := jwt.RegisteredClaims{}
	parser := jwt.NewParser()
	if _, _, err := parser.ParseUnverified(s.token, &claims); err != nil {
		return time.Time{}, err
	}
	if claims.ExpiresAt == nil {
		return time.Time{}, errors.New("token has no exp claim")
	}
	return claims.ExpiresAt.Time, nil
}
