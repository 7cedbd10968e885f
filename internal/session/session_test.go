package session

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

func TestLoadMissingFile(t *testing.T) {
	s, err := Load(t.TempDir())
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if s.Authenticated() {
		t.Fatal("missing session file should mean logged out")
	}
}

func TestLoadCorruptFile(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "session.json"), []byte("{not json"), 0o600); err != nil {
		t.Fatal(err)
	}
	s, err := Load(dir)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if s.Authenticated() {
		t.Fatal("corrupt session file should mean logged out")
	}
}

func TestSetTokenPersists(t *testing.T) {
	dir := t.TempDir()
	s, err := Load(dir)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if err := s.SetToken("tok-1"); err != nil {
		t.Fatalf("set token: %v", err)
	}

	reloaded, err := Load(dir)
	if err != nil {
		t.Fatalf("reload: %v", err)
	}
	if reloaded.Token() != "tok-1" {
		t.Fatalf("reloaded token = %q", reloaded.Token())
	}
}

func TestInvalidateFiresOnce(t *testing.T) {
	dir := t.TempDir()
	s, err := Load(dir)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if err := s.SetToken("tok-1"); err != nil {
		t.Fatalf("set token: %v", err)
	}
	fired := 0
	s.OnInvalidate = func() { fired++ }

	s.Invalidate()
	s.Invalidate()
	s.Invalidate()

	if fired != 1 {
		t.Fatalf("OnInvalidate fired %d times, want 1", fired)
	}
	if s.Authenticated() {
		t.Fatal("session still authenticated after invalidate")
	}
	if _, err := os.Stat(filepath.Join(dir, "session.json")); !os.IsNotExist(err) {
		t.Fatal("session file should be removed on invalidate")
	}

	// A fresh login re-arms the invalidation side effect.
	if err := s.SetToken("tok-2"); err != nil {
		t.Fatalf("set token: %v", err)
	}
	s.Invalidate()
	if fired != 2 {
		t.Fatalf("OnInvalidate fired %d times after re-login, want 2", fired)
	}
}

func TestExpiresAt(t *testing.T) {
	exp := time.Now().Add(time.Hour).Truncate(time.Second)
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:   "dispatcher",
		ExpiresAt: jwt.NewNumericDate(exp),
	}).SignedString([]byte("secret"))
	if err != nil {
		t.Fatal(err)
	}
	s := &Session{}
	if _, err := s.ExpiresAt(); err == nil {
		t.Fatal("logged-out session should have no expiry")
	}
	if err := s.SetToken(token); err != nil {
		t.Fatalf("set token: %v", err)
	}
	got, err := s.ExpiresAt()
	if err != nil {
		t.Fatalf("expires at: %v", err)
	}
	if !got.Equal(exp) {
		t.Fatalf("expiry = %v, want %v", got, exp)
	}
}
