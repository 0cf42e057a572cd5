package state

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"cordial/internal/crm"
)

func TestStoreRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "state.json")
	store := NewStore(path)

	tokens := crm.StoredTokens{
		Access:    "acc",
		Refresh:   "ref",
		ExpiresAt: time.Now().Add(30 * time.Minute).UTC().Truncate(time.Second),
	}
	user := &crm.User{ID: "u-1", Email: "ada@example.com", FullName: "Ada Lovelace"}

	if err := store.SetSession(tokens, user); err != nil {
		t.Fatalf("SetSession: %v", err)
	}
	if err := store.SetCurrentOrgID("org-1"); err != nil {
		t.Fatalf("SetCurrentOrgID: %v", err)
	}

	// A fresh store reading the same file sees everything back.
	reread := NewStore(path)
	got, err := reread.Tokens()
	if err != nil {
		t.Fatalf("Tokens: %v", err)
	}
	if got.Access != "acc" || got.Refresh != "ref" {
		t.Errorf("unexpected tokens: %+v", got)
	}
	if !got.ExpiresAt.Equal(tokens.ExpiresAt) {
		t.Errorf("expiry changed across reload: %v != %v", got.ExpiresAt, tokens.ExpiresAt)
	}

	gotUser, err := reread.User()
	if err != nil {
		t.Fatalf("User: %v", err)
	}
	if gotUser == nil || gotUser.Email != "ada@example.com" {
		t.Errorf("unexpected user: %+v", gotUser)
	}
	if id := reread.CurrentOrgID(); id != "org-1" {
		t.Errorf("unexpected org pointer: %q", id)
	}
}

func TestMissingFileIsEmptyState(t *testing.T) {
	store := NewStore(filepath.Join(t.TempDir(), "state.json"))

	tokens, err := store.Tokens()
	if err != nil {
		t.Fatalf("Tokens on missing file: %v", err)
	}
	if tokens.Access != "" || tokens.Refresh != "" {
		t.Errorf("expected empty tokens, got %+v", tokens)
	}
	if id := store.CurrentOrgID(); id != "" {
		t.Errorf("expected empty org pointer, got %q", id)
	}
	user, err := store.User()
	if err != nil {
		t.Fatalf("User on missing file: %v", err)
	}
	if user != nil {
		t.Errorf("expected nil user, got %+v", user)
	}
}

func TestClearSessionDropsEverything(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state.json")
	store := NewStore(path)

	if err := store.SetSession(crm.StoredTokens{Access: "acc", Refresh: "ref"}, &crm.User{ID: "u-1"}); err != nil {
		t.Fatalf("SetSession: %v", err)
	}
	if err := store.SetCurrentOrgID("org-1"); err != nil {
		t.Fatalf("SetCurrentOrgID: %v", err)
	}

	if err := store.ClearSession(); err != nil {
		t.Fatalf("ClearSession: %v", err)
	}

	tokens, _ := store.Tokens()
	if tokens.Access != "" || tokens.Refresh != "" {
		t.Errorf("tokens survived clear: %+v", tokens)
	}
	if user, _ := store.User(); user != nil {
		t.Errorf("user survived clear: %+v", user)
	}
	if id := store.CurrentOrgID(); id != "" {
		t.Errorf("org pointer survived clear: %q", id)
	}
}

func TestStateFilePermissions(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state.json")
	store := NewStore(path)

	if err := store.SetTokens(crm.StoredTokens{Access: "acc", Refresh: "ref"}); err != nil {
		t.Fatalf("SetTokens: %v", err)
	}

	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("Stat: %v", err)
	}
	if perm := info.Mode().Perm(); perm != 0600 {
		t.Errorf("state file mode = %o, want 0600", perm)
	}
}
