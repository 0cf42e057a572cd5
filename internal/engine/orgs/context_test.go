package orgs

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"cordial/internal/crm"
	"cordial/internal/crmtest"
	"cordial/internal/platform/state"
)

func newContext(t *testing.T, srv *crmtest.Server) (*Context, *state.Store) {
	t.Helper()
	store := state.NewStore(filepath.Join(t.TempDir(), "state.json"))
	client, err := crm.NewClient(srv.URL, store, nil)
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}

	access, refresh := srv.IssueSession()
	if err := store.SetTokens(crm.StoredTokens{Access: access, Refresh: refresh}); err != nil {
		t.Fatalf("SetTokens: %v", err)
	}

	octx := NewContext(client, store)
	client.SetOrgSource(octx.CurrentOrgID)
	return octx, store
}

func TestResolveNoOrganizations(t *testing.T) {
	srv := crmtest.NewServer()
	defer srv.Close()

	octx, _ := newContext(t, srv)
	if _, err := octx.Resolve(context.Background()); !errors.Is(err, ErrNoOrganizations) {
		t.Fatalf("expected ErrNoOrganizations, got %v", err)
	}
	if octx.Current() != nil {
		t.Error("Current() set despite no memberships")
	}
}

func TestResolvePrefersPersistedPointer(t *testing.T) {
	srv := crmtest.NewServer()
	defer srv.Close()
	srv.AddOrg("org-1", "acme", "Acme Inc", crm.RoleAdmin)
	srv.AddOrg("org-2", "globex", "Globex", crm.RoleViewer)

	octx, store := newContext(t, srv)
	if err := store.SetCurrentOrgID("org-2"); err != nil {
		t.Fatalf("SetCurrentOrgID: %v", err)
	}

	active, err := octx.Resolve(context.Background())
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if active.Org.ID != "org-2" {
		t.Errorf("resolved %q, want persisted org-2", active.Org.ID)
	}
	if active.Role != crm.RoleViewer {
		t.Errorf("role %q, want viewer", active.Role)
	}
}

func TestResolveFallsBackWhenPointerIsStale(t *testing.T) {
	srv := crmtest.NewServer()
	defer srv.Close()
	srv.AddOrg("org-1", "acme", "Acme Inc", crm.RoleAdmin)

	octx, store := newContext(t, srv)
	if err := store.SetCurrentOrgID("org-gone"); err != nil {
		t.Fatalf("SetCurrentOrgID: %v", err)
	}

	active, err := octx.Resolve(context.Background())
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if active.Org.ID != "org-1" {
		t.Errorf("resolved %q, want fallback org-1", active.Org.ID)
	}
	if got := store.CurrentOrgID(); got != "org-1" {
		t.Errorf("persisted pointer %q not updated to fallback", got)
	}
}

func TestResolveEstablishesOnce(t *testing.T) {
	srv := crmtest.NewServer()
	srv.AddOrg("org-1", "acme", "Acme Inc", crm.RoleAdmin)

	octx, _ := newContext(t, srv)
	first, err := octx.Resolve(context.Background())
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}

	// Once established the context survives the backend going away.
	srv.Close()
	again, err := octx.Resolve(context.Background())
	if err != nil {
		t.Fatalf("repeated Resolve: %v", err)
	}
	if again.Org.ID != first.Org.ID {
		t.Errorf("context moved between resolves: %q != %q", again.Org.ID, first.Org.ID)
	}

	// Forget drops it, so the next Resolve needs the network again.
	octx.Forget()
	if octx.Current() != nil {
		t.Error("Current() set after Forget")
	}
	if _, err := octx.Resolve(context.Background()); err == nil {
		t.Error("Resolve succeeded offline after Forget")
	}
}

func TestSwitchByIDAndSlug(t *testing.T) {
	srv := crmtest.NewServer()
	defer srv.Close()
	srv.AddOrg("org-1", "acme", "Acme Inc", crm.RoleAdmin)
	srv.AddOrg("org-2", "globex", "Globex", crm.RoleEditor)

	octx, store := newContext(t, srv)
	ctx := context.Background()

	active, err := octx.Switch(ctx, "globex")
	if err != nil {
		t.Fatalf("Switch by slug: %v", err)
	}
	if active.Org.ID != "org-2" {
		t.Errorf("switched to %q, want org-2", active.Org.ID)
	}
	if store.CurrentOrgID() != "org-2" {
		t.Error("pointer not persisted on switch")
	}

	active, err = octx.Switch(ctx, "org-1")
	if err != nil {
		t.Fatalf("Switch by id: %v", err)
	}
	if active.Org.ID != "org-1" {
		t.Errorf("switched to %q, want org-1", active.Org.ID)
	}
	if octx.CurrentOrgID() != "org-1" {
		t.Error("CurrentOrgID() lags behind switch")
	}
}

func TestSwitchRejectsNonMembership(t *testing.T) {
	srv := crmtest.NewServer()
	defer srv.Close()
	srv.AddOrg("org-1", "acme", "Acme Inc", crm.RoleAdmin)

	octx, store := newContext(t, srv)
	if _, err := octx.Resolve(context.Background()); err != nil {
		t.Fatalf("Resolve: %v", err)
	}

	_, err := octx.Switch(context.Background(), "intruder")
	var notMember *NotMemberError
	if !errors.As(err, &notMember) {
		t.Fatalf("expected NotMemberError, got %v", err)
	}
	if notMember.Target != "intruder" {
		t.Errorf("error target %q", notMember.Target)
	}

	// A failed switch leaves pointer and snapshot untouched.
	if store.CurrentOrgID() != "org-1" {
		t.Errorf("pointer moved to %q after failed switch", store.CurrentOrgID())
	}
	if octx.Current().Org.ID != "org-1" {
		t.Error("active snapshot moved after failed switch")
	}
}

func TestOnSwitchHooksFireOnChange(t *testing.T) {
	srv := crmtest.NewServer()
	defer srv.Close()
	srv.AddOrg("org-1", "acme", "Acme Inc", crm.RoleAdmin)
	srv.AddOrg("org-2", "globex", "Globex", crm.RoleViewer)

	octx, _ := newContext(t, srv)
	loader := NewLoader()
	octx.OnSwitch(loader.Invalidate)

	ctx := context.Background()
	if _, err := octx.Resolve(ctx); err != nil {
		t.Fatalf("Resolve: %v", err)
	}

	// A load begun in the old organization must not commit after a
	// switch retires it.
	gen := loader.Begin()
	if _, err := octx.Switch(ctx, "org-2"); err != nil {
		t.Fatalf("Switch: %v", err)
	}
	if loader.Commit(gen, func() { t.Error("stale load committed") }) {
		t.Error("Commit reported success for a retired generation")
	}

	// Switching to the already-active organization fires nothing.
	gen = loader.Begin()
	if _, err := octx.Switch(ctx, "org-2"); err != nil {
		t.Fatalf("Switch (same org): %v", err)
	}
	applied := false
	if !loader.Commit(gen, func() { applied = true }) || !applied {
		t.Error("load retired by a no-op switch")
	}
}

func TestRequireRole(t *testing.T) {
	srv := crmtest.NewServer()
	defer srv.Close()
	srv.AddOrg("org-1", "acme", "Acme Inc", crm.RoleEditor)

	octx, _ := newContext(t, srv)
	if err := octx.RequireRole(crm.RoleViewer); err == nil {
		t.Error("RequireRole passed before Resolve")
	}

	if _, err := octx.Resolve(context.Background()); err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if err := octx.RequireRole(crm.RoleEditor); err != nil {
		t.Errorf("editor check failed for editor: %v", err)
	}
	if err := octx.RequireRole(crm.RoleAdmin); err == nil {
		t.Error("admin check passed for editor")
	}
}
