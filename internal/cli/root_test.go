package cli

import (
	"bytes"
	"context"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"cordial/internal/crm"
	"cordial/internal/crmtest"
	"cordial/internal/engine/orgs"
	"cordial/internal/engine/session"
	"cordial/internal/platform/cache"
	"cordial/internal/platform/config"
	"cordial/internal/platform/state"
)

func newTestApp(t *testing.T, srv *crmtest.Server) (*App, *bytes.Buffer) {
	t.Helper()

	store := state.NewStore(filepath.Join(t.TempDir(), "state.json"))
	client, err := crm.NewClient(srv.URL, store, nil)
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}

	snapshots, err := cache.Open(filepath.Join(t.TempDir(), "cache.db"), time.Hour)
	if err != nil {
		t.Fatalf("cache.Open: %v", err)
	}
	t.Cleanup(func() { snapshots.Close() })

	octx := orgs.NewContext(client, store)
	client.SetOrgSource(octx.CurrentOrgID)

	var out bytes.Buffer
	app := &App{
		Config:  &config.Config{},
		Client:  client,
		Session: session.NewManager(client, store),
		Orgs:    octx,
		Cache:   snapshots,
		Out:     &out,
	}
	return app, &out
}

func run(t *testing.T, app *App, args ...string) error {
	t.Helper()
	return NewRootCommand(app).Execute(context.Background(), args)
}

func mustRun(t *testing.T, app *App, args ...string) {
	t.Helper()
	if err := run(t, app, args...); err != nil {
		t.Fatalf("%v: %v", args, err)
	}
}

func login(t *testing.T, app *App, srv *crmtest.Server) {
	t.Helper()
	email, password := srv.Credentials()
	mustRun(t, app, "login", "-email", email, "-password", password)
}

func TestUnknownCommand(t *testing.T) {
	srv := crmtest.NewServer()
	defer srv.Close()

	app, _ := newTestApp(t, srv)
	err := run(t, app, "frobnicate")
	if err == nil || !strings.Contains(err.Error(), "unknown command") {
		t.Errorf("expected unknown command error, got %v", err)
	}
}

func TestLoginThenWhoami(t *testing.T) {
	srv := crmtest.NewServer()
	defer srv.Close()

	app, out := newTestApp(t, srv)
	login(t, app, srv)
	if !strings.Contains(out.String(), "Logged in as Ada Lovelace") {
		t.Errorf("unexpected login output: %q", out.String())
	}

	out.Reset()
	mustRun(t, app, "whoami")
	if !strings.Contains(out.String(), "ada@example.com") {
		t.Errorf("unexpected whoami output: %q", out.String())
	}
}

func TestLoginValidatesFlags(t *testing.T) {
	srv := crmtest.NewServer()
	defer srv.Close()

	app, _ := newTestApp(t, srv)
	if err := run(t, app, "login", "-email", "ada@example.com"); err == nil {
		t.Error("expected an error when -password is missing")
	}
}

func TestRegisterSurfacesFieldErrors(t *testing.T) {
	srv := crmtest.NewServer()
	defer srv.Close()

	app, _ := newTestApp(t, srv)
	err := run(t, app, "register", "-email", "new@example.com", "-password", "short", "-name", "New User")
	if err == nil {
		t.Fatal("expected validation failure")
	}
	if !strings.Contains(err.Error(), "body.password") {
		t.Errorf("validation error does not name the field: %v", err)
	}
}

func TestOrgListMarksActiveOrganization(t *testing.T) {
	srv := crmtest.NewServer()
	defer srv.Close()
	srv.AddOrg("org-1", "acme", "Acme Inc", crm.RoleAdmin)
	srv.AddOrg("org-2", "globex", "Globex", crm.RoleViewer)

	app, out := newTestApp(t, srv)
	login(t, app, srv)

	out.Reset()
	mustRun(t, app, "org", "switch", "globex")
	out.Reset()
	mustRun(t, app, "org", "list")

	var marked string
	for _, line := range strings.Split(out.String(), "\n") {
		if strings.HasPrefix(line, "*") {
			marked = line
		}
	}
	if !strings.Contains(marked, "Globex") {
		t.Errorf("active organization not marked:\n%s", out.String())
	}
}

func TestContactListFallsBackToCacheOffline(t *testing.T) {
	srv := crmtest.NewServer()
	srv.AddOrg("org-1", "acme", "Acme Inc", crm.RoleEditor)
	srv.SetContacts("org-1", []crm.Contact{
		{ID: "c-1", FirstName: "Grace", LastName: "Hopper", Email: "grace@example.com"},
	})

	app, out := newTestApp(t, srv)
	login(t, app, srv)

	out.Reset()
	mustRun(t, app, "contact", "list")
	if !strings.Contains(out.String(), "grace@example.com") {
		t.Fatalf("live listing missing contact:\n%s", out.String())
	}

	// With the backend gone the cached snapshot still serves the view,
	// flagged as stale. requireOrg must not refetch, so pin the context
	// before closing the server.
	srv.Close()
	out.Reset()
	if err := run(t, app, "contact", "list"); err != nil {
		t.Fatalf("offline contact list: %v", err)
	}
	if !strings.Contains(out.String(), "grace@example.com") {
		t.Errorf("cached contact not shown offline:\n%s", out.String())
	}
	if !strings.Contains(out.String(), "offline") {
		t.Errorf("stale output not flagged:\n%s", out.String())
	}
}

func TestCommandsRequireAnOrganization(t *testing.T) {
	srv := crmtest.NewServer()
	defer srv.Close()

	app, _ := newTestApp(t, srv)
	login(t, app, srv)

	err := run(t, app, "contact", "list")
	if err == nil || !strings.Contains(err.Error(), "cordial org create") {
		t.Errorf("expected guidance toward org create, got %v", err)
	}
}

func TestRoleGateBlocksViewerWrites(t *testing.T) {
	srv := crmtest.NewServer()
	defer srv.Close()
	srv.AddOrg("org-1", "acme", "Acme Inc", crm.RoleViewer)

	app, _ := newTestApp(t, srv)
	login(t, app, srv)

	err := run(t, app, "contact", "create", "-first", "Grace", "-email", "grace@example.com")
	if err == nil || !strings.Contains(err.Error(), "editor") {
		t.Errorf("expected an editor role error, got %v", err)
	}
}

func TestDashboardRendersStats(t *testing.T) {
	srv := crmtest.NewServer()
	defer srv.Close()
	srv.AddOrg("org-1", "acme", "Acme Inc", crm.RoleViewer)

	app, out := newTestApp(t, srv)
	login(t, app, srv)

	out.Reset()
	mustRun(t, app, "dashboard")
	got := out.String()
	for _, want := range []string{"Acme Inc", "pipeline value", "Closed Won"} {
		if !strings.Contains(got, want) {
			t.Errorf("dashboard output missing %q:\n%s", want, got)
		}
	}
}

func TestLogoutClearsSessionAndCache(t *testing.T) {
	srv := crmtest.NewServer()
	defer srv.Close()
	srv.AddOrg("org-1", "acme", "Acme Inc", crm.RoleEditor)
	srv.SetContacts("org-1", []crm.Contact{{ID: "c-1", FirstName: "Grace", Email: "grace@example.com"}})

	app, out := newTestApp(t, srv)
	login(t, app, srv)
	mustRun(t, app, "contact", "list")

	out.Reset()
	mustRun(t, app, "logout")
	if !strings.Contains(out.String(), "Logged out") {
		t.Errorf("unexpected logout output: %q", out.String())
	}
	if app.Session.LoggedIn() {
		t.Error("still logged in after logout")
	}
	if _, _, ok, _ := app.Cache.Get("org-1", "contacts"); ok {
		t.Error("snapshot cache survived logout")
	}
}
