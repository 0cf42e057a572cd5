// Package orgs tracks the active organization: which tenant the client
// is acting in, the caller's role there, and how that choice survives
// restarts and membership changes.
package orgs

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/rs/zerolog/log"

	"cordial/internal/crm"
	"cordial/internal/platform/state"
)

// ErrNoOrganizations is reported when the account has no active
// memberships at all. Callers surface it instead of defaulting silently.
var ErrNoOrganizations = errors.New("no organizations: this account has no active memberships")

// NotMemberError is returned when a switch targets an organization the
// caller does not belong to.
type NotMemberError struct {
	Target string
}

func (e *NotMemberError) Error() string {
	return fmt.Sprintf("not a member of organization %q", e.Target)
}

// Active is the resolved organization context: the org snapshot plus the
// caller's membership in it.
type Active struct {
	Org          crm.Organization
	Role         crm.Role
	MembershipID string
}

// Context resolves, validates and switches the active organization. The
// persisted pointer and the in-memory snapshot always change together
// under one lock, so readers never observe a half-applied switch.
type Context struct {
	client *crm.Client
	store  *state.Store

	mu       sync.RWMutex
	current  *Active
	onSwitch []func()
}

func NewContext(client *crm.Client, store *state.Store) *Context {
	return &Context{client: client, store: store}
}

// CurrentOrgID feeds the client's organization header. Before Resolve has
// run it falls back to the persisted pointer, mirroring how a reloaded
// SPA keeps acting in its last organization.
func (c *Context) CurrentOrgID() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.current != nil {
		return c.current.Org.ID
	}
	return c.store.CurrentOrgID()
}

// Current returns the resolved context, or nil before Resolve.
func (c *Context) Current() *Active {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.current
}

// Resolve fetches the caller's memberships and establishes the active
// organization: the persisted pointer when it is still a live membership,
// otherwise the first membership. Zero memberships is a typed error, not
// a crash or a silent default. Once established, repeated calls return
// the same context; Switch and Forget are the only ways to move it.
func (c *Context) Resolve(ctx context.Context) (*Active, error) {
	if cur := c.Current(); cur != nil {
		return cur, nil
	}

	memberships, err := c.client.Organizations.List(ctx)
	if err != nil {
		return nil, err
	}
	if len(memberships) == 0 {
		return nil, ErrNoOrganizations
	}

	persisted := c.store.CurrentOrgID()
	chosen := memberships[0]
	found := false
	for _, m := range memberships {
		if m.OrganizationID == persisted {
			chosen = m
			found = true
			break
		}
	}
	if persisted != "" && !found {
		log.Info().
			Str("persisted_org_id", persisted).
			Str("fallback_org_id", chosen.OrganizationID).
			Msg("persisted organization no longer available, falling back")
	}

	return c.activate(ctx, chosen)
}

// Switch re-validates membership in the target (matched by id or slug),
// fetches its details and commits pointer and snapshot atomically.
func (c *Context) Switch(ctx context.Context, idOrSlug string) (*Active, error) {
	memberships, err := c.client.Organizations.List(ctx)
	if err != nil {
		return nil, err
	}
	if len(memberships) == 0 {
		return nil, ErrNoOrganizations
	}

	for _, m := range memberships {
		if m.OrganizationID == idOrSlug || m.OrganizationSlug == idOrSlug {
			return c.activate(ctx, m)
		}
	}
	return nil, &NotMemberError{Target: idOrSlug}
}

func (c *Context) activate(ctx context.Context, m crm.OrganizationMembership) (*Active, error) {
	org, err := c.client.Organizations.Get(ctx, m.OrganizationID)
	if err != nil {
		return nil, err
	}

	active := &Active{Org: *org, Role: m.Role, MembershipID: m.ID}

	c.mu.Lock()
	changed := c.current == nil || c.current.Org.ID != active.Org.ID
	if err := c.store.SetCurrentOrgID(active.Org.ID); err != nil {
		c.mu.Unlock()
		return nil, err
	}
	c.current = active
	hooks := append([]func(){}, c.onSwitch...)
	c.mu.Unlock()

	if changed {
		log.Info().Str("org_id", active.Org.ID).Str("org", active.Org.Name).Msg("active organization set")
		for _, fn := range hooks {
			fn()
		}
	}
	return active, nil
}

// Forget drops the resolved context so the next Resolve refetches the
// membership list. Used after operations that may have removed the
// caller from the active organization.
func (c *Context) Forget() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.current = nil
}

// OnSwitch registers a hook invoked after the active organization
// changes. View loaders register their invalidation here so in-flight
// fetches for the previous organization are discarded.
func (c *Context) OnSwitch(fn func()) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.onSwitch = append(c.onSwitch, fn)
}

// RequireRole checks the caller's role in the active organization
// against a minimum. The server stays authoritative; this only produces
// friendlier errors before a doomed request.
func (c *Context) RequireRole(min crm.Role) error {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.current == nil {
		return errors.New("no active organization")
	}
	if !c.current.Role.AtLeast(min) {
		return fmt.Errorf("requires %s role or above (you are %s)", min, c.current.Role)
	}
	return nil
}
