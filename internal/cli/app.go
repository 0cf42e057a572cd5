package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os/exec"
	"runtime"

	"github.com/rs/zerolog/log"

	"cordial/internal/crm"
	"cordial/internal/engine/orgs"
	"cordial/internal/engine/session"
	"cordial/internal/platform/cache"
	"cordial/internal/platform/config"
)

// App carries everything commands need. Cache may be nil when disabled.
type App struct {
	Config  *config.Config
	Client  *crm.Client
	Session *session.Manager
	Orgs    *orgs.Context
	Cache   *cache.Store
	Out     io.Writer
}

// requireOrg resolves the active organization, translating the empty
// case into actionable guidance.
func (a *App) requireOrg(ctx context.Context) (*orgs.Active, error) {
	active, err := a.Orgs.Resolve(ctx)
	if err != nil {
		if errors.Is(err, orgs.ErrNoOrganizations) {
			return nil, errors.New("you belong to no organizations; create one with 'cordial org create' or accept an invite")
		}
		return nil, err
	}
	return active, nil
}

// listWithFallback runs a list fetch and handles the degradation rules:
// success writes through to the cache, transport failure falls back to
// an unexpired snapshot, and with neither the caller gets an empty list.
// The returned flag marks a stale (cached) result. List operations never
// propagate transport errors.
func listWithFallback[T any](a *App, orgID, resource string, fetch func() ([]T, error)) ([]T, bool, error) {
	items, err := fetch()
	if err == nil {
		if a.Cache != nil {
			if payload, merr := json.Marshal(items); merr == nil {
				if cerr := a.Cache.Put(orgID, resource, payload); cerr != nil {
					log.Warn().Err(cerr).Str("resource", resource).Msg("cache write failed")
				}
			}
		}
		return items, false, nil
	}

	if !crm.IsTransport(err) {
		return nil, false, err
	}

	log.Warn().Err(err).Str("resource", resource).Msg("backend unreachable, trying cache")
	if a.Cache != nil {
		payload, _, ok, cerr := a.Cache.Get(orgID, resource)
		if cerr != nil {
			log.Warn().Err(cerr).Str("resource", resource).Msg("cache read failed")
		} else if ok {
			var cached []T
			if jerr := json.Unmarshal(payload, &cached); jerr == nil {
				return cached, true, nil
			}
		}
	}
	return nil, false, nil
}

// openBrowser hands a URL to the platform opener.
func openBrowser(url string) error {
	switch runtime.GOOS {
	case "darwin":
		return exec.Command("open", url).Start()
	case "windows":
		return exec.Command("rundll32", "url.dll,FileProtocolHandler", url).Start()
	default:
		return exec.Command("xdg-open", url).Start()
	}
}

// friendlyError rewrites API errors for terminal display, expanding
// validation details into per-field lines.
func friendlyError(err error) error {
	var apiErr *crm.APIError
	if !errors.As(err, &apiErr) {
		return err
	}
	if len(apiErr.Fields) == 0 {
		return fmt.Errorf("%s (status %d)", apiErr.Detail, apiErr.Status)
	}

	msg := "validation failed:"
	for _, f := range apiErr.Fields {
		msg += fmt.Sprintf("\n  %s: %s", f.Field(), f.Msg)
	}
	return errors.New(msg)
}
