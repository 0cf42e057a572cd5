package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	zlog "github.com/rs/zerolog/log"

	"cordial/internal/cli"
	"cordial/internal/crm"
	"cordial/internal/engine/orgs"
	"cordial/internal/engine/session"
	"cordial/internal/pkg/logger"
	"cordial/internal/platform/cache"
	"cordial/internal/platform/config"
	"cordial/internal/platform/state"
)

func main() {
	configPath := flag.String("config", "", "Path to a config file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logger.Init(cfg.Logging)

	statePath := cfg.State.FilePath
	if statePath == "" {
		statePath, err = state.DefaultPath()
		if err != nil {
			log.Fatalf("Failed to resolve state path: %v", err)
		}
	}
	store := state.NewStore(statePath)

	client, err := crm.NewClient(cfg.API.BaseURL, store, &http.Client{Timeout: cfg.API.Timeout})
	if err != nil {
		log.Fatalf("Failed to build API client: %v", err)
	}

	sess := session.NewManager(client, store)
	octx := orgs.NewContext(client, store)
	client.SetOrgSource(octx.CurrentOrgID)

	var snapshots *cache.Store
	if cfg.Cache.Enabled {
		cachePath := cfg.Cache.FilePath
		if cachePath == "" {
			cachePath = filepath.Join(filepath.Dir(statePath), "cache.db")
		}
		snapshots, err = cache.Open(cachePath, cfg.Cache.TTL)
		if err != nil {
			// A broken cache degrades to live-only reads.
			zlog.Warn().Err(err).Str("path", cachePath).Msg("snapshot cache unavailable")
			snapshots = nil
		} else {
			defer snapshots.Close()
		}
	}

	app := &cli.App{
		Config:  cfg,
		Client:  client,
		Session: sess,
		Orgs:    octx,
		Cache:   snapshots,
		Out:     os.Stdout,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	root := cli.NewRootCommand(app)
	if err := root.Execute(ctx, flag.Args()); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		if snapshots != nil {
			snapshots.Close()
		}
		os.Exit(1)
	}
}
