package main

import (
	"context"
	"fmt"
	"net/url"
	"sort"
	"strings"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/JonMunkholm/importparser/internal/config"
	"github.com/JonMunkholm/importparser/internal/core"
	"github.com/JonMunkholm/importparser/internal/logging"
	"github.com/JonMunkholm/importparser/internal/registry"
)

// openPool connects to the GeoNature database with the configured pool settings.
func openPool(ctx context.Context, cfg *config.Config) (*pgxpool.Pool, error) {
	if cfg.Database.URL == "" {
		return nil, fmt.Errorf("DATABASE_URL is not set")
	}
	poolConfig, err := pgxpool.ParseConfig(cfg.Database.URL)
	if err != nil {
		return nil, fmt.Errorf("parse database URL: %w", err)
	}
	poolConfig.MaxConns = int32(cfg.Database.MaxConns)
	poolConfig.MinConns = int32(cfg.Database.MinConns)
	poolConfig.MaxConnLifetime = cfg.Database.MaxConnLifetime

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("connect to database: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	logger := logging.FromContext(ctx)
	if u, err := url.Parse(cfg.Database.URL); err == nil {
		logger.Info("connected to database", "name", strings.TrimPrefix(u.Path, "/"))
	} else {
		logger.Info("connected to database")
	}
	return pool, nil
}

func postgresKeys(cfg *config.Config) registry.Keys {
	return registry.Keys{
		DatasetsByUUID:              config.UsesUUID(cfg.Keys.Datasets),
		OrganismsByUUID:             config.UsesUUID(cfg.Keys.Organisms),
		AcquisitionFrameworksByUUID: config.UsesUUID(cfg.Keys.AcquisitionFrameworks),
		UsersByUUID:                 config.UsesUUID(cfg.Keys.Users),
	}
}

// nomenclatureTypes returns the distinct type mnemonics an action file names.
func nomenclatureTypes(columns map[string]string) []string {
	seen := make(map[string]bool, len(columns))
	var types []string
	for _, t := range columns {
		if !seen[t] {
			seen[t] = true
			types = append(types, t)
		}
	}
	sort.Strings(types)
	return types
}

// loadRegistry materializes the domains of rt from the configured source.
func loadRegistry(ctx context.Context, cfg *config.Config, rt core.RecordType, types []string) (*registry.Registry, error) {
	if !rt.NeedsRegistry() {
		return registry.New(), nil
	}

	ctx, cancel := context.WithTimeout(ctx, cfg.Registry.LoadTimeout)
	defer cancel()

	var provider registry.Provider
	switch cfg.Registry.Source {
	case config.SourceSQLite:
		snap, err := registry.OpenSQLite(cfg.Registry.SQLitePath)
		if err != nil {
			return nil, err
		}
		defer func() { _ = snap.Close() }()
		provider = snap
	default:
		pool, err := openPool(ctx, cfg)
		if err != nil {
			return nil, err
		}
		defer pool.Close()
		provider = registry.NewPostgres(pool, postgresKeys(cfg))
	}

	reg, err := registry.Load(ctx, provider, rt.Domains, types)
	if err != nil {
		return nil, err
	}

	logger := logging.FromContext(ctx)
	for _, d := range reg.Domains() {
		logger.Debug("reference codes loaded", "domain", d, "codes", reg.Size(d))
	}
	logger.Info("registry loaded", "source", cfg.Registry.Source, "domains", len(rt.Domains))
	return reg, nil
}
