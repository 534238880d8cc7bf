package store

import (
	"context"

	"github.com/rotisserie/eris"

	"github.com/make-ready-tech/oppintel/internal/config"
)

// Open creates the configured Store backend and runs migrations.
func Open(ctx context.Context, cfg config.StoreConfig) (Store, error) {
	var s Store
	switch cfg.Driver {
	case "postgres":
		ps, err := NewPostgres(ctx, cfg.DatabaseURL, nil)
		if err != nil {
			return nil, err
		}
		s = ps
	case "sqlite", "":
		path := cfg.SQLitePath
		if path == "" {
			path = "oppintel.db"
		}
		ss, err := NewSQLite(path)
		if err != nil {
			return nil, err
		}
		s = ss
	default:
		return nil, eris.Errorf("store: unknown driver %q", cfg.Driver)
	}

	if err := s.Migrate(ctx); err != nil {
		s.Close()
		return nil, err
	}
	return s, nil
}
