package kvstore

import (
	"context"
	"database/sql"
	"fmt"

	"adminboard/internal/config"
	"adminboard/pkg/utils"

	_ "github.com/jackc/pgx/v5/stdlib"
	_ "github.com/mattn/go-sqlite3"
)

// Opened is a configured store plus the resource that must be closed on shutdown.
type Opened struct {
	Store Store
	close func() error
}

func (o Opened) Close() error {
	if o.close == nil {
		return nil
	}
	return o.close()
}

// Open builds the backend named by cfg.Store.Driver. SQL backends are migrated.
// A non-nil db is reused for the postgres driver instead of opening a new pool.
func Open(ctx context.Context, cfg config.Config, db *sql.DB) (Opened, error) {
	switch cfg.Store.Driver {
	case config.StoreMemory, "":
		return Opened{Store: NewMemory()}, nil

	case config.StoreFile:
		f, err := OpenFile(cfg.Store.Path)
		if err != nil {
			return Opened{}, err
		}
		return Opened{Store: f}, nil

	case config.StoreSQLite:
		sdb, err := utils.OpenSQLite(ctx, cfg.Store.Path)
		if err != nil {
			return Opened{}, err
		}
		s := NewSQL(sdb, DialectSQLite)
		if err := s.Migrate(ctx); err != nil {
			_ = sdb.Close()
			return Opened{}, fmt.Errorf("kvstore: migrate sqlite: %w", err)
		}
		return Opened{Store: s, close: sdb.Close}, nil

	case config.StorePostgres:
		var closeFn func() error
		if db == nil {
			pdb, err := utils.OpenPostgres(ctx, cfg.PostgresDSN(), utils.PoolConfig{})
			if err != nil {
				return Opened{}, err
			}
			db, closeFn = pdb, pdb.Close
		}
		s := NewSQL(db, DialectPostgres)
		if err := s.Migrate(ctx); err != nil {
			if closeFn != nil {
				_ = closeFn()
			}
			return Opened{}, fmt.Errorf("kvstore: migrate postgres: %w", err)
		}
		return Opened{Store: s, close: closeFn}, nil

	case config.StoreRedis:
		rdb, err := utils.OpenRedis(ctx, utils.RedisConfig{Addr: cfg.RedisAddr(), Password: cfg.Redis.Password})
		if err != nil {
			return Opened{}, err
		}
		return Opened{Store: NewRedis(rdb, cfg.Redis.Prefix), close: rdb.Close}, nil

	default:
		return Opened{}, fmt.Errorf("kvstore: unknown driver %q", cfg.Store.Driver)
	}
}
