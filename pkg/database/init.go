package database

import (
	"context"
	"fmt"

	"entgo.io/ent/dialect"
	entsql "entgo.io/ent/dialect/sql"
	"github.com/lib/pq"

	"github.com/Alijeyrad/wscontext/config"
)

// InitializeDatabases creates the descriptor and Casbin databases, plus any
// listed under server.databases, when they don't exist. It connects to the
// server's "postgres" maintenance database to do so.
func InitializeDatabases(ctx context.Context, cfg *config.Config) error {
	names := databaseNames(cfg)
	if len(names) == 0 {
		return fmt.Errorf("no database names configured")
	}

	db, err := open(FromCentralConfig(cfg.Database).withDB("postgres"))
	if err != nil {
		return err
	}
	drv := entsql.OpenDB(dialect.Postgres, db)
	defer drv.Close()

	for _, name := range names {
		if err := createDatabase(ctx, drv, name); err != nil {
			return fmt.Errorf("create database %q: %w", name, err)
		}
	}
	return nil
}

// databaseNames lists every configured database once, in config order.
func databaseNames(cfg *config.Config) []string {
	seen := make(map[string]struct{})
	var out []string
	add := func(name string) {
		if name == "" {
			return
		}
		if _, ok := seen[name]; ok {
			return
		}
		seen[name] = struct{}{}
		out = append(out, name)
	}

	add(cfg.Database.DBName)
	add(cfg.CasbinDatabase.DBName)
	for _, name := range cfg.Server.Databases {
		add(name)
	}
	return out
}

func createDatabase(ctx context.Context, drv dialect.Driver, name string) error {
	rows := &entsql.Rows{}
	err := drv.Query(ctx, `SELECT EXISTS(SELECT 1 FROM pg_database WHERE datname = $1)`, []any{name}, rows)
	if err != nil {
		return err
	}
	var exists bool
	if rows.Next() {
		err = rows.Scan(&exists)
	}
	if cerr := rows.Close(); err == nil {
		err = cerr
	}
	if err != nil || exists {
		return err
	}

	// CREATE DATABASE takes no bind parameters.
	return drv.Exec(ctx, "CREATE DATABASE "+pq.QuoteIdentifier(name), []any{}, nil)
}
