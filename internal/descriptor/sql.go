package descriptor

import (
	"context"
	"fmt"
	"strings"
	"time"

	"entgo.io/ent/dialect"
	entsql "entgo.io/ent/dialect/sql"

	"github.com/Alijeyrad/wscontext/pkg/epr"
)

// TableName is the table holding endpoint descriptors.
const TableName = "endpoint_descriptors"

const (
	colName           = "name"
	colAddress        = "address"
	colInterfaceNS    = "interface_namespace"
	colInterfaceLocal = "interface_local"
	colServiceNS      = "service_namespace"
	colServiceLocal   = "service_local"
	colEndpointName   = "endpoint_name"
	colDocument       = "document"
	colUpdatedAt      = "updated_at"
)

var columns = []string{
	colName,
	colAddress,
	colInterfaceNS,
	colInterfaceLocal,
	colServiceNS,
	colServiceLocal,
	colEndpointName,
	colDocument,
}

const createTable = `CREATE TABLE IF NOT EXISTS ` + TableName + ` (
	name                TEXT PRIMARY KEY,
	address             TEXT NOT NULL,
	interface_namespace TEXT NOT NULL DEFAULT '',
	interface_local     TEXT NOT NULL DEFAULT '',
	service_namespace   TEXT NOT NULL DEFAULT '',
	service_local       TEXT NOT NULL DEFAULT '',
	endpoint_name       TEXT NOT NULL DEFAULT '',
	document            BYTEA,
	updated_at          TIMESTAMPTZ NOT NULL DEFAULT now()
)`

// SQL stores descriptors in Postgres through an ent driver.
type SQL struct {
	drv dialect.Driver
}

var _ Store = (*SQL)(nil)

// NewSQL returns a store over drv.
func NewSQL(drv dialect.Driver) *SQL {
	return &SQL{drv: drv}
}

func builder() *entsql.DialectBuilder {
	return entsql.Dialect(dialect.Postgres)
}

// EnsureSchema creates the descriptor table if it does not exist.
func (s *SQL) EnsureSchema(ctx context.Context) error {
	if err := s.drv.Exec(ctx, createTable, []any{}, nil); err != nil {
		return fmt.Errorf("create %s: %w", TableName, err)
	}
	return nil
}

// Lookup implements Source.
func (s *SQL) Lookup(ctx context.Context, name string) (*Record, error) {
	query, args := builder().
		Select(columns...).
		From(entsql.Table(TableName)).
		Where(entsql.EQ(colName, name)).
		Query()

	recs, err := s.query(ctx, query, args)
	if err != nil {
		return nil, fmt.Errorf("lookup %s: %w", name, err)
	}
	if len(recs) == 0 {
		return nil, ErrNotFound
	}
	return &recs[0], nil
}

// List returns every stored descriptor ordered by name.
func (s *SQL) List(ctx context.Context) ([]Record, error) {
	query, args := builder().
		Select(columns...).
		From(entsql.Table(TableName)).
		OrderBy(colName).
		Query()

	recs, err := s.query(ctx, query, args)
	if err != nil {
		return nil, fmt.Errorf("list descriptors: %w", err)
	}
	return recs, nil
}

// Upsert inserts rec or replaces the stored row with the same name.
func (s *SQL) Upsert(ctx context.Context, rec Record) error {
	if err := validateName(rec.Name); err != nil {
		return err
	}

	d := rec.Descriptor
	query, args := builder().
		Insert(TableName).
		Columns(append(columns, colUpdatedAt)...).
		Values(
			rec.Name,
			rec.Address,
			d.InterfaceName.Namespace,
			d.InterfaceName.Local,
			d.ServiceName.Namespace,
			d.ServiceName.Local,
			d.EndpointName,
			d.Document,
			time.Now().UTC(),
		).
		OnConflict(
			entsql.ConflictColumns(colName),
			entsql.ResolveWithNewValues(),
		).
		Query()

	if err := s.drv.Exec(ctx, query, args, nil); err != nil {
		return fmt.Errorf("upsert %s: %w", rec.Name, err)
	}
	return nil
}

// Delete removes the descriptor for name. Deleting a missing row is not an error.
func (s *SQL) Delete(ctx context.Context, name string) error {
	query, args := builder().
		Delete(TableName).
		Where(entsql.EQ(colName, name)).
		Query()

	if err := s.drv.Exec(ctx, query, args, nil); err != nil {
		return fmt.Errorf("delete %s: %w", name, err)
	}
	return nil
}

func (s *SQL) query(ctx context.Context, query string, args []any) ([]Record, error) {
	var rows entsql.Rows
	if err := s.drv.Query(ctx, query, args, &rows); err != nil {
		return nil, err
	}
	defer rows.Close()

	var recs []Record
	for rows.Next() {
		var (
			rec Record
			d   epr.Descriptor
		)
		if err := rows.Scan(
			&rec.Name,
			&rec.Address,
			&d.InterfaceName.Namespace,
			&d.InterfaceName.Local,
			&d.ServiceName.Namespace,
			&d.ServiceName.Local,
			&d.EndpointName,
			&d.Document,
		); err != nil {
			return nil, err
		}
		rec.Descriptor = d
		recs = append(recs, rec)
	}
	return recs, rows.Err()
}

func validateName(name string) error {
	if name == "" || strings.ContainsAny(name, "/. \t") {
		return fmt.Errorf("%w: %q", ErrInvalidName, name)
	}
	return nil
}
