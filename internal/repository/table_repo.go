package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/dollaghosh1/wbpower-project/internal/apperr"
	"github.com/dollaghosh1/wbpower-project/internal/fieldtype"
	"github.com/dollaghosh1/wbpower-project/internal/models"
)

// TableRepo provisions and introspects dynamic tables. It reads everything
// from the live SQLite schema; there is no separate metadata table.
type TableRepo struct {
	db *sql.DB
}

func NewTableRepo(db *sql.DB) *TableRepo {
	return &TableRepo{db: db}
}

// CreateTable issues a single CREATE TABLE: id, the user fields in order,
// is_active, created_at, updated_at. The statement either creates the whole
// table or nothing.
func (r *TableRepo) CreateTable(ctx context.Context, desc models.TableDescriptor) error {
	stmt := createTableSQL(desc)
	if _, err := r.db.ExecContext(ctx, stmt); err != nil {
		if isAlreadyExists(err) {
			return fmt.Errorf("table %s: %w", desc.TableName, apperr.ErrAlreadyExists)
		}
		return apperr.Storage("create table "+desc.TableName, err)
	}
	return nil
}

func createTableSQL(desc models.TableDescriptor) string {
	defs := make([]string, 0, len(desc.Fields)+4)
	defs = append(defs, quoteIdent(models.ColumnID)+" INTEGER PRIMARY KEY AUTOINCREMENT")
	for _, f := range desc.Fields {
		defs = append(defs, quoteIdent(f.Name)+" "+fieldtype.ToColumn(f.Type).Definition())
	}
	active := fieldtype.Column{Type: fieldtype.ColumnBoolean, Default: "1"}
	stamp := fieldtype.Column{Type: fieldtype.ColumnTimestamp, Nullable: true}
	defs = append(defs,
		quoteIdent(models.ColumnIsActive)+" "+active.Definition(),
		quoteIdent(models.ColumnCreatedAt)+" "+stamp.Definition(),
		quoteIdent(models.ColumnUpdatedAt)+" "+stamp.Definition(),
	)
	return "CREATE TABLE " + quoteIdent(desc.TableName) + " (\n\t" + strings.Join(defs, ",\n\t") + "\n)"
}

// ListTables returns every table whose name starts with prefix, in the
// order SQLite keeps them.
func (r *TableRepo) ListTables(ctx context.Context, prefix string) ([]string, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT name FROM sqlite_master WHERE type = 'table'`)
	if err != nil {
		return nil, apperr.Storage("list tables", err)
	}
	defer rows.Close()
	tables := make([]string, 0)
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, apperr.Storage("list tables", err)
		}
		if strings.HasPrefix(name, prefix) {
			tables = append(tables, name)
		}
	}
	if err := rows.Err(); err != nil {
		return nil, apperr.Storage("list tables", err)
	}
	return tables, nil
}

func (r *TableRepo) Exists(ctx context.Context, table string) (bool, error) {
	var n int
	err := r.db.QueryRowContext(ctx,
		`SELECT count(*) FROM sqlite_master WHERE type = 'table' AND name = ?`, table).Scan(&n)
	if err != nil {
		return false, apperr.Storage("table exists", err)
	}
	return n > 0, nil
}

// Columns lists the table's columns in declaration order.
func (r *TableRepo) Columns(ctx context.Context, table string) ([]models.Column, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT name, type FROM pragma_table_info(?) ORDER BY cid`, table)
	if err != nil {
		return nil, apperr.Storage("describe "+table, err)
	}
	defer rows.Close()
	cols := make([]models.Column, 0)
	for rows.Next() {
		var name, declared string
		if err := rows.Scan(&name, &declared); err != nil {
			return nil, apperr.Storage("describe "+table, err)
		}
		cols = append(cols, models.Column{Name: name, Type: fieldtype.ParseSQLType(declared)})
	}
	if err := rows.Err(); err != nil {
		return nil, apperr.Storage("describe "+table, err)
	}
	if len(cols) == 0 {
		return nil, apperr.NotFound("table %s", table)
	}
	return cols, nil
}
