package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/dollaghosh1/wbpower-project/internal/apperr"
	"github.com/dollaghosh1/wbpower-project/internal/models"
)

// RecordRepo runs CRUD against any dynamic table. Callers pass the table's
// columns so results can be typed without another schema lookup.
type RecordRepo struct {
	db *sql.DB
}

func NewRecordRepo(db *sql.DB) *RecordRepo {
	return &RecordRepo{db: db}
}

// Insert writes one row with the given column values and returns its id.
func (r *RecordRepo) Insert(ctx context.Context, table string, values models.Record) (int64, error) {
	keys := values.Keys()
	var stmt string
	if len(keys) == 0 {
		stmt = "INSERT INTO " + quoteIdent(table) + " DEFAULT VALUES"
	} else {
		stmt = "INSERT INTO " + quoteIdent(table) + " (" + quoteAll(keys) + ") VALUES (" + placeholders(len(keys)) + ")"
	}
	res, err := r.db.ExecContext(ctx, stmt, args(values, keys)...)
	if err != nil {
		return 0, apperr.Storage("insert into "+table, err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, apperr.Storage("insert into "+table, err)
	}
	return id, nil
}

// Update sets only the given columns on row id.
func (r *RecordRepo) Update(ctx context.Context, table string, id int64, values models.Record) error {
	keys := values.Keys()
	if len(keys) == 0 {
		return nil
	}
	sets := make([]string, len(keys))
	for i, k := range keys {
		sets[i] = quoteIdent(k) + " = ?"
	}
	stmt := "UPDATE " + quoteIdent(table) + " SET " + strings.Join(sets, ", ") + " WHERE " + quoteIdent(models.ColumnID) + " = ?"
	res, err := r.db.ExecContext(ctx, stmt, append(args(values, keys), id)...)
	if err != nil {
		return apperr.Storage("update "+table, err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return apperr.NotFound("record %d in %s", id, table)
	}
	return nil
}

// FindAll returns every row, newest id first.
func (r *RecordRepo) FindAll(ctx context.Context, table string, cols []models.Column) ([]models.Record, error) {
	stmt := "SELECT " + quoteAll(columnNames(cols)) + " FROM " + quoteIdent(table) +
		" ORDER BY " + quoteIdent(models.ColumnID) + " DESC"
	rows, err := r.db.QueryContext(ctx, stmt)
	if err != nil {
		return nil, apperr.Storage("select from "+table, err)
	}
	recs, err := scanRecords(rows, cols)
	if err != nil {
		return nil, apperr.Storage("select from "+table, err)
	}
	return recs, nil
}

func (r *RecordRepo) FindByID(ctx context.Context, table string, id int64, cols []models.Column) (models.Record, error) {
	stmt := "SELECT " + quoteAll(columnNames(cols)) + " FROM " + quoteIdent(table) +
		" WHERE " + quoteIdent(models.ColumnID) + " = ?"
	rows, err := r.db.QueryContext(ctx, stmt, id)
	if err != nil {
		return models.Record{}, apperr.Storage("select from "+table, err)
	}
	recs, err := scanRecords(rows, cols)
	if err != nil {
		return models.Record{}, apperr.Storage("select from "+table, err)
	}
	if len(recs) == 0 {
		return models.Record{}, apperr.NotFound("record %d in %s", id, table)
	}
	return recs[0], nil
}

func (r *RecordRepo) Exists(ctx context.Context, table string, id int64) (bool, error) {
	var one int
	err := r.db.QueryRowContext(ctx,
		"SELECT 1 FROM "+quoteIdent(table)+" WHERE "+quoteIdent(models.ColumnID)+" = ?", id).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, apperr.Storage("select from "+table, err)
	}
	return true, nil
}

func (r *RecordRepo) Delete(ctx context.Context, table string, id int64) error {
	res, err := r.db.ExecContext(ctx,
		"DELETE FROM "+quoteIdent(table)+" WHERE "+quoteIdent(models.ColumnID)+" = ?", id)
	if err != nil {
		return apperr.Storage("delete from "+table, err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return apperr.NotFound("record %d in %s", id, table)
	}
	return nil
}

func (r *RecordRepo) Count(ctx context.Context, table string) (int, error) {
	var n int
	if err := r.db.QueryRowContext(ctx, "SELECT count(*) FROM "+quoteIdent(table)).Scan(&n); err != nil {
		return 0, apperr.Storage("count "+table, err)
	}
	return n, nil
}

func columnNames(cols []models.Column) []string {
	names := make([]string, len(cols))
	for i, c := range cols {
		names[i] = c.Name
	}
	return names
}

func placeholders(n int) string {
	return strings.TrimSuffix(strings.Repeat("?, ", n), ", ")
}

func args(values models.Record, keys []string) []any {
	out := make([]any, len(keys))
	for i, k := range keys {
		out[i], _ = values.Get(k)
	}
	return out
}
