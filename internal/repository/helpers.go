package repository

import (
	"database/sql"
	"strings"
	"time"

	"github.com/dollaghosh1/wbpower-project/internal/fieldtype"
	"github.com/dollaghosh1/wbpower-project/internal/models"
)

// quoteIdent quotes a table or column name for SQLite. Names reaching the
// repositories are already normalized identifiers; quoting keeps keywords
// such as "order" or "group" usable as field names.
func quoteIdent(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}

func quoteAll(names []string) string {
	q := make([]string, len(names))
	for i, n := range names {
		q[i] = quoteIdent(n)
	}
	return strings.Join(q, ", ")
}

func isAlreadyExists(err error) bool {
	return err != nil && strings.Contains(err.Error(), "already exists")
}

// scanRecords reads every row into a Record, converting driver values by
// the declared column type.
func scanRecords(rows *sql.Rows, cols []models.Column) ([]models.Record, error) {
	defer rows.Close()
	out := make([]models.Record, 0)
	for rows.Next() {
		rec, err := scanRecord(rows, cols)
		if err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

func scanRecord(rows *sql.Rows, cols []models.Column) (models.Record, error) {
	raw := make([]any, len(cols))
	ptrs := make([]any, len(cols))
	for i := range raw {
		ptrs[i] = &raw[i]
	}
	if err := rows.Scan(ptrs...); err != nil {
		return models.Record{}, err
	}
	rec := models.NewRecord()
	for i, c := range cols {
		rec.Set(c.Name, fromDriver(c.Type, raw[i]))
	}
	return rec, nil
}

func fromDriver(ct fieldtype.ColumnType, v any) any {
	switch x := v.(type) {
	case []byte:
		return string(x)
	case int64:
		if ct == fieldtype.ColumnBoolean {
			return x != 0
		}
		return x
	case time.Time:
		if ct == fieldtype.ColumnDate {
			return x.Format("2006-01-02")
		}
		return x.UTC()
	default:
		return v
	}
}

func isUniqueViolation(err error) bool {
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}
