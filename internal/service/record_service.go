package service

import (
	"context"
	"io"
	"log"
	"strings"
	"time"

	"github.com/dollaghosh1/wbpower-project/internal/apperr"
	"github.com/dollaghosh1/wbpower-project/internal/fieldtype"
	"github.com/dollaghosh1/wbpower-project/internal/models"
	"github.com/dollaghosh1/wbpower-project/internal/storage"
)

// RecordStore is generic row access to a dynamic table.
type RecordStore interface {
	Insert(ctx context.Context, table string, values models.Record) (int64, error)
	Update(ctx context.Context, table string, id int64, values models.Record) error
	FindAll(ctx context.Context, table string, cols []models.Column) ([]models.Record, error)
	FindByID(ctx context.Context, table string, id int64, cols []models.Column) (models.Record, error)
	Exists(ctx context.Context, table string, id int64) (bool, error)
	Delete(ctx context.Context, table string, id int64) error
	Count(ctx context.Context, table string) (int, error)
}

// Upload is one file submitted for a column.
type Upload struct {
	FileName    string
	ContentType string
	Body        io.Reader
}

// RecordService reads and writes rows of dynamic tables. The column list
// always comes from the live schema; uploaded files go to the file store
// and only their relative path is written to the row.
type RecordService struct {
	tables  *TableService
	records RecordStore
	files   storage.Store
	now     func() time.Time
}

func NewRecordService(tables *TableService, records RecordStore, files storage.Store) *RecordService {
	return &RecordService{
		tables:  tables,
		records: records,
		files:   files,
		now:     func() time.Time { return time.Now().UTC() },
	}
}

// Create inserts a row. is_active defaults to true and both timestamps are
// set to now.
func (s *RecordService) Create(ctx context.Context, table string, values map[string]any, files map[string]Upload) (int64, error) {
	cols, err := s.tables.Describe(ctx, table)
	if err != nil {
		return 0, err
	}
	now := s.now()
	row, err := s.resolve(ctx, table, cols, values, files, now)
	if err != nil {
		return 0, err
	}
	if hasColumn(cols, models.ColumnIsActive) {
		if _, ok := row.Get(models.ColumnIsActive); !ok {
			row.Set(models.ColumnIsActive, true)
		}
	}
	if hasColumn(cols, models.ColumnCreatedAt) {
		row.Set(models.ColumnCreatedAt, now)
	}
	if hasColumn(cols, models.ColumnUpdatedAt) {
		row.Set(models.ColumnUpdatedAt, now)
	}
	return s.records.Insert(ctx, table, row)
}

// Update merges the submitted values into row id; omitted columns keep
// their current value.
func (s *RecordService) Update(ctx context.Context, table string, id int64, values map[string]any, files map[string]Upload) error {
	cols, err := s.tables.Describe(ctx, table)
	if err != nil {
		return err
	}
	if err := s.mustExist(ctx, table, id); err != nil {
		return err
	}
	now := s.now()
	row, err := s.resolve(ctx, table, cols, values, files, now)
	if err != nil {
		return err
	}
	if hasColumn(cols, models.ColumnUpdatedAt) {
		row.Set(models.ColumnUpdatedAt, now)
	}
	return s.records.Update(ctx, table, id, row)
}

// SetActive flips the is_active flag of row id.
func (s *RecordService) SetActive(ctx context.Context, table string, id int64, active bool) error {
	cols, err := s.tables.Describe(ctx, table)
	if err != nil {
		return err
	}
	if !hasColumn(cols, models.ColumnIsActive) {
		return apperr.Invalid("table %s has no %s column", table, models.ColumnIsActive)
	}
	if err := s.mustExist(ctx, table, id); err != nil {
		return err
	}
	row := models.NewRecord()
	row.Set(models.ColumnIsActive, active)
	if hasColumn(cols, models.ColumnUpdatedAt) {
		row.Set(models.ColumnUpdatedAt, s.now())
	}
	return s.records.Update(ctx, table, id, row)
}

// List returns all rows, newest first, without the excluded columns.
func (s *RecordService) List(ctx context.Context, table string, exclude []string) ([]models.Record, error) {
	cols, err := s.tables.Describe(ctx, table)
	if err != nil {
		return nil, err
	}
	recs, err := s.records.FindAll(ctx, table, cols)
	if err != nil {
		return nil, err
	}
	if len(exclude) == 0 {
		return recs, nil
	}
	for i := range recs {
		recs[i] = recs[i].Without(exclude)
	}
	return recs, nil
}

func (s *RecordService) Get(ctx context.Context, table string, id int64) (models.Record, error) {
	cols, err := s.tables.Describe(ctx, table)
	if err != nil {
		return models.Record{}, err
	}
	return s.records.FindByID(ctx, table, id, cols)
}

// Delete removes row id and, best effort, the files it referenced.
func (s *RecordService) Delete(ctx context.Context, table string, id int64) error {
	cols, err := s.tables.Describe(ctx, table)
	if err != nil {
		return err
	}
	rec, err := s.records.FindByID(ctx, table, id, cols)
	if err != nil {
		return err
	}
	if err := s.records.Delete(ctx, table, id); err != nil {
		return err
	}
	prefix := "uploads/" + table + "/"
	for _, k := range rec.Keys() {
		v, _ := rec.Get(k)
		if p, ok := v.(string); ok && strings.HasPrefix(p, prefix) {
			if err := s.files.Delete(ctx, p); err != nil {
				log.Printf("Warning: delete %s: %v", p, err)
			}
		}
	}
	return nil
}

func (s *RecordService) Count(ctx context.Context, table string) (int, error) {
	if _, err := s.tables.Describe(ctx, table); err != nil {
		return 0, err
	}
	return s.records.Count(ctx, table)
}

func (s *RecordService) mustExist(ctx context.Context, table string, id int64) error {
	ok, err := s.records.Exists(ctx, table, id)
	if err != nil {
		return err
	}
	if !ok {
		return apperr.NotFound("record %d in %s", id, table)
	}
	return nil
}

// resolve turns a submission into column values, in column order. A file
// wins over a scalar of the same name. id and the timestamps are never
// taken from the caller. Everything is validated before the first file is
// stored; files already stored are not removed if a later step fails.
func (s *RecordService) resolve(ctx context.Context, table string, cols []models.Column, values map[string]any, files map[string]Upload, now time.Time) (models.Record, error) {
	byName := make(map[string]models.Column, len(cols))
	for _, c := range cols {
		byName[c.Name] = c
	}
	for k := range values {
		if _, ok := byName[k]; !ok {
			return models.Record{}, apperr.Invalid("unknown field %q", k)
		}
	}
	for k, up := range files {
		if _, ok := byName[k]; !ok {
			return models.Record{}, apperr.Invalid("unknown field %q", k)
		}
		if !storage.Allowed(up.FileName) {
			return models.Record{}, apperr.Invalid("file type of %q is not allowed", up.FileName)
		}
	}

	row := models.NewRecord()
	pending := make([]models.Column, 0, len(files))
	for _, c := range cols {
		if isManaged(c.Name) {
			continue
		}
		if _, ok := files[c.Name]; ok {
			pending = append(pending, c)
			continue
		}
		v, ok := values[c.Name]
		if !ok {
			continue
		}
		bound, err := c.Type.Coerce(v)
		if err != nil {
			return models.Record{}, apperr.Invalid("%s: %v", c.Name, err)
		}
		row.Set(c.Name, bound)
	}

	for _, c := range pending {
		up := files[c.Name]
		p := storage.UploadPath(table, c.Name, up.FileName, now)
		ct := up.ContentType
		if ct == "" || ct == "application/octet-stream" {
			ct = storage.DetectContentType(up.FileName)
		}
		if err := s.files.Put(ctx, p, up.Body, ct); err != nil {
			return models.Record{}, err
		}
		bound, err := fieldtype.ColumnString.Coerce(p)
		if err != nil {
			return models.Record{}, err
		}
		row.Set(c.Name, bound)
	}
	return row, nil
}

// isManaged reports columns the gateway sets itself.
func isManaged(name string) bool {
	return name == models.ColumnID || name == models.ColumnCreatedAt || name == models.ColumnUpdatedAt
}

func hasColumn(cols []models.Column, name string) bool {
	for _, c := range cols {
		if c.Name == name {
			return true
		}
	}
	return false
}
