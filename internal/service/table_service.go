package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/dollaghosh1/wbpower-project/internal/apperr"
	"github.com/dollaghosh1/wbpower-project/internal/fieldtype"
	"github.com/dollaghosh1/wbpower-project/internal/ident"
	"github.com/dollaghosh1/wbpower-project/internal/models"
)

// TableRegistry is the storage side of dynamic tables: DDL plus schema
// introspection. repository.TableRepo implements it over SQLite.
type TableRegistry interface {
	CreateTable(ctx context.Context, desc models.TableDescriptor) error
	ListTables(ctx context.Context, prefix string) ([]string, error)
	Exists(ctx context.Context, table string) (bool, error)
	Columns(ctx context.Context, table string) ([]models.Column, error)
}

// TableService owns the custom post tables: naming, provisioning and the
// forms derived from them. Only tables inside the prefix namespace are
// visible through it.
type TableService struct {
	tables TableRegistry
	prefix string
}

func NewTableService(tables TableRegistry, prefix string) *TableService {
	return &TableService{tables: tables, prefix: prefix}
}

func (s *TableService) Prefix() string { return s.prefix }

// CreateTable normalizes the requested names, maps each field type to a
// column and provisions the table.
func (s *TableService) CreateTable(ctx context.Context, rawName string, fields models.FieldList) (*models.TableDescriptor, error) {
	if strings.TrimSpace(rawName) == "" {
		return nil, apperr.Invalid("table name is required")
	}
	if len(fields) == 0 {
		return nil, apperr.Invalid("at least one field is required")
	}
	name, err := ident.Normalize(rawName)
	if err != nil {
		return nil, err
	}
	desc := &models.TableDescriptor{TableName: s.prefix + name}

	seen := make(map[string]bool, len(fields))
	for _, f := range fields {
		col, err := ident.Normalize(f.Name)
		if err != nil {
			return nil, apperr.Invalid("field name %q is empty after normalization", f.Name)
		}
		if models.IsSystemColumn(col) {
			return nil, apperr.Invalid("field name %q is reserved", col)
		}
		if seen[col] {
			return nil, apperr.Invalid("duplicate field %q", col)
		}
		seen[col] = true
		desc.Fields = append(desc.Fields, models.FieldDefinition{Name: col, Type: fieldtype.Parse(f.Type)})
	}

	exists, err := s.tables.Exists(ctx, desc.TableName)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, fmt.Errorf("table %s: %w", desc.TableName, apperr.ErrAlreadyExists)
	}
	if err := s.tables.CreateTable(ctx, *desc); err != nil {
		return nil, err
	}
	return desc, nil
}

func (s *TableService) ListTables(ctx context.Context) ([]string, error) {
	return s.tables.ListTables(ctx, s.prefix)
}

// owns reports whether table is a well-formed name in our namespace.
func (s *TableService) owns(table string) bool {
	return ident.Valid(table) && strings.HasPrefix(table, s.prefix) && len(table) > len(s.prefix)
}

func (s *TableService) Exists(ctx context.Context, table string) (bool, error) {
	if !s.owns(table) {
		return false, nil
	}
	return s.tables.Exists(ctx, table)
}

// Describe returns the table's columns with their physical types.
func (s *TableService) Describe(ctx context.Context, table string) ([]models.Column, error) {
	ok, err := s.Exists(ctx, table)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, apperr.NotFound("table %s", table)
	}
	return s.tables.Columns(ctx, table)
}

// Columns returns the column names in declaration order.
func (s *TableService) Columns(ctx context.Context, table string) ([]string, error) {
	cols, err := s.Describe(ctx, table)
	if err != nil {
		return nil, err
	}
	names := make([]string, len(cols))
	for i, c := range cols {
		names[i] = c.Name
	}
	return names, nil
}

func (s *TableService) ColumnType(ctx context.Context, table, column string) (fieldtype.ColumnType, error) {
	cols, err := s.Describe(ctx, table)
	if err != nil {
		return "", err
	}
	for _, c := range cols {
		if c.Name == column {
			return c.Type, nil
		}
	}
	return "", apperr.NotFound("column %s.%s", table, column)
}

// FormFields derives the input form for a table from its live schema.
func (s *TableService) FormFields(ctx context.Context, table string) ([]models.FormField, error) {
	cols, err := s.Describe(ctx, table)
	if err != nil {
		return nil, err
	}
	return DeriveFormFields(cols), nil
}

// DeriveFormFields skips the system columns and describes one input per
// remaining column. Every field is required: the schema carries no
// per-field metadata to say otherwise.
func DeriveFormFields(cols []models.Column) []models.FormField {
	fields := make([]models.FormField, 0, len(cols))
	for _, c := range cols {
		if models.IsSystemColumn(c.Name) {
			continue
		}
		label := ident.Labelize(c.Name)
		fields = append(fields, models.FormField{
			Name:        c.Name,
			Label:       label,
			Type:        fieldtype.InferInputType(c.Type, c.Name),
			Required:    true,
			Placeholder: "Enter " + label,
		})
	}
	return fields
}
