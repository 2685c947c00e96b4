package models

import (
	"fmt"
	"log"
	"os"
	"reflect"
	"sort"
	"strings"

	"gorm.io/gen"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
	"gorm.io/gorm/schema"
)

/*
Column Mismatch Report Usage:

Set GENERATE_COLUMN_REPORT=true and start the server. For every table the
report lists columns that exist in Supabase but have no field on the Go row,
which usually means a column was added from the Supabase dashboard and the
model has to catch up.

Example output:
=== COLUMN MISMATCH REPORT ===
--- Table: blog_posts ---
Found 1 columns not accounted for in model:
  - reading_time

--- Table: publications ---
All columns are accounted for in the model.

=== SUMMARY ===
Total mismatched columns across all tables: 1
*/

// All lists every persisted row type, in migration order.
func All() []any {
	return []any{
		&BlogPost{},
		&Publication{},
		&Resume{},
		&Experience{},
		&AdminUser{},
	}
}

// tableModels maps table names to their row structs for the mismatch report.
func tableModels() map[string]any {
	return map[string]any{
		BlogPost{}.TableName():    BlogPost{},
		Publication{}.TableName(): Publication{},
		Resume{}.TableName():      Resume{},
		Experience{}.TableName():  Experience{},
		AdminUser{}.TableName():   AdminUser{},
	}
}

// GenerateModels migrates every table and writes typed query helpers to
// ./generated.
func GenerateModels(db *gorm.DB) error {
	if err := db.Exec("SELECT 1").Error; err != nil {
		return fmt.Errorf("connecting to database: %w", err)
	}

	verbose := logger.New(
		log.New(os.Stdout, "\r\n", log.LstdFlags),
		logger.Config{
			LogLevel: logger.Info,
			Colorful: true,
		},
	)
	migrateDB := db.Session(&gorm.Session{
		Logger:                 verbose,
		SkipDefaultTransaction: true,
		PrepareStmt:            false,
	})

	fmt.Println("Migrating models...")
	if err := migrateDB.AutoMigrate(All()...); err != nil {
		return fmt.Errorf("migrating models: %w", err)
	}

	GenerateColumnMismatchReport(db)

	g := gen.NewGenerator(gen.Config{
		OutPath:           "./generated",
		Mode:              gen.WithDefaultQuery | gen.WithQueryInterface,
		FieldNullable:     true,
		FieldCoverable:    true,
		FieldWithIndexTag: true,
		FieldWithTypeTag:  true,
	})
	g.UseDB(migrateDB)
	g.ApplyBasic(All()...)
	g.Execute()

	fmt.Println("Model generation complete!")
	return nil
}

// GenerateColumnMismatchReport prints the database columns that no model field maps to.
func GenerateColumnMismatchReport(db *gorm.DB) int {
	fmt.Println("=== COLUMN MISMATCH REPORT ===")

	models := tableModels()
	tables := make([]string, 0, len(models))
	for name := range models {
		tables = append(tables, name)
	}
	sort.Strings(tables)

	total := 0
	for _, tableName := range tables {
		fmt.Printf("\n--- Table: %s ---\n", tableName)

		dbColumns, err := getTableColumns(db, tableName)
		if err != nil {
			if strings.Contains(err.Error(), "does not exist") {
				fmt.Println("Table does not exist yet (will be created during migration)")
			} else {
				fmt.Printf("Error getting columns for table %s: %v\n", tableName, err)
			}
			continue
		}

		mismatches := FindColumnMismatches(dbColumns, ModelColumns(models[tableName]))
		if len(mismatches) == 0 {
			fmt.Println("All columns are accounted for in the model.")
			continue
		}
		fmt.Printf("Found %d columns not accounted for in model:\n", len(mismatches))
		for _, col := range mismatches {
			fmt.Printf("  - %s\n", col)
		}
		total += len(mismatches)
	}

	fmt.Printf("\n=== SUMMARY ===\n")
	fmt.Printf("Total mismatched columns across all tables: %d\n", total)
	return total
}

// getTableColumns retrieves column names from a database table
func getTableColumns(db *gorm.DB, tableName string) ([]string, error) {
	var columns []string
	query := `
		SELECT column_name
		FROM information_schema.columns
		WHERE table_name = ?
		AND table_schema = CURRENT_SCHEMA()
		ORDER BY ordinal_position
	`
	if err := db.Raw(query, tableName).Scan(&columns).Error; err != nil {
		return nil, fmt.Errorf("error querying columns for table %s: %w", tableName, err)
	}
	if len(columns) == 0 {
		return nil, fmt.Errorf("table %s does not exist", tableName)
	}
	return columns, nil
}

// ModelColumns returns the column names a row struct maps to. Explicit
// `column:` tags win, otherwise gorm's snake_case naming is applied.
func ModelColumns(model any) []string {
	naming := schema.NamingStrategy{}
	t := reflect.TypeOf(model)
	if t.Kind() == reflect.Pointer {
		t = t.Elem()
	}

	var fields []string
	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)
		if field.Anonymous || !field.IsExported() {
			continue
		}
		gormTag := field.Tag.Get("gorm")
		if gormTag == "-" {
			continue
		}
		if column := extractColumnNameFromGormTag(gormTag); column != "" {
			fields = append(fields, column)
			continue
		}
		fields = append(fields, naming.ColumnName("", field.Name))
	}
	return fields
}

func extractColumnNameFromGormTag(gormTag string) string {
	for _, part := range strings.Split(gormTag, ";") {
		part = strings.TrimSpace(part)
		if strings.HasPrefix(part, "column:") {
			return strings.TrimPrefix(part, "column:")
		}
	}
	return ""
}

// FindColumnMismatches returns the database columns missing from modelFields.
func FindColumnMismatches(dbColumns, modelFields []string) []string {
	modelFieldSet := make(map[string]bool, len(modelFields))
	for _, field := range modelFields {
		modelFieldSet[field] = true
	}

	var mismatches []string
	for _, col := range dbColumns {
		if !modelFieldSet[col] {
			mismatches = append(mismatches, col)
		}
	}
	return mismatches
}
