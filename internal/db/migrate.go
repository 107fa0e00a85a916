package db

import (
	"context"
	"database/sql"
	"embed"
	"fmt"

	"gradepulse/internal/fields"
	"gradepulse/internal/logger"

	"github.com/pressly/goose/v3"
	"github.com/rs/zerolog"
)

//go:embed migrations/*.sql
var migrations embed.FS

const migrationsDir = "migrations"

func init() {
	goose.AddNamedMigrationContext("00002_seed_fields.go", seedFieldsUp, seedFieldsDown)
}

// Migrate runs a goose command ("up", "down" or "status") against the embedded migrations.
func Migrate(ctx context.Context, db *sql.DB, command string) error {
	goose.SetBaseFS(migrations)
	goose.SetLogger(gooseLogger{logger.Component("migrate")})
	if err := goose.SetDialect("mysql"); err != nil {
		return err
	}

	switch command {
	case "up":
		return goose.UpContext(ctx, db, migrationsDir)
	case "down":
		return goose.DownContext(ctx, db, migrationsDir)
	case "status":
		return goose.StatusContext(ctx, db, migrationsDir)
	}
	return fmt.Errorf("unknown migrate command %q", command)
}

// seedFieldsUp inserts the default field vocabulary.
func seedFieldsUp(ctx context.Context, tx *sql.Tx) error {
	for _, def := range fields.DefaultDefinitions() {
		if err := insertField(ctx, tx, &def); err != nil {
			return fmt.Errorf("failed to seed %s: %w", def.FieldName, err)
		}
	}
	return nil
}

func seedFieldsDown(ctx context.Context, tx *sql.Tx) error {
	_, err := tx.ExecContext(ctx, "DELETE FROM field_definitions")
	return err
}

type gooseLogger struct {
	log zerolog.Logger
}

func (l gooseLogger) Printf(format string, v ...interface{}) {
	l.log.Info().Msgf(format, v...)
}

func (l gooseLogger) Fatalf(format string, v ...interface{}) {
	l.log.Fatal().Msgf(format, v...)
}
