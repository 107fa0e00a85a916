package main

import (
	"database/sql"

	"gradepulse/internal/config"
	"gradepulse/internal/db"
	"gradepulse/internal/fields"
	"gradepulse/internal/logger"
	"gradepulse/internal/roster"

	"github.com/spf13/cobra"
)

type rootOptions struct {
	configPath string
	offline    bool
	verbose    bool
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}
	cmd := &cobra.Command{
		Use:           "rosterctl",
		Short:         "Operator tools for the GradePulse roster service",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			level := "warn"
			if opts.verbose {
				level = "debug"
			}
			logger.Init(level, "console")
		},
	}

	cmd.PersistentFlags().StringVar(&opts.configPath, "config", "config.yaml", "Path to the configuration file")
	cmd.PersistentFlags().BoolVarP(&opts.verbose, "verbose", "v", false, "Enable debug logging")

	cmd.AddCommand(newTemplateCmd(opts), newPreviewCmd(opts), newMigrateCmd(opts))
	return cmd
}

func (o *rootOptions) connect() (*sql.DB, error) {
	cfg, err := config.LoadFile(o.configPath)
	if err != nil {
		return nil, err
	}
	return db.NewConnection(cfg)
}

// fieldSource returns the seed vocabulary when offline, otherwise the stored
// configuration. The returned close func is never nil.
func (o *rootOptions) fieldSource() (roster.FieldSource, roster.StudentLookup, func() error, error) {
	if o.offline {
		return fields.StaticSource(fields.DefaultDefinitions()), nil, func() error { return nil }, nil
	}
	conn, err := o.connect()
	if err != nil {
		return nil, nil, nil, err
	}
	repos := db.NewRepositories(conn)
	return repos.Fields, repos.Students, conn.Close, nil
}
