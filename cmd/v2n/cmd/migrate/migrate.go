package migrate

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"media-notes/cmd/v2n/cmd/cmdutil"
	"media-notes/internal/app/logging"
	datamigrate "media-notes/internal/app/repository/migrate"
	"media-notes/internal/app/repository/pg"
	"media-notes/internal/app/repository/sqlite"
)

var (
	sqlitePath     string
	postgresDSN    string
	batchSize      int
	checkpointPath string
)

func init() {
	Cmd.Flags().StringVar(&sqlitePath, "from", "", "SQLite database to copy; defaults to SQLITE_PATH")
	Cmd.Flags().StringVar(&postgresDSN, "to", "", "PostgreSQL connection string; defaults to DATABASE_URL")
	Cmd.Flags().IntVar(&batchSize, "batch", 1000, "Rows per insert batch")
	Cmd.Flags().StringVar(&checkpointPath, "checkpoint", "last_id", "Prefix of the files remembering progress per table")
}

// Cmd represents the migrate command
var Cmd = &cobra.Command{
	Use:   "migrate",
	Short: "Copy accounts, credits and history from SQLite to PostgreSQL",
	Long: `Copy accounts, credits and history from SQLite to PostgreSQL

- Creates the PostgreSQL schema when missing
- Resumes from the last copied id of each table after an interruption`,
	RunE: func(cmd *cobra.Command, args []string) error {
		settings, err := cmdutil.LoadSettings()
		if err != nil {
			return err
		}
		if sqlitePath == "" {
			sqlitePath = settings.Storage.SQLitePath
		}
		if postgresDSN == "" {
			postgresDSN = settings.Storage.PostgresDSN
		}
		if postgresDSN == "" {
			return fmt.Errorf("--to or DATABASE_URL is required")
		}

		logger, err := logging.NewLogger(settings.Development)
		if err != nil {
			return err
		}
		defer func() { _ = logger.Sync() }()

		src, err := sqlite.NewSQLiteDB(sqlitePath)
		if err != nil {
			return err
		}
		defer src.Close()

		dst, err := pg.NewPostgresDB(postgresDSN)
		if err != nil {
			return err
		}
		defer dst.Close()

		ctx, stop := cmdutil.SignalContext()
		defer stop()

		if err := dst.InitSchema(ctx); err != nil {
			return err
		}

		stats, err := datamigrate.NewMigrator(src.DB(), dst.DB(), batchSize, checkpointPath, logger).Run(ctx)
		for name, n := range stats {
			logger.Info("table migrated", zap.String("table", name), zap.Int("rows", n))
		}
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), "migration finished")
		return nil
	},
}
