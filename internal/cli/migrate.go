package cli

import (
	"database/sql"

	"github.com/limbo/zenjournal/internal/repository"
	_ "github.com/lib/pq"
	"github.com/pressly/goose"
	"github.com/spf13/cobra"
)

func init() {
	cmd := &cobra.Command{
		Use:       "migrate [up|down|status]",
		Short:     "Apply or inspect the users database migrations",
		Args:      cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		ValidArgs: []string{"up", "down", "status"},
		Run:       runMigrate,
	}

	RootCmd.AddCommand(cmd)
}

func runMigrate(cmd *cobra.Command, args []string) {
	cfg := loadConfig()
	pgCfg := repository.PGCfg{
		Address:  cfg.GetString("POSTGRES_DB_ADDRESS"),
		Username: cfg.GetString("POSTGRES_USER"),
		Password: cfg.GetString("POSTGRES_PASSWORD"),
		DB:       cfg.GetString("POSTGRES_DB"),
	}
	conn, err := sql.Open("postgres", pgCfg.ConnString()+"?sslmode=disable")
	if err != nil {
		exitErr("open database", err)
	}
	defer conn.Close()

	dir := cfg.GetStringOr("MIGRATIONS_DIR", "./migrations")
	switch args[0] {
	case "up":
		err = goose.Up(conn, dir)
	case "down":
		err = goose.Down(conn, dir)
	case "status":
		err = goose.Status(conn, dir)
	}
	if err != nil {
		exitErr("migrate "+args[0], err)
	}
}
