package main

import (
	"context"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"github.com/uptrace/bun"

	"github.com/redmonkez12/neonkeys-api/internal/category"
	"github.com/redmonkez12/neonkeys-api/internal/config"
	"github.com/redmonkez12/neonkeys-api/internal/database"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:          "neonkeys",
		Short:        "Operations tool for the NeonKeys API",
		Long:         "Run database migrations and manage product categories for the NeonKeys API.",
		SilenceUsage: true,
	}

	migrateCmd := &cobra.Command{
		Use:       "migrate <up|down|status|version|redo|reset>",
		Short:     "Run schema migrations",
		Args:      cobra.MatchAll(cobra.MinimumNArgs(1), validMigrateCommand),
		ValidArgs: migrateCommands,
		RunE:      runMigrate,
	}

	// category command group
	categoryCmd := &cobra.Command{
		Use:   "category",
		Short: "Manage product categories",
	}

	categoryAddCmd := &cobra.Command{
		Use:   "add <name>",
		Short: "Create a category",
		Args:  cobra.ExactArgs(1),
		RunE:  runCategoryAdd,
	}

	categoryListCmd := &cobra.Command{
		Use:   "list",
		Short: "List categories",
		Args:  cobra.NoArgs,
		RunE:  runCategoryList,
	}

	categoryCmd.AddCommand(categoryAddCmd, categoryListCmd)
	rootCmd.AddCommand(migrateCmd, categoryCmd)

	return rootCmd
}

var migrateCommands = []string{"up", "down", "status", "version", "redo", "reset"}

func validMigrateCommand(cmd *cobra.Command, args []string) error {
	for _, c := range migrateCommands {
		if args[0] == c {
			return nil
		}
	}
	return fmt.Errorf("unknown migrate command %q", args[0])
}

func runMigrate(cmd *cobra.Command, args []string) error {
	return withDB(cmd.Context(), func(ctx context.Context, db *bun.DB) error {
		return database.Migrate(ctx, db.DB, args[0], args[1:]...)
	})
}

func runCategoryAdd(cmd *cobra.Command, args []string) error {
	return withDB(cmd.Context(), func(ctx context.Context, db *bun.DB) error {
		c, err := category.NewRepository(db).Create(ctx, args[0])
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "created category %d %q\n", c.ID, c.Name)
		return nil
	})
}

func runCategoryList(cmd *cobra.Command, args []string) error {
	return withDB(cmd.Context(), func(ctx context.Context, db *bun.DB) error {
		categories, err := category.NewRepository(db).List(ctx)
		if err != nil {
			return err
		}

		w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "ID\tNAME")
		for _, c := range categories {
			fmt.Fprintf(w, "%d\t%s\n", c.ID, c.Name)
		}
		return w.Flush()
	})
}

func withDB(ctx context.Context, fn func(context.Context, *bun.DB) error) error {
	if ctx == nil {
		ctx = context.Background()
	}

	db, err := database.Open(ctx, config.LoadDatabase())
	if err != nil {
		return err
	}
	defer db.Close()

	return fn(ctx, db)
}
