package main

import (
	"github.com/spf13/cobra"

	"github.com/lobitocorner/lobito/storage/database"
)

var gooseRunFunc = database.Migrate // mockable

func (cli *commandLine) migrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate COMMAND [ARGS...]",
		Short: "Run a goose migration command on the database",
		Long: `Run a goose migration command with the migrations embedded in the binary.

Commands: up, up-by-one, up-to VERSION, down, down-to VERSION, redo, reset, status, version`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return gooseRunFunc(cmd.Context(), cli.db, args[0], args[1:]...)
		},
	}
}
