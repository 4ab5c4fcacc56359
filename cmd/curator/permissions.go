package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jonathan/resume-curator/internal/observability"
	"github.com/jonathan/resume-curator/internal/permissions"
)

var permissionsCmd = &cobra.Command{
	Use:   "permissions",
	Short: "Show a permission file as the pipeline will apply it",
	Long:  "Parses and validates a permission file, then prints each field in visiting order with the operations that will run on it.",
	RunE:  runPermissions,
}

func init() {
	permissionsCmd.Flags().StringVarP(&opts.Permissions, "permissions", "p", "", "Path to the permission file (YAML or JSON)")

	rootCmd.AddCommand(permissionsCmd)
}

func runPermissions(cmd *cobra.Command, _ []string) error {
	if opts.Permissions == "" {
		return fmt.Errorf("--permissions is required")
	}
	registry, err := permissions.LoadFile(opts.Permissions)
	if err != nil {
		return err
	}
	observability.NewPrinter(cmd.OutOrStdout()).PrintRegistry(registry)
	return nil
}
