package main

import (
	"os"

	"github.com/spf13/cobra"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	a := &app{}

	rootCmd := &cobra.Command{
		Use:          "patientctl",
		Short:        "Manage the eye care console's local patient register",
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.open(cmd.Context())
		},
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
			return a.close()
		},
	}
	rootCmd.PersistentFlags().StringVar(&a.backend, "backend", "", "storage backend (memory, file, redis, postgres); defaults to STORAGE_BACKEND")
	rootCmd.PersistentFlags().StringVar(&a.path, "storage-path", "", "storage file for the file backend; defaults to STORAGE_PATH")

	rootCmd.AddCommand(addCmd(a))
	rootCmd.AddCommand(listCmd(a))
	rootCmd.AddCommand(getCmd(a))
	rootCmd.AddCommand(updateCmd(a))
	rootCmd.AddCommand(deleteCmd(a))
	rootCmd.AddCommand(searchCmd(a))
	rootCmd.AddCommand(statsCmd(a))
	rootCmd.AddCommand(seedCmd(a))

	return rootCmd
}
