package service

import (
	"fmt"

	"bulletin/config"

	"github.com/spf13/cobra"
)

// Version is stamped at build time with -ldflags "-X bulletin/service.Version=...".
var Version = "1.0.0"

// NewRootCommand builds the bulletin command tree. Every subcommand reads the
// configuration named by --config, or the default search path.
func NewRootCommand() *cobra.Command {
	var (
		configFile string
		cfg        *config.Config
	)

	root := &cobra.Command{
		Use:           "bulletin [command] [flags]",
		Short:         "Bulletin board backend: posts, threaded comments and likes",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			loaded, err := config.Load(config.New(configFile))
			if err != nil {
				return err
			}
			if err := config.ConfigureLogging(loaded.Log); err != nil {
				return err
			}
			cfg = loaded
			return nil
		},
	}
	root.PersistentFlags().StringVar(&configFile, "config", "", "path to a config file (default: ./config/config.yml or ./config.yml)")

	current := func() *config.Config { return cfg }

	root.AddCommand(
		newServeCommand(current),
		newInitCommand(current),
		newCleanCommand(current),
		newBackupCommand(current),
		newRestoreCommand(current),
		&cobra.Command{
			Use:   "version",
			Short: "Show version information",
			PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
				return nil
			},
			Run: func(cmd *cobra.Command, args []string) {
				fmt.Fprintf(cmd.OutOrStdout(), "bulletin version %s\n", Version)
			},
		},
	)
	return root
}

// Execute runs the root command and returns the exit code.
func Execute(args []string) int {
	root := NewRootCommand()
	root.SetArgs(args)
	if err := root.Execute(); err != nil {
		fmt.Fprintf(root.ErrOrStderr(), "Error: %v\n", err)
		return 1
	}
	return 0
}
