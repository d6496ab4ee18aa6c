package main

import (
	"os"

	"github.com/spf13/cobra"

	shellrun "github.com/crides/sched/internal/cmd/shellrun"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "sched",
		Short: "Audit-logged object tracker",
		Long:  "sched tracks objects in a dependency graph, records every change as an audit log, and fires registered handlers on matching logs.",
		RunE: func(cmd *cobra.Command, args []string) error {
			configPath, _ := cmd.Flags().GetString("config")
			dataDir, _ := cmd.Flags().GetString("data-dir")
			initFile, _ := cmd.Flags().GetString("init-file")
			logLevel, _ := cmd.Flags().GetString("log-level")
			logFormat, _ := cmd.Flags().GetString("log-format")
			fsyncMode, _ := cmd.Flags().GetString("fsync")

			return shellrun.Run(cmd.Context(), shellrun.Options{
				ConfigPath: configPath,
				DataDir:    dataDir,
				InitFile:   initFile,
				LogLevel:   logLevel,
				LogFormat:  logFormat,
				Fsync:      fsyncMode,
			})
		},
	}
	rootCmd.Flags().String("config", "", "Config file (default: user config dir)")
	rootCmd.Flags().String("data-dir", "", "Data directory (default: OS-specific application data directory)")
	rootCmd.Flags().String("init-file", "", "Shell script run before the prompt")
	rootCmd.Flags().String("log-level", os.Getenv("SCHED_LOG_LEVEL"), "Log level: debug|info|warn|error")
	rootCmd.Flags().String("log-format", os.Getenv("SCHED_LOG_FORMAT"), "Log format: text|json")
	rootCmd.Flags().String("fsync", "", "Fsync mode: always|interval|never")

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
