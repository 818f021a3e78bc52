package options

import (
	"github.com/spf13/cobra"
)

// LogOptions override the configured logger.
type LogOptions struct {
	Level string
	File  string
}

func AddLogArgs(cmd *cobra.Command, o *LogOptions) {
	cmd.PersistentFlags().StringVar(&o.Level, "log-level", "",
		"Log level: debug, info, warn or error.")
	cmd.PersistentFlags().StringVar(&o.File, "log-file", "",
		"Log destination: a file path, stderr or discard.")
}
