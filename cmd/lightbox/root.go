package main

import (
	"github.com/spf13/cobra"

	"github.com/pthm/lightbox/lib/logger"
)

type rootFlags struct {
	verbose bool
}

func (f *rootFlags) logger(cmd *cobra.Command) (*logger.Logger, error) {
	level := "warn"
	if f.verbose {
		level = "debug"
	}
	return logger.New(logger.Options{Level: level, HumanReadable: true, Writer: cmd.ErrOrStderr()})
}

func newRootCmd() *cobra.Command {
	flags := &rootFlags{}

	cmd := &cobra.Command{
		Use:           "lightbox",
		Short:         "Render lightbox viewers for static HTML pages",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().BoolVarP(&flags.verbose, "verbose", "v", false, "Enable debug logging")

	cmd.AddCommand(newRenderCmd(flags))
	cmd.AddCommand(newTagsCmd())
	cmd.AddCommand(newVersionCmd())

	return cmd
}
