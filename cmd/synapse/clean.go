package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/toyz/synapse/internal/cli"
)

func newCleanCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "clean [directories...]",
		Short: "Delete generated handler files",
		Long: `Delete the <file>_gen.go and <file>_gen.yaml files below the given
directories. Go files are only removed when they carry the synapse
generated-code header.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := a.loadConfig(args)
			if err != nil {
				return err
			}
			diagnostics := a.diagnostics(cfg)

			diagnostics.Header("cleaning generated files")
			removed, err := cli.NewCleaner().CleanGeneratedFiles(cfg.Directories)
			for _, file := range removed {
				diagnostics.Verbose("Removed %s", file)
			}
			if err != nil {
				return err
			}

			diagnostics.Complete(pluralize(len(removed), "generated file") + " removed")
			return nil
		},
	}
}

func pluralize(n int, noun string) string {
	if n == 1 {
		return "1 " + noun
	}
	return fmt.Sprintf("%d %ss", n, noun)
}
