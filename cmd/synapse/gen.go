package main

import (
	"strings"

	"github.com/spf13/cobra"

	"github.com/toyz/synapse/internal/cli"
)

func newGenCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "gen [directories...]",
		Aliases: []string{"generate"},
		Short:   "Generate handlers for annotated controllers",
		Long: `Scan directories for //synapse:: annotated controllers and write a
<file>_gen.go next to every source file that declares one.

Directory patterns:
  ./...              Scan current directory and all subdirectories recursively
  ./internal/...     Scan internal directory and all its subdirectories
  ./pkg/controllers  Scan only the specific directory (no recursion)`,
		Example: `  synapse gen ./...
  synapse gen --emit-metadata ./internal/...
  synapse gen --tag codegen --namespace api ./pkg/controllers`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := a.loadConfig(args)
			if err != nil {
				return err
			}
			diagnostics := a.diagnostics(cfg)

			diagnostics.Header("generating handlers")
			diagnostics.Verbose("Target directories: %s", strings.Join(cfg.Directories, ", "))
			diagnostics.Verbose("Build tag: %s, namespace: %s", cfg.BuildTag, cfg.Namespace)
			if cfg.ModuleName != "" {
				diagnostics.Verbose("Custom module: %s", cfg.ModuleName)
			}

			generator := cli.NewGenerator(cfg, diagnostics)
			runErr := generator.Run(cmd.Context())

			summary := generator.Summary()
			if len(summary.GeneratedFiles) > 0 {
				diagnostics.PhaseHeader("Generated files")
				diagnostics.Indent()
				for _, file := range summary.GeneratedFiles {
					diagnostics.PhaseItem(file)
				}
				for _, file := range summary.MetadataFiles {
					diagnostics.PhaseItem(file)
				}
				diagnostics.Unindent()
			}
			if runErr != nil {
				return runErr
			}

			diagnostics.Summary("Generation complete", summary.Stats())
			diagnostics.Verbose("Finished in %s", summary.Duration)
			diagnostics.Complete("handlers are up to date")
			return nil
		},
	}

	flags := cmd.Flags()
	flags.String(cli.KeyModule, "", "Module path used to group local imports (defaults to go.mod)")
	flags.String(cli.KeyTag, "", "Build tag excluding annotated sources (default \"synapse\")")
	flags.String(cli.KeyNamespace, "", "Annotation namespace, as in //<namespace>::get (default \"synapse\")")
	flags.String(cli.KeyRuntime, "", "Import path of the handler runtime")
	flags.Bool(cli.KeyEmitMetadata, false, "Also write <file>_gen.yaml handler metadata")
	flags.Bool(cli.KeyResolveTypes, true, "Type-check packages to give provider results concrete types")
	flags.IntP(cli.KeyJobs, "j", 0, "Files expanded in parallel (default: number of CPUs)")
	a.bind(
		flags.Lookup(cli.KeyModule),
		flags.Lookup(cli.KeyTag),
		flags.Lookup(cli.KeyNamespace),
		flags.Lookup(cli.KeyRuntime),
		flags.Lookup(cli.KeyEmitMetadata),
		flags.Lookup(cli.KeyResolveTypes),
		flags.Lookup(cli.KeyJobs),
	)
	return cmd
}
