package main

import (
	"io"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/toyz/synapse/internal/cli"
	"github.com/toyz/synapse/internal/utils"
)

// version is set at build time with -ldflags "-X main.version=..."
var version = "dev"

// app holds what the subcommands share
type app struct {
	viper      *viper.Viper
	configFile string
	out        io.Writer
	errOut     io.Writer
}

func newRootCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "synapse",
		Short: "Synapse - controller to handler code generator",
		Long: `Synapse scans Go packages for //synapse:: annotated controllers and
generates one handler type per route method, plus a manager that binds the
injected dependencies of every handler.

Annotated sources carry the //go:build synapse constraint; each one gets a
<file>_gen.go companion built without it.`,
		Version:       version,
		SilenceErrors: true,
		SilenceUsage:  true,
	}
	cmd.SetVersionTemplate("synapse version {{.Version}}\n")
	cmd.SetOut(a.out)
	cmd.SetErr(a.errOut)

	flags := cmd.PersistentFlags()
	flags.StringVar(&a.configFile, "config", "", "Config file (default: ./synapse.yaml, .toml or .json when present)")
	flags.BoolP(cli.KeyVerbose, "v", false, "Enable verbose output and detailed error reporting")
	flags.BoolP(cli.KeyQuiet, "q", false, "Only show errors")
	a.bind(flags.Lookup(cli.KeyVerbose), flags.Lookup(cli.KeyQuiet))

	cmd.AddCommand(newGenCmd(a), newCleanCmd(a), newVersionCmd())
	return cmd
}

// loadConfig resolves flags, SYNAPSE_* variables and the config file.
// Positional arguments replace the configured directories.
func (a *app) loadConfig(args []string) (cli.Config, error) {
	if len(args) > 0 {
		a.viper.Set(cli.KeyDirectories, args)
	}
	return cli.LoadConfig(a.viper, a.configFile, ".")
}

// diagnostics creates the output system for cfg
func (a *app) diagnostics(cfg cli.Config) *utils.DiagnosticSystem {
	diagnostics := utils.NewDiagnosticSystem(cfg.DiagnosticLevel())
	if a.out != os.Stdout || a.errOut != os.Stderr {
		diagnostics.SetOutput(a.out, a.errOut)
	}
	return diagnostics
}

func (a *app) bind(flags ...*pflag.Flag) {
	for _, flag := range flags {
		_ = a.viper.BindPFlag(flag.Name, flag)
	}
}

// execute runs the command line and returns the process exit code
func execute(args []string, out, errOut io.Writer) int {
	a := &app{viper: cli.NewViper(), out: out, errOut: errOut}
	root := newRootCmd(a)
	root.SetArgs(args)

	if err := root.Execute(); err != nil {
		reporter := cli.NewDiagnosticReporter(a.viper.GetBool(cli.KeyVerbose))
		if errOut != os.Stderr {
			reporter.SetOutput(errOut)
		}
		reporter.ReportError(err)
		return 1
	}
	return 0
}
