package cli

import (
	stderrors "errors"
	"fmt"
	"regexp"
	"runtime"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"

	"github.com/toyz/synapse/internal/annotations"
	"github.com/toyz/synapse/internal/errors"
	"github.com/toyz/synapse/internal/generator"
	"github.com/toyz/synapse/internal/parser"
	"github.com/toyz/synapse/internal/utils"
)

// Configuration keys, shared by flags, config files and SYNAPSE_* env vars
const (
	KeyDirectories  = "directories"
	KeyModule       = "module"
	KeyTag          = "tag"
	KeyNamespace    = "namespace"
	KeyRuntime      = "runtime"
	KeyEmitMetadata = "emit-metadata"
	KeyResolveTypes = "resolve-types"
	KeyJobs         = "jobs"
	KeyVerbose      = "verbose"
	KeyQuiet        = "quiet"
)

// ConfigName is the base name of the optional config file (synapse.yaml,
// synapse.toml or synapse.json)
const ConfigName = "synapse"

// Config holds the configuration for the CLI generator
type Config struct {
	// Directories to scan; "dir/..." scans recursively
	Directories []string `mapstructure:"directories" validate:"required,min=1,dive,required"`

	// ModuleName overrides the module path read from go.mod. It is only
	// used to group local imports in generated files.
	ModuleName string `mapstructure:"module"`

	BuildTag      string `mapstructure:"tag" validate:"required,buildtag"`
	Namespace     string `mapstructure:"namespace" validate:"required,identifier"`
	RuntimeImport string `mapstructure:"runtime" validate:"required"`

	// EmitMetadata writes <file>_gen.yaml next to every generated file
	EmitMetadata bool `mapstructure:"emit-metadata"`

	// ResolveTypes type-checks packages so provider results get concrete
	// types instead of any
	ResolveTypes bool `mapstructure:"resolve-types"`

	Jobs int `mapstructure:"jobs" validate:"min=1,max=256"`

	Verbose bool `mapstructure:"verbose"`
	Quiet   bool `mapstructure:"quiet" validate:"excluded_with=Verbose"`
}

// DefaultConfig returns the configuration used when nothing is set
func DefaultConfig() Config {
	return Config{
		Directories:   []string{"."},
		BuildTag:      parser.DefaultBuildTag,
		Namespace:     annotations.DefaultNamespace,
		RuntimeImport: generator.DefaultRuntimeImport,
		ResolveTypes:  true,
		Jobs:          runtime.NumCPU(),
	}
}

// NewViper creates a viper instance preloaded with defaults and the
// SYNAPSE_ environment prefix
func NewViper() *viper.Viper {
	defaults := DefaultConfig()

	v := viper.New()
	v.SetDefault(KeyDirectories, defaults.Directories)
	v.SetDefault(KeyModule, defaults.ModuleName)
	v.SetDefault(KeyTag, defaults.BuildTag)
	v.SetDefault(KeyNamespace, defaults.Namespace)
	v.SetDefault(KeyRuntime, defaults.RuntimeImport)
	v.SetDefault(KeyEmitMetadata, defaults.EmitMetadata)
	v.SetDefault(KeyResolveTypes, defaults.ResolveTypes)
	v.SetDefault(KeyJobs, defaults.Jobs)
	v.SetDefault(KeyVerbose, false)
	v.SetDefault(KeyQuiet, false)

	v.SetEnvPrefix("SYNAPSE")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()
	return v
}

// LoadConfig reads the config file and decodes v into a validated Config.
// An explicit configFile must exist; otherwise synapse.* is looked up in
// searchDirs and may be absent.
func LoadConfig(v *viper.Viper, configFile string, searchDirs ...string) (Config, error) {
	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		v.SetConfigName(ConfigName)
		for _, dir := range searchDirs {
			v.AddConfigPath(dir)
		}
	}

	if configFile != "" || len(searchDirs) > 0 {
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if configFile != "" || !stderrors.As(err, &notFound) {
				return Config{}, errors.WrapConfigurationError(ConfigName, "read", err)
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, errors.WrapConfigurationError(ConfigName, "decode", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

var (
	buildTagPattern   = regexp.MustCompile(`^[A-Za-z0-9_.]+$`)
	identifierPattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

	validate = newValidator()
)

func newValidator() *validator.Validate {
	v := validator.New()
	_ = v.RegisterValidation("buildtag", func(fl validator.FieldLevel) bool {
		return buildTagPattern.MatchString(fl.Field().String())
	})
	_ = v.RegisterValidation("identifier", func(fl validator.FieldLevel) bool {
		return identifierPattern.MatchString(fl.Field().String())
	})
	return v
}

// Validate checks the configuration values
func (c Config) Validate() error {
	err := validate.Struct(c)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !stderrors.As(err, &fieldErrs) {
		return errors.WrapConfigurationError(ConfigName, "validate", err)
	}

	base := errors.WrapConfigurationError(ConfigName, "validate", err)
	for _, fe := range fieldErrs {
		base = base.WithSuggestion(describeFieldError(fe))
	}
	return base
}

func describeFieldError(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s must be set", fe.Field())
	case "min":
		return fmt.Sprintf("%s must be at least %s", fe.Field(), fe.Param())
	case "max":
		return fmt.Sprintf("%s must be at most %s", fe.Field(), fe.Param())
	case "buildtag":
		return fmt.Sprintf("%s must be a single build tag, got %q", fe.Field(), fe.Value())
	case "identifier":
		return fmt.Sprintf("%s must be a Go identifier, got %q", fe.Field(), fe.Value())
	case "excluded_with":
		return fmt.Sprintf("%s cannot be combined with %s", fe.Field(), fe.Param())
	default:
		return fmt.Sprintf("%s failed the '%s' check", fe.Field(), fe.Tag())
	}
}

// DiagnosticLevel picks the output level matching the verbosity flags
func (c Config) DiagnosticLevel() utils.DiagnosticLevel {
	switch {
	case c.Quiet:
		return utils.DiagnosticError
	case c.Verbose:
		return utils.DiagnosticVerbose
	default:
		return utils.DiagnosticInfo
	}
}
