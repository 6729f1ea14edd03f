package cli

import (
	"context"
	"path/filepath"
	"sort"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/toyz/synapse/internal/errors"
	"github.com/toyz/synapse/internal/generator"
	"github.com/toyz/synapse/internal/models"
	"github.com/toyz/synapse/internal/parser"
	"github.com/toyz/synapse/internal/rewriter"
	"github.com/toyz/synapse/internal/typeinfo"
	"github.com/toyz/synapse/internal/utils"
)

// GenerationSummary describes a finished run. Paths are sorted.
type GenerationSummary struct {
	PackagesScanned   int
	FilesScanned      int
	ControllersFound  int
	HandlersGenerated int
	GeneratedFiles    []string
	MetadataFiles     []string
	Duration          time.Duration
}

// Stats returns the summary in the form DiagnosticSystem.Summary prints
func (s GenerationSummary) Stats() map[string]interface{} {
	return map[string]interface{}{
		"Packages scanned":   s.PackagesScanned,
		"Files scanned":      s.FilesScanned,
		"Controllers found":  s.ControllersFound,
		"Handlers generated": s.HandlersGenerated,
		"Files generated":    len(s.GeneratedFiles),
	}
}

// Generator coordinates the CLI generation process
type Generator struct {
	config         Config
	scanner        *DirectoryScanner
	moduleResolver *ModuleResolver
	parser         *parser.Parser
	diagnostics    *utils.DiagnosticSystem
	summary        GenerationSummary
}

// NewGenerator creates a CLI generator for cfg
func NewGenerator(cfg Config, diagnostics *utils.DiagnosticSystem) *Generator {
	if diagnostics == nil {
		diagnostics = utils.NewDiagnosticSystem(cfg.DiagnosticLevel())
	}
	return &Generator{
		config:         cfg,
		scanner:        NewDirectoryScanner(),
		moduleResolver: NewModuleResolver(),
		parser:         parser.NewParser(cfg.Namespace, cfg.BuildTag),
		diagnostics:    diagnostics,
	}
}

// Summary returns the summary of the last run
func (g *Generator) Summary() GenerationSummary {
	return g.summary
}

// fileResult is the outcome for one source file
type fileResult struct {
	expansion *models.FileExpansion
	metadata  string
	err       error
}

// Run scans the configured directories and regenerates every file that
// declares controllers. Files are expanded concurrently; a failing file
// does not stop the others and all failures are returned together.
func (g *Generator) Run(ctx context.Context) error {
	startTime := time.Now()
	g.summary = GenerationSummary{}
	defer func() { g.summary.Duration = time.Since(startTime) }()

	g.diagnostics.Debug("Scanning directories: %v", g.config.Directories)
	dirs, err := g.scanner.ScanDirectories(g.config.Directories)
	if err != nil {
		return err
	}
	g.summary.PackagesScanned = len(dirs)
	if len(dirs) == 0 {
		g.diagnostics.Warn("No Go packages found in %v", g.config.Directories)
		return nil
	}

	files, err := g.scanner.SourceFiles(dirs)
	if err != nil {
		return err
	}
	g.summary.FilesScanned = len(files)

	localPrefix, err := g.moduleResolver.ResolveModuleName(g.config.ModuleName, dirs[0])
	if err != nil {
		g.diagnostics.Verbose("Local imports will not be grouped: %v", err)
	} else {
		g.diagnostics.Debug("Resolved module name: %s", localPrefix)
	}

	expander := g.newExpander(ctx, localPrefix)
	results := make([]fileResult, len(files))

	group, groupCtx := errgroup.WithContext(ctx)
	group.SetLimit(g.config.Jobs)
	for i, path := range files {
		i, path := i, path
		group.Go(func() error {
			if err := groupCtx.Err(); err != nil {
				return err
			}
			results[i] = g.processFile(expander, path)
			return nil
		})
	}
	if err := group.Wait(); err != nil {
		return err
	}

	failures := errors.NewMultipleErrors()
	for _, result := range results {
		if result.err != nil {
			failures.Add(result.err)
			continue
		}
		if result.expansion == nil {
			continue
		}

		g.summary.ControllersFound += len(result.expansion.Expansions)
		for _, expansion := range result.expansion.Expansions {
			g.summary.HandlersGenerated += len(expansion.Handlers)
		}
		g.summary.GeneratedFiles = append(g.summary.GeneratedFiles, result.expansion.OutputPath)
		if result.metadata != "" {
			g.summary.MetadataFiles = append(g.summary.MetadataFiles, result.metadata)
		}
	}
	sort.Strings(g.summary.GeneratedFiles)
	sort.Strings(g.summary.MetadataFiles)

	return failures.ErrorOrNil()
}

// processFile parses, expands and writes one source file. Files without
// controllers produce an empty result.
func (g *Generator) processFile(expander generator.CodeGenerator, path string) fileResult {
	sf, err := g.parser.ParseFile(path)
	if err != nil {
		return fileResult{err: err}
	}
	if len(sf.Aggregates) == 0 {
		return fileResult{}
	}

	g.diagnostics.Verbose("Expanding %s (%d controllers)", path, len(sf.Aggregates))
	fe, err := expander.ExpandFile(sf)
	if err != nil {
		return fileResult{err: err}
	}

	if err := utils.WriteGoFile(fe.OutputPath, fe.Content); err != nil {
		return fileResult{err: errors.WrapFileSystemError("write", fe.OutputPath, err)}
	}
	g.diagnostics.Debug("Wrote %s", fe.OutputPath)

	result := fileResult{expansion: fe}
	if g.config.EmitMetadata {
		importPath, err := g.moduleResolver.BuildPackagePath(g.config.ModuleName, filepath.Dir(fe.SourcePath))
		if err != nil {
			g.diagnostics.Verbose("No import path for %s: %v", fe.SourcePath, err)
		}
		result.metadata, err = WriteMetadata(fe, importPath)
		if err != nil {
			return fileResult{err: err}
		}
	}
	return result
}

func (g *Generator) newExpander(ctx context.Context, localPrefix string) generator.CodeGenerator {
	opts := []generator.Option{
		generator.WithBuildTag(g.config.BuildTag),
		generator.WithRuntimeImport(g.config.RuntimeImport),
		generator.WithLocalPrefix(localPrefix),
	}
	if g.config.ResolveTypes {
		opts = append(opts, generator.WithResolverFactory(g.resolverFactory(ctx)))
	}
	return generator.NewExpander(opts...)
}

// resolverFactory type-checks the package of each file. A package that
// fails to load falls back to untyped provider results.
func (g *Generator) resolverFactory(ctx context.Context) generator.ResolverFactory {
	loader := typeinfo.NewLoader(g.config.BuildTag)
	return func(sf *models.SourceFile) (rewriter.ResultResolver, error) {
		resolver, err := loader.ForFile(ctx, sf)
		if err != nil {
			g.diagnostics.Warn("Type information unavailable for %s, provider results stay untyped: %v", sf.Path, err)
			return nil, nil
		}
		return resolver, nil
	}
}
