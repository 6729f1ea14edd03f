package generator

import (
	"github.com/toyz/synapse/internal/models"
	"github.com/toyz/synapse/internal/rewriter"
)

// CodeGenerator expands parsed controller files into generated
// compilation units
type CodeGenerator interface {
	ExpandFile(sf *models.SourceFile) (*models.FileExpansion, error)
	Expand(sf *models.SourceFile, agg *models.AggregateDefinition) (*models.Expansion, error)
}

var _ CodeGenerator = (*Expander)(nil)

// ResolverFactory supplies the result-type resolver used while rewriting
// the methods of one file. A nil resolver leaves provider results untyped.
type ResolverFactory func(sf *models.SourceFile) (rewriter.ResultResolver, error)
