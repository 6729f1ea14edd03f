package generator

import (
	"github.com/toyz/synapse/internal/models"
	"github.com/toyz/synapse/internal/templates"
	"github.com/toyz/synapse/internal/utils"
)

// ManagerName is the generated manager type of an aggregate
func ManagerName(aggregate string) string {
	return aggregate + "Manager"
}

// generateManager renders the registration type for one aggregate from its
// metadata list and declared dependency types
func (e *Expander) generateManager(ctx *fileContext, agg *models.AggregateDefinition, metadata []models.MetadataInfo, dependencies []string) (string, string, error) {
	name := ManagerName(agg.Name)

	handlers := make([]templates.ManagerHandler, len(metadata))
	for i, info := range metadata {
		handlers[i] = templates.ManagerHandler{
			Var:      utils.LowerFirst(info.StructName),
			Type:     info.StructName,
			Bindings: info.Dependencies,
		}
	}

	source, err := e.templates.RenderManager(templates.ManagerData{
		Name:         name,
		Aggregate:    agg.Name,
		Runtime:      ctx.runtime,
		Dependencies: dependencies,
		Handlers:     handlers,
	})
	if err != nil {
		return "", "", err
	}
	return name, source, nil
}
