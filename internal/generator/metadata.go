package generator

import (
	"github.com/toyz/synapse/internal/models"
)

// assembleMetadata pairs the handler name with its bindings in field order
func assembleMetadata(artifact *models.GeneratedArtifact) models.MetadataInfo {
	bindings := make([]models.DependencyBinding, len(artifact.Injections))
	for i, inj := range artifact.Injections {
		bindings[i] = models.DependencyBinding{
			FieldName:  inj.HandlerField(),
			ProviderID: inj.ProviderID(),
		}
	}
	return models.MetadataInfo{
		StructName:   artifact.HandlerName,
		Dependencies: bindings,
	}
}
