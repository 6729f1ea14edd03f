package parser

import "github.com/toyz/synapse/internal/utils"

const (
	// DefaultBuildTag excludes annotated sources from normal builds
	DefaultBuildTag = "synapse"

	// GeneratedSuffix is appended to the source file name for its output
	GeneratedSuffix = utils.GeneratedSuffix
)
