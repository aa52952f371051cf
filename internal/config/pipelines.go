package config

// PipelineDefaults holds selection defaults for a single pipeline. It lets
// a config file enable optional step groups or pin an explicit step list
// without repeating flags on every invocation.
type PipelineDefaults struct {
	// Groups are the optional step groups to enable.
	Groups []string `yaml:"groups,omitempty"`

	// Steps is an explicit step list. When set it overrides Groups, the
	// same way the --steps flag overrides --groups.
	Steps []string `yaml:"steps,omitempty"`

	// Profile enables per-step profiling for the pipeline's runs.
	Profile bool `yaml:"profile,omitempty"`
}

// File represents the structure of the .codescan.yaml configuration file.
type File struct {
	// Pipelines maps pipeline names to their selection defaults.
	Pipelines map[string]PipelineDefaults `yaml:"pipelines,omitempty"`

	// Defaults contains selection defaults applied to every pipeline
	// unless overridden in the pipeline-specific configuration.
	Defaults PipelineDefaults `yaml:"defaults,omitempty"`
}

// GetPipelineDefaults returns the selection defaults for a pipeline,
// merging the pipeline-specific configuration over the file defaults.
func (cf *File) GetPipelineDefaults(name string) PipelineDefaults {
	result := cf.Defaults

	if pd, ok := cf.Pipelines[name]; ok {
		if len(pd.Groups) > 0 {
			result.Groups = pd.Groups
		}
		if len(pd.Steps) > 0 {
			result.Steps = pd.Steps
		}
		if pd.Profile {
			result.Profile = true
		}
	}

	return result
}
