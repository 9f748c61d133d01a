// Package config provides configuration loading and validation for Atlas.
//
// Configuration is loaded from a YAML file, defaults are applied, and
// environment variables of the form ATLAS_SECTION_FIELD override file
// values. The final configuration is validated before use.
package config
