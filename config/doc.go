// Package config loads permission policy documents from YAML files.
package config
