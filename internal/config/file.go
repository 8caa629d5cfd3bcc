package config

import (
	"fmt"

	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
)

// hclFile is the on-disk shape of a configuration file:
//
//	root_directory    = "/opt/game"
//	platform_override = "linux"
//	locale            = "en-US"
//	preload           = ["zlib.so"]
type hclFile struct {
	RootDirectory    *string   `hcl:"root_directory,optional"`
	PlatformOverride *string   `hcl:"platform_override,optional"`
	Locale           *string   `hcl:"locale,optional"`
	Preload          *[]string `hcl:"preload,optional"`
	ModuleSuffix     *string   `hcl:"module_suffix,optional"`
	LogLevel         *string   `hcl:"log_level,optional"`
}

// LoadFile overlays the attributes present in the HCL file at path onto
// cfg.
func LoadFile(path string, cfg *Config) error {
	parser := hclparse.NewParser()
	file, diags := parser.ParseHCLFile(path)
	if diags.HasErrors() {
		return fmt.Errorf("failed to parse config file %s: %w", path, diags)
	}

	var parsed hclFile
	diags = gohcl.DecodeBody(file.Body, nil, &parsed)
	if diags.HasErrors() {
		return fmt.Errorf("failed to decode config file %s: %w", path, diags)
	}

	if parsed.RootDirectory != nil {
		cfg.RootDirectory = *parsed.RootDirectory
	}
	if parsed.PlatformOverride != nil {
		cfg.PlatformOverride = *parsed.PlatformOverride
	}
	if parsed.Locale != nil {
		cfg.Locale = *parsed.Locale
	}
	if parsed.Preload != nil {
		cfg.Preload = *parsed.Preload
	}
	if parsed.ModuleSuffix != nil {
		cfg.ModuleSuffix = *parsed.ModuleSuffix
	}
	if parsed.LogLevel != nil {
		cfg.LogLevel = *parsed.LogLevel
	}
	return nil
}
