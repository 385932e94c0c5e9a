// Package config loads the fabrication-settings bundle the board
// exporter needs (output paths, suffix templates, silkscreen layer
// lists, merge/paste flags) from a YAML file onto a set of defaults.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Config is the on-disk fabrication-settings bundle (spec.md §6.4).
type Config struct {
	OutputBasePath string `yaml:"output_base_path"`

	SuffixDrills     string `yaml:"suffix_drills"`
	SuffixDrillsPTH  string `yaml:"suffix_drills_pth"`
	SuffixDrillsNPTH string `yaml:"suffix_drills_npth"`
	SuffixOutlines   string `yaml:"suffix_outlines"`

	SuffixCopperTop   string `yaml:"suffix_copper_top"`
	SuffixCopperBot   string `yaml:"suffix_copper_bot"`
	SuffixCopperInner string `yaml:"suffix_copper_inner"`

	SuffixSolderMaskTop string `yaml:"suffix_solder_mask_top"`
	SuffixSolderMaskBot string `yaml:"suffix_solder_mask_bot"`

	SuffixSilkscreenTop string `yaml:"suffix_silkscreen_top"`
	SuffixSilkscreenBot string `yaml:"suffix_silkscreen_bot"`

	SuffixSolderPasteTop string `yaml:"suffix_solder_paste_top"`
	SuffixSolderPasteBot string `yaml:"suffix_solder_paste_bot"`

	MergeDrillFiles bool `yaml:"merge_drill_files"`

	SilkscreenLayersTop []string `yaml:"silkscreen_layers_top"`
	SilkscreenLayersBot []string `yaml:"silkscreen_layers_bot"`

	EnableSolderPasteTop bool `yaml:"enable_solder_paste_top"`
	EnableSolderPasteBot bool `yaml:"enable_solder_paste_bot"`
}

// DefaultConfig returns the conventional suffixes used when no config
// file is supplied, matching common fabricator naming conventions.
func DefaultConfig() *Config {
	return &Config{
		OutputBasePath: "output",

		SuffixDrills:     ".drl",
		SuffixDrillsPTH:  "_PTH.drl",
		SuffixDrillsNPTH: "_NPTH.drl",
		SuffixOutlines:   "_Outline.gbr",

		SuffixCopperTop:   "_Top.gbr",
		SuffixCopperBot:   "_Bottom.gbr",
		SuffixCopperInner: "_In{{CU_LAYER}}.gbr",

		SuffixSolderMaskTop: "_Top_Mask.gbr",
		SuffixSolderMaskBot: "_Bottom_Mask.gbr",

		SuffixSilkscreenTop: "_Top_Silkscreen.gbr",
		SuffixSilkscreenBot: "_Bottom_Silkscreen.gbr",

		SuffixSolderPasteTop: "_Top_Paste.gbr",
		SuffixSolderPasteBot: "_Bottom_Paste.gbr",

		MergeDrillFiles: true,

		EnableSolderPasteTop: false,
		EnableSolderPasteBot: false,
	}
}

// LoadConfig reads path as YAML and unmarshals it onto DefaultConfig,
// so a config file only needs to mention the keys it overrides.
func LoadConfig(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}

	if !filepath.IsAbs(cfg.OutputBasePath) {
		dir, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("resolving output base path: %w", err)
		}
		cfg.OutputBasePath = filepath.Join(dir, cfg.OutputBasePath)
	}

	return cfg, nil
}
