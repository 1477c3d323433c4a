// Package config handles converter configuration loading and management.
package config

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
)

// ErrInvalidConfig is returned by Validate.
var ErrInvalidConfig = errors.New("invalid config")

// Config holds all converter settings.
type Config struct {
	Convert ConvertConfig `yaml:"convert"`
	Output  OutputConfig  `yaml:"output"`
	Logging LoggingConfig `yaml:"logging"`
}

// ConvertConfig holds the input model and conversion parameters.
type ConvertConfig struct {
	URDF      string `yaml:"urdf"`       // Robot description to convert
	StartLink string `yaml:"start_link"` // Empty converts from the root

	ScaleFactor float64 `yaml:"scale_factor"`
	// ScaleModel also scales the robot's own transforms, not only the meshes.
	ScaleModel bool `yaml:"scale_model"`

	Material        string `yaml:"material"` // Named colour replacing mesh materials
	OutputExtension string `yaml:"output_extension"`

	// VisualCorrectionRPY is applied in every visual's frame, e.g. to
	// turn Y-up meshes into the Z-up convention.
	VisualCorrectionRPY [3]float64 `yaml:"visual_correction_rpy"`

	// Packages maps ROS package names to directories for package:// URIs.
	Packages map[string]string `yaml:"packages"`
}

// OutputConfig holds the output layout.
type OutputConfig struct {
	Dir        string `yaml:"dir"`
	ModelDir   string `yaml:"model_dir"`   // Relative to Dir, one subdirectory per link
	TextureDir string `yaml:"texture_dir"` // Relative to Dir
	SceneFile  string `yaml:"scene_file"`  // Relative to Dir
	Manifest   string `yaml:"manifest"`    // Relative to Dir, empty to skip
	WriteURDF  string `yaml:"write_urdf"`  // Relative to Dir, empty to skip

	// RejectRootAncestor fails relocation when textures only share "/".
	RejectRootAncestor bool `yaml:"reject_root_ancestor"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level   string `yaml:"level"`
	LogFile string `yaml:"log_file"`
}

// Default returns a Config with sensible default values.
func Default() *Config {
	return &Config{
		Convert: ConvertConfig{
			ScaleFactor:     1,
			ScaleModel:      true,
			OutputExtension: ".iv",
			Packages:        map[string]string{},
		},
		Output: OutputConfig{
			Dir:                "out",
			ModelDir:           "iv",
			TextureDir:         "tex",
			SceneFile:          "robot.iv",
			Manifest:           "manifest.yaml",
			RejectRootAncestor: true,
		},
		Logging: LoggingConfig{
			Level:   "info",
			LogFile: "",
		},
	}
}

// Validate checks the settings a conversion cannot run without.
func (c *Config) Validate() error {
	switch {
	case c.Convert.URDF == "":
		return fmt.Errorf("%w: no robot description given", ErrInvalidConfig)
	case c.Convert.ScaleFactor <= 0:
		return fmt.Errorf("%w: scale_factor must be positive, got %g", ErrInvalidConfig, c.Convert.ScaleFactor)
	case !strings.HasPrefix(c.Convert.OutputExtension, "."):
		return fmt.Errorf("%w: output_extension %q must start with '.'", ErrInvalidConfig, c.Convert.OutputExtension)
	case c.Output.Dir == "":
		return fmt.Errorf("%w: output dir is empty", ErrInvalidConfig)
	}
	for name, dir := range map[string]string{
		"model_dir":   c.Output.ModelDir,
		"texture_dir": c.Output.TextureDir,
		"scene_file":  c.Output.SceneFile,
	} {
		if !filepath.IsLocal(dir) {
			return fmt.Errorf("%w: %s %q must be a path inside the output dir", ErrInvalidConfig, name, dir)
		}
	}
	return nil
}
