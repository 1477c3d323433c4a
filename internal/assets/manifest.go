package assets

import (
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Manifest summarises a conversion run.
type Manifest struct {
	Robot       string  `yaml:"robot"`
	Source      string  `yaml:"source"`
	StartLink   string  `yaml:"start_link"`
	ScaleFactor float64 `yaml:"scale_factor"`
	Scene       string  `yaml:"scene"`
	// TextureRoot is the common ancestor the texture layout was taken from.
	TextureRoot string          `yaml:"texture_root,omitempty"`
	Links       []ManifestLink  `yaml:"links"`
	Textures    []ManifestImage `yaml:"textures,omitempty"`
}

// ManifestLink is one converted link.
type ManifestLink struct {
	Name     string   `yaml:"name"`
	Model    string   `yaml:"model"`
	Textures []string `yaml:"textures,omitempty"`
}

// ManifestImage is one installed texture.
type ManifestImage struct {
	Source      string `yaml:"source"`
	Destination string `yaml:"destination"`
	MIME        string `yaml:"mime,omitempty"`
	Width       int    `yaml:"width,omitempty"`
	Height      int    `yaml:"height,omitempty"`
}

// NewManifestImages converts installed textures for the manifest.
func NewManifestImages(installed []InstalledTexture) []ManifestImage {
	images := make([]ManifestImage, len(installed))
	for i, t := range installed {
		images[i] = ManifestImage{
			Source:      t.Source,
			Destination: t.Destination,
			MIME:        t.MIME,
			Width:       t.Width,
			Height:      t.Height,
		}
	}
	return images
}

// WriteManifest writes m as YAML.
func WriteManifest(path string, m *Manifest) error {
	data, err := yaml.Marshal(m)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// ReadManifest reads a manifest written by WriteManifest.
func ReadManifest(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	m := &Manifest{}
	if err := yaml.Unmarshal(data, m); err != nil {
		return nil, err
	}
	return m, nil
}
