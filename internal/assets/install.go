package assets

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"

	"go.uber.org/zap"

	"github.com/Faultbox/urdf2iv/internal/convert"
	"github.com/Faultbox/urdf2iv/internal/logger"
)

// InstalledTexture records one executed copy instruction.
type InstalledTexture struct {
	Source      string
	Destination string // relative to the output directory, slash separated
	TextureInfo
}

// Installer writes conversion results below an output directory.
type Installer struct {
	OutputDir string
	log       *zap.Logger
}

// NewInstaller creates an installer for outputDir.
func NewInstaller(outputDir string) *Installer {
	return &Installer{OutputDir: outputDir, log: logger.Named("assets")}
}

// Install executes copy instructions. Destinations are relative to the output
// directory. Instructions are executed in sorted order.
func (in *Installer) Install(copies map[string]convert.PathSet) ([]InstalledTexture, error) {
	sources := make([]string, 0, len(copies))
	for src := range copies {
		sources = append(sources, src)
	}
	sort.Strings(sources)

	var installed []InstalledTexture
	for _, src := range sources {
		info, err := Probe(src)
		if err != nil {
			return installed, err
		}
		if !info.IsImage() {
			in.log.Warn("texture is not a recognised image", zap.String("path", src))
		}
		for _, dst := range copies[src].Sorted() {
			target, err := in.target(dst)
			if err != nil {
				return installed, err
			}
			if err := copyFile(src, target); err != nil {
				return installed, fmt.Errorf("copying %s: %w", src, err)
			}
			in.log.Debug("installed texture", zap.String("from", src), zap.String("to", dst))
			installed = append(installed, InstalledTexture{Source: src, Destination: dst, TextureInfo: info})
		}
	}
	return installed, nil
}

// WriteModels writes each link's model to relModelDir/<link>/<link><ext> and
// returns those paths relative to the output directory, by link.
func (in *Installer) WriteModels(relModelDir string, models map[string]string, ext string) (map[string]string, error) {
	links := make([]string, 0, len(models))
	for l := range models {
		links = append(links, l)
	}
	sort.Strings(links)

	written := make(map[string]string, len(models))
	for _, l := range links {
		rel := filepath.ToSlash(filepath.Join(relModelDir, l, l+ext))
		if err := in.WriteFile(rel, []byte(models[l])); err != nil {
			return nil, err
		}
		written[l] = rel
	}
	return written, nil
}

// WriteFile writes data to a path relative to the output directory.
func (in *Installer) WriteFile(rel string, data []byte) error {
	target, err := in.target(rel)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(target), 0755); err != nil {
		return err
	}
	return os.WriteFile(target, data, 0644)
}

// target maps a relative destination into the output directory.
func (in *Installer) target(rel string) (string, error) {
	p := filepath.FromSlash(rel)
	if filepath.IsAbs(p) || !filepath.IsLocal(p) {
		return "", fmt.Errorf("destination %q leaves the output directory", rel)
	}
	return filepath.Join(in.OutputDir, p), nil
}

func copyFile(src, dst string) error {
	if err := os.MkdirAll(filepath.Dir(dst), 0755); err != nil {
		return err
	}
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.Create(dst)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}
