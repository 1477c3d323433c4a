// Package pipeline runs a complete conversion: robot description in,
// Inventor models, textures, scene and manifest out.
package pipeline

import (
	"fmt"
	"path"
	"path/filepath"
	"sort"
	"time"

	"go.uber.org/zap"

	"github.com/Faultbox/urdf2iv/internal/assets"
	"github.com/Faultbox/urdf2iv/internal/config"
	"github.com/Faultbox/urdf2iv/internal/convert"
	"github.com/Faultbox/urdf2iv/internal/logger"
	"github.com/Faultbox/urdf2iv/internal/meshconv"
	"github.com/Faultbox/urdf2iv/internal/scene"
	"github.com/Faultbox/urdf2iv/pkg/inventor"
	"github.com/Faultbox/urdf2iv/pkg/math"
	"github.com/Faultbox/urdf2iv/pkg/transform"
	"github.com/Faultbox/urdf2iv/pkg/traverser"
	"github.com/Faultbox/urdf2iv/pkg/urdf"
)

// Report summarises a finished run. Paths are relative to the output directory.
type Report struct {
	Robot     string
	StartLink string
	Models    map[string]string
	Textures  []assets.InstalledTexture
	Scene     string
	Manifest  string
	URDF      string
}

// Run converts the robot described by cfg.
func Run(cfg *config.Config) (*Report, error) {
	return RunWith(cfg, meshconv.New())
}

// RunWith is Run with a custom mesh converter.
func RunWith(cfg *config.Config, conv meshconv.Converter) (*Report, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	log := logger.Named("pipeline")
	start := time.Now()

	source, err := filepath.Abs(cfg.Convert.URDF)
	if err != nil {
		return nil, err
	}
	model, err := urdf.ParseFile(source)
	if err != nil {
		return nil, err
	}
	t := traverser.New(model)

	from := cfg.Convert.StartLink
	if from == "" {
		from = t.RootName()
	}
	if _, err := t.Resolve(from); err != nil {
		return nil, err
	}
	log.Info("loaded robot",
		zap.String("robot", model.Name),
		zap.String("from", from),
		zap.Int("links", len(model.Links)),
		zap.Int("meshes", model.MeshCount()))

	factor := cfg.Convert.ScaleFactor
	if cfg.Convert.ScaleModel && factor != 1 {
		if err := transform.ScaleModel(model, factor); err != nil {
			return nil, fmt.Errorf("scaling model: %w", err)
		}
		log.Debug("scaled model", zap.Float64("factor", factor))
	}

	cache := assets.NewCachingConverter(conv)
	col, err := convert.CollectMeshes(t, from, convert.Options{
		ScaleFactor: factor,
		Material:    cfg.Convert.Material,
		Extension:   cfg.Convert.OutputExtension,
		Correction:  math.NewPose([3]float64{}, cfg.Convert.VisualCorrectionRPY),
		Resolver: &convert.Resolver{
			BaseDir:  filepath.Dir(source),
			Packages: cfg.Convert.Packages,
		},
	}, cache)
	if err != nil {
		return nil, err
	}
	hits, misses := cache.Stats()
	log.Info("collected meshes",
		zap.Int("models", len(col.Models)),
		zap.Int("textured_links", len(col.Textures)),
		zap.Int("cache_hits", hits),
		zap.Int("cache_misses", misses))

	models := col.Models
	var reloc *convert.Relocation
	if len(col.Textures) > 0 {
		reloc, err = convert.Relocate(cfg.Output.ModelDir, cfg.Output.TextureDir, col.Textures, col.Models,
			convert.RelocateOptions{RejectRootAncestor: cfg.Output.RejectRootAncestor})
		if err != nil {
			return nil, err
		}
		models = reloc.Models
		log.Debug("relocated textures", zap.String("ancestor", reloc.Ancestor), zap.Int("copies", len(reloc.Copies)))
	} else {
		log.Info("no textures referenced")
	}

	inst := assets.NewInstaller(cfg.Output.Dir)
	report := &Report{Robot: model.Name, StartLink: from, Scene: filepath.ToSlash(cfg.Output.SceneFile)}
	if report.Models, err = inst.WriteModels(cfg.Output.ModelDir, models, cfg.Convert.OutputExtension); err != nil {
		return nil, fmt.Errorf("writing models: %w", err)
	}
	if reloc != nil {
		if report.Textures, err = inst.Install(reloc.Copies); err != nil {
			return nil, fmt.Errorf("installing textures: %w", err)
		}
	}

	// The scene includes the models relative to its own directory.
	sceneDir := path.Dir(report.Scene)
	includes := make(map[string]string, len(report.Models))
	for link, file := range report.Models {
		includes[link] = convert.RelativePath(sceneDir, file)
	}
	root, err := scene.Build(t, from, includes)
	if err != nil {
		return nil, err
	}
	if err := inst.WriteFile(report.Scene, []byte(inventor.Marshal(root))); err != nil {
		return nil, fmt.Errorf("writing scene: %w", err)
	}

	if cfg.Output.WriteURDF != "" {
		report.URDF = filepath.ToSlash(cfg.Output.WriteURDF)
		if err := urdf.WriteFile(model, filepath.Join(cfg.Output.Dir, cfg.Output.WriteURDF)); err != nil {
			return nil, fmt.Errorf("writing robot description: %w", err)
		}
	}

	if cfg.Output.Manifest != "" {
		report.Manifest = filepath.ToSlash(cfg.Output.Manifest)
		m := buildManifest(report, source, factor, col, reloc)
		if err := assets.WriteManifest(filepath.Join(cfg.Output.Dir, cfg.Output.Manifest), m); err != nil {
			return nil, fmt.Errorf("writing manifest: %w", err)
		}
	}

	log.Info("conversion finished",
		zap.String("out", cfg.Output.Dir),
		zap.Int("models", len(report.Models)),
		zap.Int("textures", len(report.Textures)),
		zap.Duration("took", time.Since(start)))
	return report, nil
}

func buildManifest(r *Report, source string, factor float64, col *convert.Collection, reloc *convert.Relocation) *assets.Manifest {
	m := &assets.Manifest{
		Robot:       r.Robot,
		Source:      source,
		StartLink:   r.StartLink,
		ScaleFactor: factor,
		Scene:       r.Scene,
		Textures:    assets.NewManifestImages(r.Textures),
	}
	if reloc != nil {
		m.TextureRoot = reloc.Ancestor
	}

	links := make([]string, 0, len(r.Models))
	for l := range r.Models {
		links = append(links, l)
	}
	sort.Strings(links)
	for _, l := range links {
		entry := assets.ManifestLink{Name: l, Model: r.Models[l]}
		if reloc != nil {
			for _, t := range col.Textures[l].Sorted() {
				entry.Textures = append(entry.Textures, reloc.Copies[t].Sorted()...)
			}
		}
		m.Links = append(m.Links, entry)
	}
	return m
}
