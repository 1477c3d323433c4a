package config

import (
	"flag"
	"strings"
)

var (
	flagConfig    = flag.String("config", "", "Path to config file")
	flagDebug     = flag.Bool("debug", false, "Enable debug logging")
	flagOut       = flag.String("out", "", "Output directory")
	flagFrom      = flag.String("from", "", "Convert the subtree below this link")
	flagScale     = flag.Float64("scale", 0, "Scale factor for meshes and transforms")
	flagMaterial  = flag.String("material", "", "Named colour replacing mesh materials")
	flagAllowRoot = flag.Bool("allow-root", false, "Accept textures that only share the filesystem root")
	flagLog       = flag.String("log", "", "Log file path")
	flagPackages  = flag.String("packages", "", "Package directories as name=dir,name=dir")
	flagWatch     = flag.Bool("watch", false, "Convert again whenever the description or its packages change")
)

// ParseFlags parses command-line flags. Call this early in main().
func ParseFlags() {
	flag.Parse()
}

// ConfigPath returns the explicit config path if provided via --config flag.
func ConfigPath() string {
	return *flagConfig
}

// Watch reports whether --watch was given.
func Watch() bool {
	return *flagWatch
}

// applyFlags applies CLI flag overrides to the config. The first positional
// argument names the robot description.
func applyFlags(cfg *Config) {
	if *flagDebug {
		cfg.Logging.Level = "debug"
	}
	if flag.NArg() > 0 {
		cfg.Convert.URDF = flag.Arg(0)
	}
	if *flagOut != "" {
		cfg.Output.Dir = *flagOut
	}
	if *flagFrom != "" {
		cfg.Convert.StartLink = *flagFrom
	}
	if *flagScale > 0 {
		cfg.Convert.ScaleFactor = *flagScale
	}
	if *flagMaterial != "" {
		cfg.Convert.Material = *flagMaterial
	}
	if *flagAllowRoot {
		cfg.Output.RejectRootAncestor = false
	}
	if *flagLog != "" {
		cfg.Logging.LogFile = *flagLog
	}
	if *flagPackages != "" {
		if cfg.Convert.Packages == nil {
			cfg.Convert.Packages = map[string]string{}
		}
		for name, dir := range parsePackages(*flagPackages) {
			cfg.Convert.Packages[name] = dir
		}
	}
}

// parsePackages parses "name=dir,name=dir". Malformed entries are ignored.
func parsePackages(s string) map[string]string {
	pkgs := map[string]string{}
	for _, entry := range strings.Split(s, ",") {
		name, dir, ok := strings.Cut(strings.TrimSpace(entry), "=")
		if !ok || name == "" || dir == "" {
			continue
		}
		pkgs[name] = dir
	}
	return pkgs
}
