// Package main is the entry point for the URDF to Inventor converter.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"sort"

	"go.uber.org/zap"

	"github.com/Faultbox/urdf2iv/internal/config"
	"github.com/Faultbox/urdf2iv/internal/logger"
	"github.com/Faultbox/urdf2iv/internal/meshconv"
	"github.com/Faultbox/urdf2iv/internal/pipeline"
)

func main() {
	// Parse CLI flags first
	config.ParseFlags()

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Config error: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	if err := logger.Init(cfg.Logging.Level, cfg.Logging.LogFile); err != nil {
		fmt.Fprintf(os.Stderr, "Logger error: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	if cfg.Convert.URDF == "" {
		fmt.Fprintln(os.Stderr, "Usage: urdf2iv [options] <robot.urdf>")
		os.Exit(2)
	}
	logger.Sugar.Debugf("Config: %+v", cfg)

	if config.Watch() {
		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
		defer stop()
		err := pipeline.Watch(ctx, cfg, meshconv.New(), func(report *pipeline.Report, err error) {
			if err != nil {
				logger.Error("conversion failed", zap.Error(err))
				return
			}
			printReport(cfg, report)
		})
		if err != nil {
			logger.Error("watch failed", zap.Error(err))
			logger.Sync()
			os.Exit(1)
		}
		return
	}

	report, err := pipeline.Run(cfg)
	if err != nil {
		logger.Error("conversion failed", zap.Error(err))
		logger.Sync()
		os.Exit(1)
	}
	printReport(cfg, report)
}

func printReport(cfg *config.Config, report *pipeline.Report) {
	links := make([]string, 0, len(report.Models))
	for l := range report.Models {
		links = append(links, l)
	}
	sort.Strings(links)

	fmt.Printf("Robot:    %s (from %s)\n", report.Robot, report.StartLink)
	fmt.Printf("Output:   %s\n", cfg.Output.Dir)
	fmt.Printf("Scene:    %s\n", report.Scene)
	fmt.Printf("Models:   %d\n", len(report.Models))
	for _, l := range links {
		fmt.Printf("  %-24s %s\n", l, report.Models[l])
	}
	fmt.Printf("Textures: %d\n", len(report.Textures))
	for _, tex := range report.Textures {
		fmt.Printf("  %-40s %dx%d\n", tex.Destination, tex.Width, tex.Height)
	}
	if report.Manifest != "" {
		fmt.Printf("Manifest: %s\n", report.Manifest)
	}
	if report.URDF != "" {
		fmt.Printf("URDF:     %s\n", report.URDF)
	}
}
