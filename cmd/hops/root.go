package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/hupe1980/hops"
	"github.com/hupe1980/hops/config"
	"github.com/hupe1980/hops/internal/demo"
	"github.com/hupe1980/hops/logging"
	"github.com/hupe1980/hops/observability"
)

// version is overridden at build time with -ldflags "-X main.version=...".
var version = "dev"

type rootFlags struct {
	configPath string
	manifests  []string
	demo       bool
}

func newRootCmd() *cobra.Command {
	flags := &rootFlags{}

	root := &cobra.Command{
		Use:           "hops",
		Short:         "Serve Go functions as Grasshopper Hops components",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVarP(&flags.configPath, "config", "c", "", "path to a YAML config file")
	root.PersistentFlags().StringSliceVarP(&flags.manifests, "manifest", "m", nil, "HCL component manifest file or directory (repeatable)")
	root.PersistentFlags().BoolVar(&flags.demo, "demo", false, "register the built-in demo components")

	root.AddCommand(newServeCmd(flags), newComponentsCmd(flags), newVersionCmd())
	return root
}

// loadConfig reads the config file and merges the command line manifests.
func (f *rootFlags) loadConfig() (*config.Config, error) {
	cfg, err := config.Load(f.configPath)
	if err != nil {
		return nil, err
	}
	cfg.Components.Manifests = append(cfg.Components.Manifests, f.manifests...)
	return cfg, nil
}

func newLogger(cfg *config.Config) *logging.HopsLogger {
	level, ok := logging.ParseLevel(cfg.Log.Level)
	lc := logging.DefaultLoggerConfig()
	lc.Level = level
	lc.Format = cfg.Log.Format
	lc.AddSource = cfg.Log.AddSource
	lc.Output = os.Stderr
	logger := logging.NewLogger(lc)
	if !ok {
		logger.Warn("config.log_level_unknown", "level", cfg.Log.Level)
	}
	return logger
}

// buildHops creates the Hops instance and registers the demo and manifest
// components. Manifests bind to the demo handlers.
func buildHops(cfg *config.Config, withDemo bool, logger logging.Logger, metrics *observability.Metrics) (*hops.Hops, error) {
	h := hops.New(func(o *hops.Options) {
		o.Logger = logger
		o.ResourceDir = cfg.Components.ResourceDir
		o.DefaultCategory = cfg.Components.DefaultCategory
		o.DefaultSubcategory = cfg.Components.DefaultSubcategory
		o.Metrics = metrics
	})

	if withDemo {
		if err := demo.Register(h); err != nil {
			return nil, fmt.Errorf("register demo components: %w", err)
		}
	}
	if len(cfg.Components.Manifests) > 0 {
		if _, err := h.LoadManifests(demo.Handlers(), cfg.Components.Manifests...); err != nil {
			return nil, fmt.Errorf("load manifests: %w", err)
		}
	}
	return h, nil
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "hops %s\n", version)
		},
	}
}
