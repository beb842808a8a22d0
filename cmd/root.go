package cmd

import (
	"flag"
	"fmt"
	"os"

	cfgpkg "github.com/KaramelBytes/hostboard/internal/config"
	"github.com/spf13/cobra"
	"k8s.io/klog/v2"
)

var (
	// Global flags
	cfgFile       string
	debug         bool
	flagSheet     string
	flagFlagStyle string

	// klog flags, exposed through the root command
	klogFlags = flag.NewFlagSet("klog", flag.ContinueOnError)

	// Loaded configuration
	cfg *cfgpkg.Global
)

var rootCmd = &cobra.Command{
	Use:   "hostboard",
	Short: "Hostboard: clean an Airbnb listings export and explore host behavior",
	Long: `Hostboard cleans an Airbnb listings export (CSV, TSV or XLSX), derives price per person,
host type and host tenure, and serves a filterable dashboard comparing host types, tenure
and review scores against price.`,
	SilenceUsage: true,
}

// Execute is the entry point called by main.main()
func Execute() {
	defer klog.Flush()
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "✗ Error:", err)
		klog.Flush()
		os.Exit(1)
	}
}

func init() {
	// Initialize configuration before executing commands
	cobra.OnInitialize(loadConfig)
	klog.InitFlags(klogFlags)
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ~/.hostboard/config.yaml)")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "enable debug output")
	rootCmd.PersistentFlags().StringVar(&flagSheet, "sheet", "", "worksheet to read from XLSX input (overrides config)")
	rootCmd.PersistentFlags().StringVar(&flagFlagStyle, "flag-style", "", "how t/f flags are encoded: label, binary or bool (overrides config)")
	rootCmd.PersistentFlags().AddGoFlagSet(klogFlags)
}

func loadConfig() {
	if debug {
		_ = klogFlags.Set("v", "2")
	}
	c, err := cfgpkg.Load(cfgFile)
	if err != nil {
		// Non-fatal: fall back to built-in defaults
		fmt.Fprintf(os.Stderr, "⚠ Warning: failed to load config: %v\n", err)
		c = &cfgpkg.Global{
			ListenAddr:         ":8501",
			Title:              "Boston Airbnb Host Behavior",
			FlagStyle:          "label",
			SessionTTLMin:      30,
			ChartWidth:         720,
			ChartHeight:        360,
			SnapshotTimeoutSec: 30,
		}
	}
	cfg = c

	// Apply CLI overrides if provided
	f := rootCmd.PersistentFlags()
	if f.Changed("sheet") {
		cfg.SheetName = flagSheet
	}
	if f.Changed("flag-style") && flagFlagStyle != "" {
		cfg.FlagStyle = flagFlagStyle
	}
}
