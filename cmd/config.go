package cmd

import (
	"fmt"
	"strconv"

	cfgpkg "github.com/KaramelBytes/hostboard/internal/config"
	"github.com/KaramelBytes/hostboard/internal/listings"
	"github.com/spf13/cobra"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "View or set Hostboard configuration",
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show effective configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		out := cmd.OutOrStdout()
		if cfg == nil {
			fmt.Fprintln(out, "No config loaded")
			return nil
		}
		fmt.Fprintf(out, "listen_addr: %s\n", cfg.ListenAddr)
		fmt.Fprintf(out, "title: %s\n", cfg.Title)
		fmt.Fprintf(out, "flag_style: %s\n", cfg.FlagStyle)
		if cfg.SheetName != "" {
			fmt.Fprintf(out, "sheet_name: %s\n", cfg.SheetName)
		}
		fmt.Fprintf(out, "session_ttl_min: %d\n", cfg.SessionTTLMin)
		fmt.Fprintf(out, "chart_width: %d\n", cfg.ChartWidth)
		fmt.Fprintf(out, "chart_height: %d\n", cfg.ChartHeight)
		fmt.Fprintf(out, "snapshot_timeout_sec: %d\n", cfg.SnapshotTimeoutSec)
		return nil
	},
}

var configSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Set a config value and save to disk",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		key, val := args[0], args[1]
		if cfg == nil {
			c, err := cfgpkg.Load(cfgFile)
			if err != nil {
				return err
			}
			cfg = c
		}
		switch key {
		case "listen_addr":
			cfg.ListenAddr = val
		case "title":
			cfg.Title = val
		case "flag_style":
			s, err := listings.ParseFlagStyle(val)
			if err != nil {
				return err
			}
			cfg.FlagStyle = s.String()
		case "sheet_name":
			cfg.SheetName = val
		case "session_ttl_min":
			i, err := strconv.Atoi(val)
			if err != nil || i <= 0 {
				return fmt.Errorf("invalid int for session_ttl_min: %v", val)
			}
			cfg.SessionTTLMin = i
		case "chart_width", "chart_height", "snapshot_timeout_sec":
			i, err := strconv.Atoi(val)
			if err != nil || i <= 0 {
				return fmt.Errorf("invalid int for %s: %v", key, val)
			}
			switch key {
			case "chart_width":
				cfg.ChartWidth = i
			case "chart_height":
				cfg.ChartHeight = i
			default:
				cfg.SnapshotTimeoutSec = i
			}
		default:
			return fmt.Errorf("unknown key: %s", key)
		}
		if err := cfgpkg.Save(cfg, cfgFile); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), "Saved config")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configSetCmd)
}
