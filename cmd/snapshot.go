package cmd

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/KaramelBytes/hostboard/internal/render"
	"github.com/KaramelBytes/hostboard/internal/server"
	"github.com/KaramelBytes/hostboard/internal/snapshot"
	"github.com/KaramelBytes/hostboard/internal/utils"
	"github.com/spf13/cobra"
)

var (
	snapOut     string
	snapWidth   int
	snapHeight  int
	snapTimeout int
	snapQuery   string
)

var snapshotCmd = &cobra.Command{
	Use:   "snapshot <url|file>",
	Short: "Render the dashboard in a headless browser and save a PNG",
	Long: `Snapshot opens a dashboard in headless Chrome and writes a full-page PNG.
Given an http(s) URL it captures that running dashboard. Given a listings export it
serves the dashboard for that file on a loopback port first. --query accepts the same
parameters as the dashboard URL, e.g. "neighborhood=Back Bay&superhost=true".`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		q, err := url.ParseQuery(snapQuery)
		if err != nil {
			return fmt.Errorf("invalid --query: %w", err)
		}
		target, stop, err := snapshotTarget(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		defer stop()
		if len(q) > 0 {
			u, err := url.Parse(target)
			if err != nil {
				return fmt.Errorf("invalid url: %w", err)
			}
			merged := u.Query()
			for k, vs := range q {
				merged[k] = vs
			}
			u.RawQuery = merged.Encode()
			target = u.String()
		}

		timeout := time.Duration(cfg.SnapshotTimeoutSec) * time.Second
		if cmd.Flags().Changed("timeout") {
			timeout = time.Duration(snapTimeout) * time.Second
		}
		png, err := snapshot.Capture(cmd.Context(), target, snapshot.Options{
			Width:   snapWidth,
			Height:  snapHeight,
			Timeout: timeout,
		})
		if err != nil {
			return err
		}
		if err := utils.SafeWriteFile(snapOut, png); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "✓ Saved dashboard snapshot to %s\n", snapOut)
		return nil
	},
}

// snapshotTarget returns the URL to capture. A listings file is served on a
// loopback port until stop is called.
func snapshotTarget(ctx context.Context, arg string) (target string, stop func(), err error) {
	if strings.HasPrefix(arg, "http://") || strings.HasPrefix(arg, "https://") {
		return arg, func() {}, nil
	}
	t, err := loadTable(ctx, arg)
	if err != nil {
		return "", nil, err
	}
	srv := server.New(t, server.Options{
		Title:      cfg.Title,
		Size:       render.Size{Width: cfg.ChartWidth, Height: cfg.ChartHeight},
		SessionTTL: cfg.SessionTTL(),
	})
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		return "", nil, fmt.Errorf("listen: %w", err)
	}
	hs := &http.Server{Handler: srv.Handler(), ReadHeaderTimeout: 10 * time.Second}
	go func() { _ = hs.Serve(ln) }()
	stop = func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = hs.Shutdown(ctx)
	}
	return "http://" + ln.Addr().String() + "/", stop, nil
}

func init() {
	rootCmd.AddCommand(snapshotCmd)
	snapshotCmd.Flags().StringVarP(&snapOut, "out", "o", "dashboard.png", "output PNG file")
	snapshotCmd.Flags().IntVar(&snapWidth, "width", 1280, "browser window width")
	snapshotCmd.Flags().IntVar(&snapHeight, "height", 900, "browser window height")
	snapshotCmd.Flags().IntVar(&snapTimeout, "timeout", 0, "capture timeout in seconds (overrides config)")
	snapshotCmd.Flags().StringVar(&snapQuery, "query", "", "dashboard query string")
}
