package cmd

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/KaramelBytes/hostboard/internal/render"
	"github.com/KaramelBytes/hostboard/internal/server"
	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
)

var (
	serveAddr  string
	serveTitle string
)

var serveCmd = &cobra.Command{
	Use:   "serve <file>",
	Short: "Clean a listings export and serve the dashboard",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		t, err := loadTable(ctx, args[0])
		if err != nil {
			return err
		}
		addr := cfg.ListenAddr
		if cmd.Flags().Changed("addr") {
			addr = serveAddr
		}
		title := cfg.Title
		if cmd.Flags().Changed("title") {
			title = serveTitle
		}
		srv := server.New(t, server.Options{
			Addr:       addr,
			Title:      title,
			Size:       render.Size{Width: cfg.ChartWidth, Height: cfg.ChartHeight},
			SessionTTL: cfg.SessionTTL(),
		})
		fmt.Fprintf(cmd.OutOrStdout(), "✓ Cleaned %s listings from %s\n", humanize.Comma(int64(t.Len())), args[0])
		fmt.Fprintf(cmd.OutOrStdout(), "✓ Dashboard listening on %s (Ctrl+C to stop)\n", addr)
		return srv.ListenAndServe(ctx)
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "listen address (overrides config listen_addr)")
	serveCmd.Flags().StringVar(&serveTitle, "title", "", "dashboard title (overrides config title)")
}
