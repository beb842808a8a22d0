package cmd

import (
	"context"
	"fmt"

	"github.com/KaramelBytes/hostboard/internal/listings"
	"github.com/KaramelBytes/hostboard/internal/parser"
	"k8s.io/klog/v2"
)

// loadTable reads a listings export and runs the cleaning pipeline once.
func loadTable(ctx context.Context, path string) (*listings.Table, error) {
	style, err := listings.ParseFlagStyle(cfg.FlagStyle)
	if err != nil {
		return nil, err
	}
	raw, err := parser.ReadFile(path, parser.Options{Sheet: cfg.SheetName})
	if err != nil {
		return nil, err
	}
	klog.FromContext(ctx).V(2).Info("loaded export", "path", path, "rows", raw.Nrow(), "columns", raw.Ncol())
	t, err := listings.Clean(ctx, raw, listings.Options{FlagStyle: style})
	if err != nil {
		return nil, fmt.Errorf("clean %s: %w", path, err)
	}
	return t, nil
}
