// Package ingest writes records into the store from CSV manifests and from
// the Tempest REST API.
package ingest

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/chadmayfield/wxreport/internal/loader"
	"github.com/chadmayfield/wxreport/internal/store"
)

// Importer copies the files named by a manifest into the store, one import
// batch per file.
type Importer struct {
	store  store.Store
	loader *loader.Loader
	logger *slog.Logger
}

// NewImporter creates an Importer.
func NewImporter(s store.Store, l *loader.Loader, logger *slog.Logger) *Importer {
	return &Importer{store: s, loader: l, logger: logger}
}

// Summary describes one completed import run.
type Summary struct {
	Files   int
	Records int
	Skipped int
}

// ImportManifest parses every file in the manifest and saves each file that
// has at least one record. Files are parsed before anything is written, so a
// parse failure leaves the store untouched.
func (im *Importer) ImportManifest(ctx context.Context, manifest string) (Summary, error) {
	results, err := im.loader.LoadFiles(ctx, manifest)
	if err != nil {
		return Summary{}, err
	}

	var sum Summary
	for _, res := range results {
		sum.Skipped += res.Skipped
		if len(res.Records) == 0 {
			im.logger.Warn("no records in source file", "path", res.Path)
			continue
		}
		if err := ctx.Err(); err != nil {
			return sum, err
		}

		imp := &store.Import{Source: res.Path}
		if err := im.store.SaveImport(ctx, imp, res.Records); err != nil {
			return sum, fmt.Errorf("saving %s: %w", res.Path, err)
		}
		sum.Files++
		sum.Records += len(res.Records)
		im.logger.Info("imported source file",
			"path", res.Path,
			"import_id", imp.ID,
			"records", len(res.Records),
		)
	}
	return sum, nil
}
