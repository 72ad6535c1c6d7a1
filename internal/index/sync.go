package index

import (
	"context"
	"log/slog"

	"github.com/starford/sunc/internal/checksum"
	"github.com/starford/sunc/internal/parser"
	"github.com/starford/sunc/internal/storage"
)

// Sync walks the workspace and brings the store up to date:
//   - new or changed worksheets are evaluated and upserted
//   - worksheets removed from disk are deleted from the store
func Sync(ctx context.Context, db *DB, store storage.Provider, ev Evaluator, logger *slog.Logger) error {
	metas, err := store.List("")
	if err != nil {
		return err
	}

	checksums, err := db.AllChecksums()
	if err != nil {
		return err
	}

	disk := make(map[string]struct{}, len(metas))
	for _, m := range metas {
		if err := ctx.Err(); err != nil {
			return err
		}
		disk[m.Path] = struct{}{}

		if checksums[m.Path] == m.Checksum {
			continue
		}

		data, err := store.Read(m.Path)
		if err != nil {
			logger.Warn("sync: read failed", slog.String("path", m.Path), slog.String("error", err.Error()))
			continue
		}
		if err := IndexFile(ctx, db, ev, m.Path, data); err != nil {
			logger.Warn("sync: evaluation failed", slog.String("path", m.Path), slog.String("error", err.Error()))
		} else {
			logger.Debug("sync: evaluated", slog.String("path", m.Path))
		}
	}

	for p := range checksums {
		if _, ok := disk[p]; !ok {
			if err := db.DeleteWorksheet(p); err != nil {
				logger.Warn("sync: delete failed", slog.String("path", p), slog.String("error", err.Error()))
			} else {
				logger.Debug("sync: removed stale", slog.String("path", p))
			}
		}
	}

	return nil
}

// IndexFile parses and evaluates a worksheet and stores the outcome. A
// worksheet that fails to parse or evaluate is still stored, with the error
// recorded and no entries, so it is not retried until its content changes.
// The error is returned as well.
func IndexFile(ctx context.Context, db *DB, ev Evaluator, path string, data []byte) error {
	row := WorksheetRow{
		Path:     path,
		Checksum: checksum.Sum(data),
	}
	ws, err := parser.ParseWorksheet(data)
	if err != nil {
		row.Error = err.Error()
		if upErr := db.UpsertWorksheet(row, nil); upErr != nil {
			return upErr
		}
		return err
	}
	row.Title = ws.Title
	row.LeadingColour = ws.LeadingColour
	row.Basis = ws.Basis

	entries, err := ev.EvaluateWorksheet(ctx, ws)
	if err != nil {
		row.Error = err.Error()
		if upErr := db.UpsertWorksheet(row, nil); upErr != nil {
			return upErr
		}
		return err
	}
	return db.UpsertWorksheet(row, entries)
}
