package export

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/agentic-research/notional/internal/block"
	"github.com/agentic-research/notional/internal/session"
)

// Options controls what Database copies.
type Options struct {
	Filter any  // passed to the query as given
	Limit  int  // 0 exports every page
	Bodies bool // also fetch each page body, recursively
	Log    *zap.Logger
}

// Database writes the database dbID, the pages a query over it returns
// and, optionally, their bodies. It returns the number of pages written.
func Database(ctx context.Context, s *session.Session, dbID string, w *SQLiteWriter, opts Options) (int, error) {
	log := opts.Log
	if log == nil {
		log = zap.NewNop()
	}

	db, err := s.FetchDatabase(ctx, dbID)
	if err != nil {
		return 0, err
	}
	if err := w.AddDatabase(db); err != nil {
		return 0, err
	}

	it, err := s.Query(dbID).Filter(opts.Filter).Limit(opts.Limit).Execute(ctx)
	if err != nil {
		return 0, err
	}
	n := 0
	for p, err := range it.All(ctx) {
		if err != nil {
			return n, err
		}
		if opts.Bodies {
			body, err := p.LoadBody(ctx)
			if err != nil {
				return n, fmt.Errorf("load body of %s: %w", p.ID, err)
			}
			if err := block.LoadAll(ctx, body); err != nil {
				return n, fmt.Errorf("load body of %s: %w", p.ID, err)
			}
		}
		if err := w.AddPage(p); err != nil {
			return n, err
		}
		n++
		log.Debug("exported page", zap.String("id", p.ID), zap.String("title", p.Title()))
	}
	log.Info("export finished", zap.String("database", db.Name()), zap.Int("pages", n), zap.Int("batches", it.PageNumber()))
	return n, nil
}
