package streamsvc

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/rzbill/vesta/internal/activity"
	"github.com/rzbill/vesta/internal/ledger"
	"github.com/rzbill/vesta/internal/vesting"
)

// Get returns the stream evaluated at the current ledger time.
func (s *Service) Get(ctx context.Context, streamID string) (View, error) {
	if err := ctx.Err(); err != nil {
		return View{}, err
	}
	now := s.ledgerTime()
	var v View
	err := s.rt.Ledger().View(func(tx *ledger.Tx) error {
		st, err := loadStream(tx, streamID)
		if err != nil {
			return err
		}
		v = newView(st, now)
		return nil
	})
	return v, err
}

// List returns streams in creation order matching the CEL filter, at most
// limit of them (0 for the configured default).
func (s *Service) List(ctx context.Context, filter string, limit int) ([]View, error) {
	cfg := s.rt.Config()
	switch {
	case limit <= 0:
		limit = cfg.DefaultListLimit
	case limit > cfg.MaxListLimit:
		limit = cfg.MaxListLimit
	}
	f, err := newCELFilter(filter)
	if err != nil {
		return nil, fmt.Errorf("%w: filter: %v", vesting.ErrInvalidArgument, err)
	}
	now := s.ledgerTime()
	out := []View{}
	err = s.rt.Ledger().View(func(tx *ledger.Tx) error {
		return tx.Scan(streamPrefix, func(_, val []byte) (bool, error) {
			if err := ctx.Err(); err != nil {
				return false, err
			}
			var st vesting.Stream
			if err := json.Unmarshal(val, &st); err != nil {
				return false, fmt.Errorf("stream scan: %w", err)
			}
			if v := newView(st, now); f.Eval(v) {
				out = append(out, v)
			}
			return len(out) < limit, nil
		})
	})
	return out, err
}

// History returns a page of the stream's activity.
func (s *Service) History(ctx context.Context, streamID string, opts activity.ReadOptions) (HistoryPage, error) {
	if err := ctx.Err(); err != nil {
		return HistoryPage{}, err
	}
	cfg := s.rt.Config()
	switch {
	case opts.Limit <= 0:
		opts.Limit = cfg.DefaultListLimit
	case opts.Limit > cfg.MaxListLimit:
		opts.Limit = cfg.MaxListLimit
	}
	var page HistoryPage
	err := s.rt.Ledger().View(func(tx *ledger.Tx) error {
		if _, err := loadStream(tx, streamID); err != nil {
			return err
		}
		evs, next, err := activity.Read(tx.Reader(), streamID, opts)
		if err != nil {
			return err
		}
		page = HistoryPage{Events: evs, Next: next}
		return nil
	})
	return page, err
}
