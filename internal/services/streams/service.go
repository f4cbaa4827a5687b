package streamsvc

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/rzbill/vesta/internal/activity"
	"github.com/rzbill/vesta/internal/ledger"
	"github.com/rzbill/vesta/internal/runtime"
	pebblestore "github.com/rzbill/vesta/internal/storage/pebble"
	"github.com/rzbill/vesta/internal/vesting"
	"github.com/rzbill/vesta/pkg/id"
	logpkg "github.com/rzbill/vesta/pkg/log"
)

// ErrNotFound is returned for an unknown stream id.
var ErrNotFound = errors.New("stream not found")

// MaxIdempotencyKeyLen bounds idempotency keys.
const MaxIdempotencyKeyLen = 128

// Service runs stream operations against the runtime's ledger.
type Service struct {
	rt     *runtime.Runtime
	logger logpkg.Logger
	ids    *id.Generator
	now    func() time.Time
	// last is the highest ledger time handed out; time never runs backwards.
	last atomic.Uint64
}

// New returns a Service using a default logger.
func New(rt *runtime.Runtime) *Service {
	return NewWithLogger(rt, nil)
}

// NewWithLogger returns a Service using the provided logger.
func NewWithLogger(rt *runtime.Runtime, logger logpkg.Logger) *Service {
	if logger == nil {
		logger = logpkg.NewLogger()
	}
	return &Service{
		rt:     rt,
		logger: logger.With(logpkg.Component("streams")),
		ids:    id.NewGenerator(),
		now:    time.Now,
	}
}

// SetClock replaces the ledger clock.
func (s *Service) SetClock(now func() time.Time) { s.now = now }

// ledgerTime is the current ledger time in seconds, clamped so it never
// decreases across calls.
func (s *Service) ledgerTime() uint64 {
	var now uint64
	if t := s.now().Unix(); t > 0 {
		now = uint64(t)
	}
	for {
		last := s.last.Load()
		if now <= last {
			return last
		}
		if s.last.CompareAndSwap(last, now) {
			return now
		}
	}
}

// Create opens a stream funded by caller.
func (s *Service) Create(ctx context.Context, caller vesting.Address, req CreateRequest) (Result, error) {
	if len(req.IdempotencyKey) > MaxIdempotencyKeyLen {
		return Result{}, fmt.Errorf("%w: idempotency key longer than %d", vesting.ErrInvalidArgument, MaxIdempotencyKeyLen)
	}
	if err := caller.Validate(); err != nil {
		return Result{}, fmt.Errorf("%w: signer: %v", vesting.ErrUnauthorized, err)
	}
	var res Result
	var t vesting.Transition
	err := s.rt.Ledger().Update(ctx, func(tx *ledger.Tx) error {
		now := s.ledgerTime()
		if req.IdempotencyKey != "" {
			prev, err := tx.Get(idemKey(string(caller), req.IdempotencyKey))
			switch {
			case err == nil:
				st, err := loadStream(tx, string(prev))
				if err != nil {
					return err
				}
				res = Result{Stream: newView(st, now), Replayed: true}
				return nil
			case !pebblestore.IsNotFound(err):
				return err
			}
		}
		if _, err := tx.Mint(req.Mint); err != nil {
			return err
		}
		if err := notEscrow(tx, req.Recipient, "recipient"); err != nil {
			return err
		}
		if !req.Partner.IsZero() {
			if err := notEscrow(tx, req.Partner, "partner"); err != nil {
				return err
			}
		}
		fees := s.rt.FeePolicy()
		if !req.Partner.IsZero() {
			override, ok, err := tx.PartnerFees(req.Partner)
			if err != nil {
				return err
			}
			if ok {
				fees = override
			}
		}

		streamID := s.ids.Next().String()
		var err error
		t, err = vesting.Create(vesting.CreateParams{
			ID:                 streamID,
			Sender:             caller,
			Recipient:          req.Recipient,
			Mint:               req.Mint,
			Escrow:             vesting.Address(s.rt.Config().EscrowPrefix + streamID),
			Partner:            req.Partner,
			Treasury:           vesting.Address(s.rt.Config().Treasury),
			Start:              req.Start,
			Period:             req.Period,
			AmountPerPeriod:    req.AmountPerPeriod,
			Cliff:              req.Cliff,
			CliffAmount:        req.CliffAmount,
			NetAmountDeposited: req.NetAmountDeposited,
			WithdrawFrequency:  req.WithdrawFrequency,
			Name:               req.Name,
			Flags:              req.Flags,
			Fees:               fees,
		}, now)
		if err != nil {
			return err
		}
		bal, err := tx.Balance(req.Mint, caller)
		if err != nil {
			return err
		}
		if need := t.Debit(caller); bal < need {
			return fmt.Errorf("%w: %s holds %d, stream needs %d", vesting.ErrInsufficientFunds, caller, bal, need)
		}
		if err := tx.OpenEscrow(req.Mint, t.Stream.Escrow, streamID); err != nil {
			return err
		}
		seq, err := s.commit(tx, t, caller, now)
		if err != nil {
			return err
		}
		if req.IdempotencyKey != "" {
			if err := tx.Set(idemKey(string(caller), req.IdempotencyKey), []byte(streamID)); err != nil {
				return err
			}
		}
		res = resultOf(t, now, seq)
		return nil
	})
	if err != nil {
		s.logger.Debug("create rejected", logpkg.Str("sender", string(caller)), logpkg.Str("code", vesting.Code(err)), logpkg.Err(err))
		return Result{}, err
	}
	if res.Replayed {
		s.logger.Info("stream create replayed", logpkg.Str("stream", res.Stream.ID), logpkg.Str("idempotency_key", req.IdempotencyKey))
		return res, nil
	}
	s.logger.Info("stream created",
		logpkg.Str("stream", res.Stream.ID),
		logpkg.Str("sender", string(caller)),
		logpkg.Str("recipient", string(req.Recipient)),
		logpkg.Str("mint", string(req.Mint)),
		logpkg.Uint64("amount", req.NetAmountDeposited),
		logpkg.Uint64("fee", t.Fee.Total()),
	)
	return res, nil
}

// Withdraw releases up to amount (0 for everything available) to the
// recipient.
func (s *Service) Withdraw(ctx context.Context, caller vesting.Address, streamID string, amount uint64) (Result, error) {
	return s.run(ctx, caller, streamID, func(_ *ledger.Tx, st vesting.Stream, now uint64) (vesting.Transition, error) {
		return vesting.Withdraw(st, caller, amount, now)
	})
}

// Cancel closes the stream, paying the vested remainder to the recipient and
// refunding the rest to the sender.
func (s *Service) Cancel(ctx context.Context, caller vesting.Address, streamID string) (Result, error) {
	return s.run(ctx, caller, streamID, func(_ *ledger.Tx, st vesting.Stream, now uint64) (vesting.Transition, error) {
		return vesting.Cancel(st, caller, now)
	})
}

// Transfer reassigns the stream's recipient.
func (s *Service) Transfer(ctx context.Context, caller vesting.Address, streamID string, newRecipient vesting.Address) (Result, error) {
	return s.run(ctx, caller, streamID, func(tx *ledger.Tx, st vesting.Stream, _ uint64) (vesting.Transition, error) {
		if err := notEscrow(tx, newRecipient, "new recipient"); err != nil {
			return vesting.Transition{}, err
		}
		return vesting.TransferRecipient(st, caller, newRecipient)
	})
}

// Topup adds amount to the stream's escrowed principal.
func (s *Service) Topup(ctx context.Context, caller vesting.Address, streamID string, amount uint64) (Result, error) {
	return s.run(ctx, caller, streamID, func(_ *ledger.Tx, st vesting.Stream, _ uint64) (vesting.Transition, error) {
		return vesting.Topup(st, caller, amount)
	})
}

type transitionFunc func(tx *ledger.Tx, st vesting.Stream, now uint64) (vesting.Transition, error)

// notEscrow refuses a payout destination that is some stream's escrow.
func notEscrow(tx *ledger.Tx, addr vesting.Address, role string) error {
	bound, err := tx.IsEscrow(addr)
	if err != nil {
		return err
	}
	if bound {
		return fmt.Errorf("%w: %s %s is an escrow account", vesting.ErrInvalidRecipient, role, addr)
	}
	return nil
}

// run loads streamID, applies fn and commits the outcome atomically. A
// no-op transition writes nothing.
func (s *Service) run(ctx context.Context, caller vesting.Address, streamID string, fn transitionFunc) (Result, error) {
	var res Result
	var t vesting.Transition
	err := s.rt.Ledger().Update(ctx, func(tx *ledger.Tx) error {
		// Read under the ledger lock so committed times never go backwards.
		now := s.ledgerTime()
		st, err := loadStream(tx, streamID)
		if err != nil {
			return err
		}
		t, err = fn(tx, st, now)
		if err != nil {
			return err
		}
		if t.NoOp {
			res = resultOf(t, now, 0)
			return nil
		}
		seq, err := s.commit(tx, t, caller, now)
		if err != nil {
			return err
		}
		res = resultOf(t, now, seq)
		return nil
	})
	if err != nil {
		s.logger.Debug("operation rejected",
			logpkg.Str("stream", streamID),
			logpkg.Str("caller", string(caller)),
			logpkg.Str("code", vesting.Code(err)),
			logpkg.Err(err),
		)
		return Result{}, err
	}
	if !res.NoOp {
		s.logger.Info("stream "+string(activity.KindOf(t.Op)),
			logpkg.Str("stream", streamID),
			logpkg.Str("caller", string(caller)),
			logpkg.Uint64("payout", t.Payout),
			logpkg.Uint64("refund", t.Refund),
			logpkg.Uint64("amount", t.Amount),
			logpkg.Bool("closed", t.Stream.Closed),
		)
	}
	return res, nil
}

// commit applies t's movements, re-checks the record against the escrow
// balance, then stores the record and its activity entry.
func (s *Service) commit(tx *ledger.Tx, t vesting.Transition, caller vesting.Address, now uint64) (uint64, error) {
	st := t.Stream
	if err := tx.Apply(st.Mint, st.ID, t.Movements); err != nil {
		return 0, err
	}
	escrow, err := tx.Balance(st.Mint, st.Escrow)
	if err != nil {
		return 0, err
	}
	if err := st.CheckInvariants(escrow); err != nil {
		return 0, fmt.Errorf("%s: %w", t.Op, err)
	}
	if err := saveStream(tx, st); err != nil {
		return 0, err
	}
	return activity.Append(tx, activity.FromTransition(t, caller, now))
}

func resultOf(t vesting.Transition, now, seq uint64) Result {
	return Result{
		Stream: newView(t.Stream, now),
		Payout: t.Payout,
		Refund: t.Refund,
		Amount: t.Amount,
		Fee:    t.Fee,
		NoOp:   t.NoOp,
		Seq:    seq,
	}
}

func loadStream(tx *ledger.Tx, streamID string) (vesting.Stream, error) {
	b, err := tx.Get(streamKey(streamID))
	if err != nil {
		if pebblestore.IsNotFound(err) {
			return vesting.Stream{}, fmt.Errorf("%w: %s", ErrNotFound, streamID)
		}
		return vesting.Stream{}, err
	}
	var st vesting.Stream
	if err := json.Unmarshal(b, &st); err != nil {
		return vesting.Stream{}, fmt.Errorf("stream %s: corrupt record: %w", streamID, err)
	}
	return st, nil
}

func saveStream(tx *ledger.Tx, st vesting.Stream) error {
	b, err := json.Marshal(st)
	if err != nil {
		return err
	}
	return tx.Set(streamKey(st.ID), b)
}
