package accountsvc

import (
	"context"
	"fmt"

	"github.com/rzbill/vesta/internal/ledger"
	"github.com/rzbill/vesta/internal/mint"
	"github.com/rzbill/vesta/internal/runtime"
	"github.com/rzbill/vesta/internal/vesting"
	logpkg "github.com/rzbill/vesta/pkg/log"
)

// Service manages assets, balances and partner fee overrides.
type Service struct {
	rt     *runtime.Runtime
	logger logpkg.Logger
}

func New(rt *runtime.Runtime) *Service { return NewWithLogger(rt, nil) }

func NewWithLogger(rt *runtime.Runtime, logger logpkg.Logger) *Service {
	if logger == nil {
		logger = logpkg.NewLogger()
	}
	return &Service{rt: rt, logger: logger.With(logpkg.Component("accounts"))}
}

// RegisterMint declares an asset type. Re-registering with the same
// decimals is a no-op.
func (s *Service) RegisterMint(ctx context.Context, m vesting.Address, decimals uint8) (mint.Meta, error) {
	var meta mint.Meta
	err := s.rt.Ledger().Update(ctx, func(tx *ledger.Tx) (err error) {
		meta, err = tx.RegisterMint(m, decimals)
		return err
	})
	if err != nil {
		return mint.Meta{}, err
	}
	s.logger.Info("mint registered", logpkg.Str("mint", string(m)), logpkg.Int("decimals", int(decimals)))
	return meta, nil
}

// Fund credits amount to owner and returns the new balance.
func (s *Service) Fund(ctx context.Context, m, owner vesting.Address, amount uint64) (ledger.Account, error) {
	if amount == 0 {
		return ledger.Account{}, fmt.Errorf("%w: fund amount is zero", vesting.ErrInvalidArgument)
	}
	var bal uint64
	err := s.rt.Ledger().Update(ctx, func(tx *ledger.Tx) (err error) {
		bal, err = tx.Credit(m, owner, amount)
		return err
	})
	if err != nil {
		return ledger.Account{}, err
	}
	s.logger.Info("account funded", logpkg.Str("mint", string(m)), logpkg.Str("owner", string(owner)), logpkg.Uint64("amount", amount))
	return ledger.Account{Mint: m, Owner: owner, Balance: bal}, nil
}

// Balance returns owner's balance of m.
func (s *Service) Balance(ctx context.Context, m, owner vesting.Address) (ledger.Account, error) {
	if err := ctx.Err(); err != nil {
		return ledger.Account{}, err
	}
	acct := ledger.Account{Mint: m, Owner: owner}
	err := s.rt.Ledger().View(func(tx *ledger.Tx) (err error) {
		if _, err = tx.Mint(m); err != nil {
			return err
		}
		acct.Balance, err = tx.Balance(m, owner)
		return err
	})
	return acct, err
}

// Mints lists registered assets.
func (s *Service) Mints(ctx context.Context) ([]mint.Meta, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	var out []mint.Meta
	err := s.rt.Ledger().View(func(tx *ledger.Tx) (err error) {
		out, err = tx.Mints()
		return err
	})
	return out, err
}

// SetPartnerFees installs a fee override for streams created with partner.
func (s *Service) SetPartnerFees(ctx context.Context, partner vesting.Address, p vesting.FeePolicy) error {
	if err := s.rt.Ledger().Update(ctx, func(tx *ledger.Tx) error {
		return tx.SetPartnerFees(partner, p)
	}); err != nil {
		return err
	}
	s.logger.Info("partner fees set",
		logpkg.Str("partner", string(partner)),
		logpkg.Int("treasury_bps", int(p.TreasuryBps)),
		logpkg.Int("partner_bps", int(p.PartnerBps)),
	)
	return nil
}

// PartnerFees returns the effective policy for partner: its override or
// the configured default.
func (s *Service) PartnerFees(ctx context.Context, partner vesting.Address) (vesting.FeePolicy, bool, error) {
	if err := ctx.Err(); err != nil {
		return vesting.FeePolicy{}, false, err
	}
	p, ok := s.rt.FeePolicy(), false
	err := s.rt.Ledger().View(func(tx *ledger.Tx) error {
		override, found, err := tx.PartnerFees(partner)
		if found {
			p, ok = override, true
		}
		return err
	})
	return p, ok, err
}
