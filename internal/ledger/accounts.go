package ledger

import (
	"encoding/binary"
	"encoding/json"
	"fmt"
	"math/bits"

	pebblestore "github.com/rzbill/vesta/internal/storage/pebble"
	"github.com/rzbill/vesta/internal/vesting"
)

// Account is one asset balance.
type Account struct {
	Mint    vesting.Address `json:"mint"`
	Owner   vesting.Address `json:"owner"`
	Balance uint64          `json:"balance"`
}

// Escrow records which stream owns an escrow account.
type Escrow struct {
	Address vesting.Address `json:"address"`
	Mint    vesting.Address `json:"mint"`
	Stream  string          `json:"stream"`
}

var (
	acctPrefix   = []byte("acct/")
	escrowPrefix = []byte("escrow/")
)

func acctKey(m, owner vesting.Address) []byte {
	k := make([]byte, 0, len(acctPrefix)+len(m)+1+len(owner))
	k = append(k, acctPrefix...)
	k = append(k, m...)
	k = append(k, '/')
	return append(k, owner...)
}

func escrowKey(addr vesting.Address) []byte {
	return append(append([]byte(nil), escrowPrefix...), addr...)
}

// Balance returns owner's balance of m. Missing accounts hold zero.
func (tx *Tx) Balance(m, owner vesting.Address) (uint64, error) {
	b, err := tx.Get(acctKey(m, owner))
	if err != nil {
		if pebblestore.IsNotFound(err) {
			return 0, nil
		}
		return 0, err
	}
	if len(b) != 8 {
		return 0, fmt.Errorf("ledger: account %s/%s: corrupt balance", m, owner)
	}
	return binary.BigEndian.Uint64(b), nil
}

func (tx *Tx) setBalance(m, owner vesting.Address, v uint64) error {
	var b [8]byte
	binary.BigEndian.PutUint64(b[:], v)
	return tx.Set(acctKey(m, owner), b[:])
}

// Accounts lists every non-empty account of mint m.
func (tx *Tx) Accounts(m vesting.Address) ([]Account, error) {
	prefix := acctKey(m, "")
	var out []Account
	err := tx.Scan(prefix, func(k, v []byte) (bool, error) {
		if len(v) == 8 {
			out = append(out, Account{Mint: m, Owner: vesting.Address(k[len(prefix):]), Balance: binary.BigEndian.Uint64(v)})
		}
		return true, nil
	})
	return out, err
}

// Credit mints amount into owner's account. It stands in for the host's
// token program and is only reachable through the funding endpoint.
func (tx *Tx) Credit(m, owner vesting.Address, amount uint64) (uint64, error) {
	if err := owner.Validate(); err != nil {
		return 0, err
	}
	if _, err := tx.Mint(m); err != nil {
		return 0, err
	}
	if _, err := tx.escrow(owner); err == nil {
		return 0, fmt.Errorf("%w: cannot fund escrow %s directly", ErrEscrowOwnership, owner)
	}
	bal, err := tx.Balance(m, owner)
	if err != nil {
		return 0, err
	}
	sum, carry := bits.Add64(bal, amount, 0)
	if carry != 0 {
		return 0, fmt.Errorf("%w: balance of %s overflows", vesting.ErrInvalidArgument, owner)
	}
	return sum, tx.setBalance(m, owner, sum)
}

// OpenEscrow binds the escrow address to streamID. An address already bound
// to any stream is refused.
func (tx *Tx) OpenEscrow(m, addr vesting.Address, streamID string) error {
	if _, err := tx.Mint(m); err != nil {
		return err
	}
	if _, err := tx.escrow(addr); err == nil {
		return fmt.Errorf("%w: %s already bound", ErrEscrowOwnership, addr)
	} else if !pebblestore.IsNotFound(err) {
		return err
	}
	if bal, err := tx.Balance(m, addr); err != nil {
		return err
	} else if bal != 0 {
		return fmt.Errorf("%w: %s already holds funds", ErrEscrowOwnership, addr)
	}
	b, err := json.Marshal(Escrow{Address: addr, Mint: m, Stream: streamID})
	if err != nil {
		return err
	}
	return tx.Set(escrowKey(addr), b)
}

// IsEscrow reports whether addr is bound to a stream.
func (tx *Tx) IsEscrow(addr vesting.Address) (bool, error) {
	_, err := tx.escrow(addr)
	switch {
	case err == nil:
		return true, nil
	case pebblestore.IsNotFound(err):
		return false, nil
	default:
		return false, err
	}
}

func (tx *Tx) escrow(addr vesting.Address) (Escrow, error) {
	b, err := tx.Get(escrowKey(addr))
	if err != nil {
		return Escrow{}, err
	}
	var e Escrow
	if err := json.Unmarshal(b, &e); err != nil {
		return Escrow{}, fmt.Errorf("ledger: escrow %s: corrupt record: %w", addr, err)
	}
	return e, nil
}

// Transfer moves amount of m between two ordinary accounts. Escrow accounts
// can only be debited through Apply.
func (tx *Tx) Transfer(m, from, to vesting.Address, amount uint64) error {
	return tx.transfer(m, "", from, to, amount)
}

// Apply executes the movements of one stream operation. An escrow account
// is only debited or credited by the stream that owns it. Any
// failure leaves the transaction unusable; callers return the error from
// Update so the batch is discarded.
func (tx *Tx) Apply(m vesting.Address, streamID string, moves []vesting.Movement) error {
	if _, err := tx.Mint(m); err != nil {
		return err
	}
	for _, mv := range moves {
		if err := tx.transfer(m, streamID, mv.From, mv.To, mv.Amount); err != nil {
			return fmt.Errorf("%s: %w", mv.Memo, err)
		}
	}
	return nil
}

func (tx *Tx) transfer(m vesting.Address, streamID string, from, to vesting.Address, amount uint64) error {
	if amount == 0 || from == to {
		return nil
	}
	if e, err := tx.escrow(from); err == nil {
		if streamID == "" || e.Stream != streamID || e.Mint != m {
			return fmt.Errorf("%w: debit of %s", ErrEscrowOwnership, from)
		}
	} else if !pebblestore.IsNotFound(err) {
		return err
	}
	if e, err := tx.escrow(to); err == nil {
		if streamID == "" || e.Stream != streamID || e.Mint != m {
			return fmt.Errorf("%w: credit of %s", ErrEscrowOwnership, to)
		}
	} else if !pebblestore.IsNotFound(err) {
		return err
	}
	fromBal, err := tx.Balance(m, from)
	if err != nil {
		return err
	}
	if fromBal < amount {
		return fmt.Errorf("%w: %s holds %d, needs %d", vesting.ErrInsufficientFunds, from, fromBal, amount)
	}
	toBal, err := tx.Balance(m, to)
	if err != nil {
		return err
	}
	sum, carry := bits.Add64(toBal, amount, 0)
	if carry != 0 {
		return fmt.Errorf("%w: balance of %s overflows", vesting.ErrInvalidArgument, to)
	}
	if err := tx.setBalance(m, from, fromBal-amount); err != nil {
		return err
	}
	return tx.setBalance(m, to, sum)
}
