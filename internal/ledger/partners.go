package ledger

import (
	"encoding/json"
	"fmt"

	pebblestore "github.com/rzbill/vesta/internal/storage/pebble"
	"github.com/rzbill/vesta/internal/vesting"
)

var partnerPrefix = []byte("partnerfee/")

func partnerKey(p vesting.Address) []byte {
	return append(append([]byte(nil), partnerPrefix...), p...)
}

// PartnerFees returns the fee override registered for partner, if any.
func (tx *Tx) PartnerFees(partner vesting.Address) (vesting.FeePolicy, bool, error) {
	b, err := tx.Get(partnerKey(partner))
	if err != nil {
		if pebblestore.IsNotFound(err) {
			return vesting.FeePolicy{}, false, nil
		}
		return vesting.FeePolicy{}, false, err
	}
	var p vesting.FeePolicy
	if err := json.Unmarshal(b, &p); err != nil {
		return vesting.FeePolicy{}, false, fmt.Errorf("ledger: partner %s: corrupt fees: %w", partner, err)
	}
	return p, true, nil
}

// SetPartnerFees stores a fee override applied to streams created with
// partner from then on. Existing streams keep their snapshot.
func (tx *Tx) SetPartnerFees(partner vesting.Address, p vesting.FeePolicy) error {
	if err := partner.Validate(); err != nil {
		return err
	}
	if err := p.Validate(); err != nil {
		return err
	}
	b, err := json.Marshal(p)
	if err != nil {
		return err
	}
	return tx.Set(partnerKey(partner), b)
}
