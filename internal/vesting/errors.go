package vesting

import (
	"errors"
	"fmt"
)

// Error taxonomy shared by every stream operation. Callers match with
// errors.Is; wrapped errors carry the operation-specific detail.
var (
	ErrInvalidSchedule   = errors.New("invalid schedule")
	ErrUnauthorized      = errors.New("unauthorized")
	ErrInsufficientFunds = errors.New("insufficient funds")
	ErrStreamClosed      = errors.New("stream closed")
	ErrInvalidRecipient  = errors.New("invalid recipient")
	ErrNothingToWithdraw = errors.New("nothing to withdraw")
	ErrInvalidArgument   = errors.New("invalid argument")
)

// Code returns a stable tag for err suitable for transports. Unknown errors
// map to "internal".
func Code(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrInvalidSchedule):
		return "invalid_schedule"
	case errors.Is(err, ErrUnauthorized):
		return "unauthorized"
	case errors.Is(err, ErrInsufficientFunds):
		return "insufficient_funds"
	case errors.Is(err, ErrStreamClosed):
		return "stream_closed"
	case errors.Is(err, ErrInvalidRecipient):
		return "invalid_recipient"
	case errors.Is(err, ErrNothingToWithdraw):
		return "nothing_to_withdraw"
	case errors.Is(err, ErrInvalidArgument):
		return "invalid_argument"
	default:
		return "internal"
	}
}

func wrap(err error, format string, args ...any) error {
	return fmt.Errorf("%w: "+format, append([]any{err}, args...)...)
}
