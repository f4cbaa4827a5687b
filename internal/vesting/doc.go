// Package vesting is the accounting core of the escrow engine: the stream
// record, the schedule evaluator, the fee policy and the five state
// transitions (Create, Withdraw, Cancel, TransferRecipient, Topup).
//
// Every transition is a pure function of a record, the caller's address and
// the ledger time. It validates first and returns a Transition holding the
// new record and the value movements that must commit atomically with it;
// nothing here touches storage.
//
// Unlock schedule
//
//	unlocked(now) = 0                                            now < start or now < cliff
//	unlocked(now) = min(net, cliff_amount + ⌊(now-cliff)/period⌋ * amount_per_period)
//
// All arithmetic is on uint64 with checked or saturating helpers; there is
// no floating point anywhere in the package.
package vesting
