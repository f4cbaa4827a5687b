// Package streamsvc runs vesting streams on the ledger. Each operation
// loads one stream record, computes its transition with package vesting and
// commits the record, the value movements and the activity entry in a
// single ledger transaction.
//
// Example:
//
//	svc := streamsvc.New(rt)
//	res, err := svc.Create(ctx, "alice", streamsvc.CreateRequest{Recipient: "bob", Mint: "usdc", ...})
//	w, err := svc.Withdraw(ctx, "bob", res.Stream.ID, 0)
//	v, err := svc.Get(ctx, res.Stream.ID)
package streamsvc
