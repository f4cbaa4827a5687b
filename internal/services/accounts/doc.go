// Package accountsvc exposes the ledger's asset registry, balances and
// partner fee overrides. Funding credits accounts directly and stands in for
// an external token program on a single node.
package accountsvc
