package ports

import (
	"context"
	"errors"
)

// ErrFingerprintClaimed reports that another caller currently owns the
// fingerprint, or has already filled it.
var ErrFingerprintClaimed = errors.New("fingerprint already claimed")

// ComputeCache is a content-addressed cache over an expensive external
// computation with an at-most-one-in-flight-per-key guarantee.
//
// Lookup returns only filled entries. Claim makes the caller the sole owner
// of a fingerprint by recording a pending entry in a short transaction; it
// returns ErrFingerprintClaimed while another owner's pending entry is live
// or the entry is already filled — callers distinguish the two by re-running
// Lookup and retrying when nothing filled shows up. A pending entry whose
// owner died is reclaimed by the next claimant once it exceeds the staleness
// threshold, so a crashed owner cannot wedge a fingerprint. The owner runs
// the computation and resolves the claim with either Fulfill or Abort;
// Abort removes the pending entry, leaving the fingerprint claimable.
type ComputeCache interface {
	Lookup(ctx context.Context, hash, model string) (response string, found bool, err error)
	Claim(ctx context.Context, hash, request, model string) (CacheClaim, error)
}

// CacheClaim is an unresolved ownership of one fingerprint.
type CacheClaim interface {
	Fulfill(ctx context.Context, response string) error
	Abort() error
}
