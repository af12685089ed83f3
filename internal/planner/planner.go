// Package planner decides which remote page a source needs fetched to
// catch the local store up with the remote listing, given only the
// locally cached record count and the total the remote just reported.
package planner

// FetchPlan describes the single page request that closes the gap
// between local and remote state for one source.
type FetchPlan struct {
	// Page is the 1-based page to request.
	Page int
	// Trim is how many leading records of the fetched page are already
	// stored locally and must be dropped (partial last page).
	Trim int
	// Empty means the source is fully synced and nothing is fetched.
	Empty bool
}

// Plan computes the catch-up plan for one source.
//
// When the locally known count ends mid-page, that same page is
// requested again: the remote appends new items onto it, and the first
// Trim records are the ones already ingested. When the count ends on a
// page boundary, the next page is requested with nothing to trim.
//
// Reconciliation is forward-only: a remote total at or below the local
// count yields an empty plan, so remote deletions never produce a
// negative trim or an out-of-range page request.
func Plan(localCount, remoteTotal, pageSize int) FetchPlan {
	if remoteTotal <= localCount {
		return FetchPlan{Empty: true}
	}

	lastPage := (localCount + pageSize - 1) / pageSize
	remainder := localCount % pageSize

	if remainder > 0 {
		return FetchPlan{Page: lastPage, Trim: remainder}
	}
	return FetchPlan{Page: lastPage + 1}
}

// Apply drops the already-known leading records from a fetched page.
func Apply[T any](plan FetchPlan, records []T) []T {
	if plan.Empty || plan.Trim >= len(records) {
		return nil
	}
	return records[plan.Trim:]
}
