package tender

import (
	"time"

	"github.com/tendersza/tender-sync/app/ocds"
)

type Status string

const (
	StatusOpen      Status = "open"
	StatusClosed    Status = "closed"
	StatusCancelled Status = "cancelled"
	StatusAwarded   Status = "awarded"
)

// ResolveStatus derives the canonical lifecycle status of a release. The
// decision order is deliberate: cancellation outranks an award, and both
// outrank a merely-past closing date. A missing closing date means the tender
// is still open unless cancelled or awarded. Pure; now is passed in so callers
// and tests control the clock.
func ResolveStatus(release ocds.Release, now time.Time) Status {
	if release.Tender.Status == "cancelled" {
		return StatusCancelled
	}

	if release.Tender.Status == "complete" || len(release.Awards) > 0 {
		return StatusAwarded
	}

	if release.Tender.TenderPeriod != nil && release.Tender.TenderPeriod.EndDate != nil {
		if release.Tender.TenderPeriod.EndDate.Before(now) {
			return StatusClosed
		}
	}

	return StatusOpen
}
