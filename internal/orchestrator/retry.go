package orchestrator

import (
	"time"

	"yt-extract-api/pkg/models"
)

// Action tells the attempt loop what to do with a classified failure
type Action int

const (
	// ActionFail surfaces the error as terminal
	ActionFail Action = iota
	// ActionAdvance retries immediately with the next client profile
	ActionAdvance
	// ActionBackoffAdvance waits the backoff, then advances
	ActionBackoffAdvance
)

// RetryPolicy decides, per classified failure, whether to advance to the
// next client profile, back off first, or give up.
type RetryPolicy struct {
	MaxAttempts int
	Backoff     time.Duration
}

// DefaultRetryPolicy matches the observed upstream behavior: three
// attempts, one second between unclassified failures.
func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{
		MaxAttempts: 3,
		Backoff:     time.Second,
	}
}

// ActionFor maps a classified failure and attempt index to an action.
// attempt is zero-based.
func (p RetryPolicy) ActionFor(err *models.ExtractionError, attempt int) Action {
	last := attempt+1 >= p.MaxAttempts

	switch err.Kind {
	case models.ErrPrivateVideo, models.ErrUnavailable, models.ErrNoDownloadURL:
		return ActionFail
	case models.ErrSignInRequired:
		if last {
			return ActionFail
		}
		return ActionAdvance
	default:
		if last {
			return ActionFail
		}
		return ActionBackoffAdvance
	}
}
