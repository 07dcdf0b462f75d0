// internal/telegram/classify.go
package telegram

import (
	"strings"

	"github.com/botreach/verification-service-go/internal/model"
)

// Classification is the verdict for one probe: either a terminal outcome to
// persist, or a throttling retry with the provider-supplied delay. Throttling
// is never an outcome; the recipient stays UNKNOWN and is re-selected.
type Classification struct {
	Outcome    string
	Retry      bool
	RetryAfter int // seconds, only meaningful when Retry is true
}

// Classify maps a raw Bot API response to a Classification. The matching is
// deliberately loose substring matching over the human-readable description,
// so new provider messages land in OTHER_ERROR instead of breaking the run.
func Classify(resp *Response) Classification {
	if resp.OK {
		return Classification{Outcome: model.OutcomeOK}
	}

	description := strings.ToLower(resp.Description)
	switch {
	case strings.Contains(description, "blocked"):
		return Classification{Outcome: model.OutcomeBlocked}
	case strings.Contains(description, "chat not found"):
		return Classification{Outcome: model.OutcomeNotStarted}
	case strings.Contains(description, "too many requests"):
		retryAfter := 1
		if resp.Parameters != nil && resp.Parameters.RetryAfter > 0 {
			retryAfter = resp.Parameters.RetryAfter
		}
		return Classification{Retry: true, RetryAfter: retryAfter}
	default:
		return Classification{Outcome: model.OutcomeOtherError}
	}
}
