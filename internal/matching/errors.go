package matching

import "fmt"

// NotFoundError means the anchor entity of a match query does not exist.
// Unlike candidate-pool fetch failures, this propagates to the caller.
type NotFoundError struct {
	Kind string // "influencer" | "campaign"
	ID   string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %s not found", e.Kind, e.ID)
}
