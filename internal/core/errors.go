package core

import "errors"

// ErrUpstream marks a generation backend failure that survived the retry
// budget. Adapters map it to FallbackReply instead of surfacing the cause.
var ErrUpstream = errors.New("generation backend unreachable")

// FallbackReply is the user-safe text returned when a turn fails fatally.
const FallbackReply = "Sorry, something went wrong. Please try again."

func IsUpstream(err error) bool {
	return errors.Is(err, ErrUpstream)
}
