package gateway

import (
	"errors"
	"fmt"
)

// Kind classifies a gateway failure.
type Kind string

const (
	KindNetwork        Kind = "network"
	KindUpstreamStatus Kind = "upstream_status"
	KindModelNotFound  Kind = "model_not_found"
	KindEmptyContent   Kind = "empty_content"
	KindTruncated      Kind = "truncated"
	KindParse          Kind = "parse"
	KindCircuitOpen    Kind = "circuit_open"
)

// Error is every failure the gateway returns. Callers match it with
// errors.As and branch on Kind.
type Error struct {
	Kind  Kind
	Model string
	Err   error
}

func (e *Error) Error() string {
	switch e.Kind {
	case KindTruncated:
		return fmt.Sprintf("gateway: model %s output truncated at token limit; retry with a larger max_tokens: %v", e.Model, e.Err)
	default:
		return fmt.Sprintf("gateway: %s from model %s: %v", e.Kind, e.Model, e.Err)
	}
}

func (e *Error) Unwrap() error {
	return e.Err
}

// KindOf returns the Kind of the first *Error in err's chain, or "" if there
// is none.
func KindOf(err error) Kind {
	var ge *Error
	if errors.As(err, &ge) {
		return ge.Kind
	}
	return ""
}
