package compose

import (
	"fmt"
	"strings"

	"github.com/pkg/errors"
)

// ErrEmptyPipeline is returned when zero steps are supplied for composition.
var ErrEmptyPipeline = errors.New("pipeline must contain at least one step")

// UntypedSignatureError reports a signature that cannot take part in
// composition: a parameter or return value with a missing or unconstrained
// type annotation. The step cannot be created.
type UntypedSignatureError struct {
	Subject string // "parameter <name>" or "return"
	Reason  string
}

func (e *UntypedSignatureError) Error() string {
	return fmt.Sprintf("untyped signature: %s: %s", e.Subject, e.Reason)
}

// CompositionError reports that two adjacent signatures cannot be composed
// under either delivery mode. It carries both signatures and, per attempted
// mode, the reason the mode did not validate.
type CompositionError struct {
	Producer Signature
	Consumer Signature
	// Attempts records each delivery mode tried, in the order tried, with
	// the reason it failed.
	Attempts []ModeAttempt
}

// ModeAttempt is one rejected delivery mode with its reason.
type ModeAttempt struct {
	Mode   DeliveryMode
	Reason string
}

func (e *CompositionError) Error() string {
	consumer := e.Consumer.RequiredParams()
	params := make([]string, len(consumer))
	for i, p := range consumer {
		params[i] = p.Type.String()
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "cannot compose steps: producer returns %s, consumer requires (%s)",
		e.Producer.ReturnType(), strings.Join(params, ", "))
	for _, a := range e.Attempts {
		fmt.Fprintf(&sb, "; %s: %s", a.Mode, a.Reason)
	}

	return sb.String()
}
