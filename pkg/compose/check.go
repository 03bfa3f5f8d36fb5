package compose

import "fmt"

// DeliveryMode is the rule governing how a producer's result becomes the
// next consumer's arguments.
type DeliveryMode int

const (
	// DeliverWhole passes the producer's result unchanged as the consumer's
	// sole argument.
	DeliverWhole DeliveryMode = iota
	// DeliverSplat unpacks the producer's tuple result positionally into the
	// consumer's required arguments.
	DeliverSplat
)

func (m DeliveryMode) String() string {
	switch m {
	case DeliverWhole:
		return "whole-value"
	case DeliverSplat:
		return "splat"
	default:
		return fmt.Sprintf("DeliveryMode(%d)", int(m))
	}
}

// Check decides whether the producer's declared result can feed the
// consumer and, if so, which delivery mode applies. Whole-value delivery is
// tried first; splat delivery is tried when the producer returns a tuple
// whose arity matches the consumer's required parameter count. If neither
// mode validates, Check fails with a *CompositionError naming both
// signatures and every attempted mode.
//
// The two modes overlap only for arity-1 tuples: a single-element tuple
// producer feeding a single-parameter consumer is delivered whole when the
// parameter's declared type is structurally equal to the tuple type, and
// falls back to splat otherwise.
func Check(producer, consumer Signature) (DeliveryMode, error) {
	out := producer.ReturnType()
	required := consumer.RequiredParams()

	var attempts []ModeAttempt

	switch {
	case len(required) != 1:
		attempts = append(attempts, ModeAttempt{
			Mode:   DeliverWhole,
			Reason: fmt.Sprintf("consumer requires %d arguments, not 1", len(required)),
		})
	case assignable(out, required[0].Type):
		return DeliverWhole, nil
	default:
		attempts = append(attempts, ModeAttempt{
			Mode:   DeliverWhole,
			Reason: fmt.Sprintf("%s is not assignable to %s", out, required[0].Type),
		})
	}

	switch {
	case out.Kind() != KindTuple:
		attempts = append(attempts, ModeAttempt{
			Mode:   DeliverSplat,
			Reason: "producer does not return a tuple",
		})
	case out.Arity() != len(required):
		attempts = append(attempts, ModeAttempt{
			Mode:   DeliverSplat,
			Reason: fmt.Sprintf("tuple arity %d does not match %d required arguments", out.Arity(), len(required)),
		})
	default:
		// strictly positional, never by name and never re-sorted; every
		// mismatching position is reported
		valid := true
		for i := 0; i < out.Arity(); i++ {
			if !assignable(out.Element(i), required[i].Type) {
				valid = false
				attempts = append(attempts, ModeAttempt{
					Mode: DeliverSplat,
					Reason: fmt.Sprintf("position %d: %s is not assignable to %s (parameter %s)",
						i+1, out.Element(i), required[i].Type, required[i].Name),
				})
			}
		}
		if valid {
			return DeliverSplat, nil
		}
	}

	return 0, &CompositionError{Producer: producer, Consumer: consumer, Attempts: attempts}
}

// Plan validates every adjacent pair of an ordered signature chain and
// returns the delivery mode chosen for each pair. It fails on the first
// non-composable pair; a chain of n signatures yields n-1 modes.
func Plan(signatures []Signature) ([]DeliveryMode, error) {
	if len(signatures) == 0 {
		return nil, ErrEmptyPipeline
	}

	modes := make([]DeliveryMode, len(signatures)-1)
	for i := 0; i+1 < len(signatures); i++ {
		mode, err := Check(signatures[i], signatures[i+1])
		if err != nil {
			return nil, err
		}
		modes[i] = mode
	}

	return modes, nil
}
