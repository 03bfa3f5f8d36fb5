package compose

import (
	"strings"
)

// Param is one declared parameter of a step callable.
type Param struct {
	Name       string
	Type       TypeDescriptor
	HasDefault bool
}

// Signature describes a step callable: its parameters in declaration order
// and its return type. Signatures are built once, when a step is created,
// and never re-derived by inspection later.
type Signature struct {
	params []Param
	ret    TypeDescriptor
}

// NewSignature validates and freezes a signature. Every parameter and the
// return value must carry a constrained type: a missing name, an empty
// descriptor or an Any/unconstrained marker anywhere in a descriptor fails
// with *UntypedSignatureError. A defaulted parameter followed by a
// non-defaulted one is rejected, since splat delivery counts trailing
// defaults out of the required arity.
func NewSignature(params []Param, ret TypeDescriptor) (Signature, error) {
	seenDefault := false
	for _, p := range params {
		if p.Name == "" {
			return Signature{}, &UntypedSignatureError{Subject: "parameter", Reason: "missing parameter name"}
		}
		if err := checkConstrained("parameter "+p.Name, p.Type); err != nil {
			return Signature{}, err
		}
		if seenDefault && !p.HasDefault {
			return Signature{}, &UntypedSignatureError{
				Subject: "parameter " + p.Name,
				Reason:  "required parameter follows defaulted parameter",
			}
		}
		seenDefault = seenDefault || p.HasDefault
	}

	if err := checkConstrained("return", ret); err != nil {
		return Signature{}, err
	}

	frozen := make([]Param, len(params))
	copy(frozen, params)

	return Signature{params: frozen, ret: ret}, nil
}

// MustSignature is NewSignature that panics on error, for statically known
// declarations in tests and examples.
func MustSignature(params []Param, ret TypeDescriptor) Signature {
	sig, err := NewSignature(params, ret)
	if err != nil {
		panic(err)
	}

	return sig
}

// RequiredParams returns the parameters that take part in composability
// checks: declaration order preserved, trailing defaulted parameters
// excluded. The composite caller never supplies defaults.
func (s Signature) RequiredParams() []Param {
	n := 0
	for _, p := range s.params {
		if !p.HasDefault {
			n++
		}
	}

	required := make([]Param, 0, n)
	for _, p := range s.params {
		if !p.HasDefault {
			required = append(required, p)
		}
	}

	return required
}

// Params returns all declared parameters in declaration order.
func (s Signature) Params() []Param {
	params := make([]Param, len(s.params))
	copy(params, s.params)

	return params
}

// ReturnType returns the declared return descriptor.
func (s Signature) ReturnType() TypeDescriptor { return s.ret }

// String renders the signature in the canonical declaration syntax.
func (s Signature) String() string {
	parts := make([]string, len(s.params))
	for i, p := range s.params {
		parts[i] = p.Name + ": " + p.Type.String()
		if p.HasDefault {
			parts[i] += " = ..."
		}
	}

	return "(" + strings.Join(parts, ", ") + ") -> " + s.ret.String()
}

// unconstrained type markers rejected everywhere in a signature.
var anyMarkers = map[string]struct{}{
	"Any": {},
	"any": {},
}

func checkConstrained(subject string, d TypeDescriptor) error {
	switch d.Kind() {
	case KindSimple, KindUnion:
		for _, n := range d.Members() {
			if n == "" {
				return &UntypedSignatureError{Subject: subject, Reason: "missing type annotation"}
			}
			if _, ok := anyMarkers[n]; ok {
				return &UntypedSignatureError{Subject: subject, Reason: "unconstrained type " + n}
			}
		}

		return nil
	default:
		if d.Arity() == 0 {
			return &UntypedSignatureError{Subject: subject, Reason: "empty tuple type"}
		}
		for i := 0; i < d.Arity(); i++ {
			if err := checkConstrained(subject, d.Element(i)); err != nil {
				return err
			}
		}

		return nil
	}
}
