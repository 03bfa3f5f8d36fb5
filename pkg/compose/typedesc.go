package compose

import (
	"sort"
	"strings"
)

// Kind discriminates the three TypeDescriptor variants.
type Kind int

const (
	// KindSimple is a single concrete, named type.
	KindSimple Kind = iota
	// KindUnion is a set of at least two acceptable concrete type names.
	KindUnion
	// KindTuple is a fixed-arity ordered sequence of descriptors.
	KindTuple
)

// TypeDescriptor is a declared parameter or return type: one concrete type,
// a union of acceptable concrete types, or an ordered tuple whose elements
// are themselves descriptors.
//
// Descriptors are immutable values; build them with Simple, Union and Tuple
// and compare them with Equal.
type TypeDescriptor struct {
	kind     Kind
	name     string           // KindSimple
	members  []string         // KindUnion, sorted, de-duplicated
	elements []TypeDescriptor // KindTuple, positional
}

// Simple returns the descriptor for one concrete type name.
func Simple(name string) TypeDescriptor {
	return TypeDescriptor{kind: KindSimple, name: name}
}

// Union returns the descriptor accepting any of the given type names.
// Duplicates collapse and order is irrelevant; a union left with a single
// distinct member collapses to the equivalent Simple descriptor, so that
// Union("int", "int") and Simple("int") compare equal.
func Union(names ...string) TypeDescriptor {
	set := make(map[string]struct{}, len(names))
	for _, n := range names {
		set[n] = struct{}{}
	}

	distinct := make([]string, 0, len(set))
	for n := range set {
		distinct = append(distinct, n)
	}
	sort.Strings(distinct)

	if len(distinct) == 1 {
		return Simple(distinct[0])
	}

	return TypeDescriptor{kind: KindUnion, members: distinct}
}

// Tuple returns the descriptor for a fixed-arity ordered tuple. Position is
// significant and is never collapsed into a set.
func Tuple(elements ...TypeDescriptor) TypeDescriptor {
	elems := make([]TypeDescriptor, len(elements))
	copy(elems, elements)

	return TypeDescriptor{kind: KindTuple, elements: elems}
}

// Kind returns the variant of the descriptor.
func (d TypeDescriptor) Kind() Kind { return d.kind }

// Arity returns the number of elements of a tuple descriptor, or 0.
func (d TypeDescriptor) Arity() int { return len(d.elements) }

// Element returns the descriptor at position i of a tuple descriptor.
func (d TypeDescriptor) Element(i int) TypeDescriptor { return d.elements[i] }

// Members returns the flat set of acceptable concrete type names. A tuple
// descriptor has no flat member set; it participates in assignability only
// through structural equality.
func (d TypeDescriptor) Members() []string {
	switch d.kind {
	case KindSimple:
		return []string{d.name}
	case KindUnion:
		members := make([]string, len(d.members))
		copy(members, d.members)

		return members
	default:
		return nil
	}
}

// Equal reports structural equality. Unions are equal iff their member sets
// are equal, regardless of the order or syntax that produced them; tuples
// are equal iff they have the same arity and element-wise equal descriptors.
func (d TypeDescriptor) Equal(other TypeDescriptor) bool {
	if d.kind != other.kind {
		return false
	}

	switch d.kind {
	case KindSimple:
		return d.name == other.name
	case KindUnion:
		if len(d.members) != len(other.members) {
			return false
		}
		// both sides are sorted and de-duplicated at construction
		for i := range d.members {
			if d.members[i] != other.members[i] {
				return false
			}
		}

		return true
	default:
		if len(d.elements) != len(other.elements) {
			return false
		}
		for i := range d.elements {
			if !d.elements[i].Equal(other.elements[i]) {
				return false
			}
		}

		return true
	}
}

// String renders the descriptor in the canonical declaration syntax.
func (d TypeDescriptor) String() string {
	switch d.kind {
	case KindSimple:
		return d.name
	case KindUnion:
		return strings.Join(d.members, " | ")
	default:
		parts := make([]string, len(d.elements))
		for i, e := range d.elements {
			parts[i] = e.String()
		}

		return "Tuple[" + strings.Join(parts, ", ") + "]"
	}
}

// assignable reports whether a value declared as out may be passed where in
// is expected. Tuples never take part in membership checks: a tuple is
// assignable only to a structurally equal tuple. For everything else the
// producer's member set must be a subset of the consumer's.
func assignable(out, in TypeDescriptor) bool {
	if out.kind == KindTuple || in.kind == KindTuple {
		return out.Equal(in)
	}

	accepted := make(map[string]struct{})
	for _, n := range in.Members() {
		accepted[n] = struct{}{}
	}
	for _, n := range out.Members() {
		if _, ok := accepted[n]; !ok {
			return false
		}
	}

	return true
}
