package compose

import (
	"strings"

	"github.com/pkg/errors"
)

// ParseType parses a type declaration into a TypeDescriptor. Both union
// spellings are accepted and produce equal descriptors:
//
//	Union[int, str]
//	int | str
//
// Tuples are spelled Tuple[t1, ..., tn]. Union members must be concrete
// type names; a tuple inside a union is rejected, since unions carry a flat
// set of names while tuples are matched only structurally.
func ParseType(src string) (TypeDescriptor, error) {
	p := &typeParser{src: src}
	d, err := p.parseType()
	if err != nil {
		return TypeDescriptor{}, err
	}
	p.skipSpaces()
	if p.pos != len(p.src) {
		return TypeDescriptor{}, errors.Errorf("unexpected %q at offset %d in type %q", p.rest(), p.pos, src)
	}

	return d, nil
}

// MustParseType is ParseType that panics on error, for statically known
// declarations in tests and examples.
func MustParseType(src string) TypeDescriptor {
	d, err := ParseType(src)
	if err != nil {
		panic(err)
	}

	return d
}

// ParseSignature parses a full step signature declaration, e.g.
//
//	(a: int, b: str = nil) -> Tuple[int, str]
//
// A "= <expr>" suffix marks a defaulted parameter; the default expression
// itself is ignored, only its presence matters. The parsed signature goes
// through the same validation as NewSignature, so a missing annotation or
// an Any marker fails with *UntypedSignatureError.
func ParseSignature(src string) (Signature, error) {
	p := &typeParser{src: src}
	p.skipSpaces()
	if !p.consume("(") {
		return Signature{}, errors.Errorf("signature %q must start with '('", src)
	}

	var params []Param
	p.skipSpaces()
	if !p.consume(")") {
		for {
			param, err := p.parseParam()
			if err != nil {
				return Signature{}, err
			}
			params = append(params, param)
			p.skipSpaces()
			if p.consume(",") {
				continue
			}
			if p.consume(")") {
				break
			}

			return Signature{}, errors.Errorf("expected ',' or ')' at offset %d in signature %q", p.pos, src)
		}
	}

	p.skipSpaces()
	if !p.consume("->") {
		return Signature{}, &UntypedSignatureError{Subject: "return", Reason: "missing type annotation"}
	}
	ret, err := p.parseType()
	if err != nil {
		return Signature{}, err
	}
	p.skipSpaces()
	if p.pos != len(p.src) {
		return Signature{}, errors.Errorf("unexpected %q at offset %d in signature %q", p.rest(), p.pos, src)
	}

	return NewSignature(params, ret)
}

// MustParseSignature is ParseSignature that panics on error.
func MustParseSignature(src string) Signature {
	sig, err := ParseSignature(src)
	if err != nil {
		panic(err)
	}

	return sig
}

type typeParser struct {
	src string
	pos int
}

func (p *typeParser) rest() string {
	if p.pos >= len(p.src) {
		return ""
	}

	return p.src[p.pos:]
}

func (p *typeParser) skipSpaces() {
	for p.pos < len(p.src) && (p.src[p.pos] == ' ' || p.src[p.pos] == '\t') {
		p.pos++
	}
}

func (p *typeParser) consume(tok string) bool {
	if strings.HasPrefix(p.src[p.pos:], tok) {
		p.pos += len(tok)

		return true
	}

	return false
}

func isIdentChar(c byte) bool {
	return c == '_' || c == '.' ||
		(c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || (c >= '0' && c <= '9')
}

func (p *typeParser) parseIdent() (string, error) {
	p.skipSpaces()
	start := p.pos
	for p.pos < len(p.src) && isIdentChar(p.src[p.pos]) {
		p.pos++
	}
	if p.pos == start {
		return "", errors.Errorf("expected identifier at offset %d in %q", p.pos, p.src)
	}

	return p.src[start:p.pos], nil
}

// parseParam parses "name: type" with an optional "= default" suffix. The
// default expression runs to the next top-level ',' or ')'.
func (p *typeParser) parseParam() (Param, error) {
	name, err := p.parseIdent()
	if err != nil {
		return Param{}, err
	}
	p.skipSpaces()
	if !p.consume(":") {
		return Param{}, &UntypedSignatureError{Subject: "parameter " + name, Reason: "missing type annotation"}
	}
	typ, err := p.parseType()
	if err != nil {
		return Param{}, err
	}

	param := Param{Name: name, Type: typ}
	p.skipSpaces()
	if p.consume("=") {
		param.HasDefault = true
		depth := 0
		for p.pos < len(p.src) {
			c := p.src[p.pos]
			if depth == 0 && (c == ',' || c == ')') {
				break
			}
			switch c {
			case '[', '(', '{':
				depth++
			case ']', ')', '}':
				depth--
			}
			p.pos++
		}
	}

	return param, nil
}

// parseType parses a pipe-separated union of atoms; a single atom stands
// alone.
func (p *typeParser) parseType() (TypeDescriptor, error) {
	first, err := p.parseAtom()
	if err != nil {
		return TypeDescriptor{}, err
	}

	members := []TypeDescriptor{first}
	for {
		p.skipSpaces()
		if !p.consume("|") {
			break
		}
		next, err := p.parseAtom()
		if err != nil {
			return TypeDescriptor{}, err
		}
		members = append(members, next)
	}

	if len(members) == 1 {
		return members[0], nil
	}

	return unionOf(members)
}

// parseAtom parses Union[...], Tuple[...] or a bare type name.
func (p *typeParser) parseAtom() (TypeDescriptor, error) {
	ident, err := p.parseIdent()
	if err != nil {
		return TypeDescriptor{}, err
	}

	p.skipSpaces()
	switch {
	case ident == "Union" && p.consume("["):
		elems, err := p.parseBracketList()
		if err != nil {
			return TypeDescriptor{}, err
		}
		if len(elems) == 0 {
			return TypeDescriptor{}, errors.New("empty union")
		}

		return unionOf(elems)
	case ident == "Tuple" && p.consume("["):
		elems, err := p.parseBracketList()
		if err != nil {
			return TypeDescriptor{}, err
		}
		if len(elems) == 0 {
			return TypeDescriptor{}, errors.New("empty tuple")
		}

		return Tuple(elems...), nil
	default:
		return Simple(ident), nil
	}
}

func (p *typeParser) parseBracketList() ([]TypeDescriptor, error) {
	var elems []TypeDescriptor
	for {
		elem, err := p.parseType()
		if err != nil {
			return nil, err
		}
		elems = append(elems, elem)
		p.skipSpaces()
		if p.consume(",") {
			continue
		}
		if p.consume("]") {
			return elems, nil
		}

		return nil, errors.Errorf("expected ',' or ']' at offset %d in %q", p.pos, p.src)
	}
}

// unionOf flattens descriptors into one union. Nested unions merge into the
// flat name set; a tuple member is rejected.
func unionOf(members []TypeDescriptor) (TypeDescriptor, error) {
	var names []string
	for _, m := range members {
		if m.Kind() == KindTuple {
			return TypeDescriptor{}, errors.Errorf("union member %s: tuples cannot be union members", m)
		}
		names = append(names, m.Members()...)
	}

	return Union(names...), nil
}
