package domain

import (
	"slices"
	"strconv"
	"strings"
)

// ParamKind enumerates the shapes a query key parameter can take.
type ParamKind uint8

const (
	// KindString is a string parameter, usually a resource ID or search term.
	KindString ParamKind = iota + 1
	// KindInt is an integer parameter such as a page number.
	KindInt
	// KindRecord is a small set of named parameters such as list filters.
	KindRecord
)

// Param is one element of a QueryKey after the resource name.
// The zero value is not a valid parameter; use the constructors.
type Param struct {
	kind   ParamKind
	str    string
	num    int64
	fields []Field
}

// Field is a named value inside a record parameter.
type Field struct {
	Name  string
	Value Param
}

// ParamString returns a string parameter.
func ParamString(s string) Param {
	return Param{kind: KindString, str: s}
}

// ParamInt returns an integer parameter.
func ParamInt(n int64) Param {
	return Param{kind: KindInt, num: n}
}

// ParamRecord returns a record parameter. Fields are ordered by name so that
// records built from the same values always serialize identically.
func ParamRecord(fields map[string]Param) Param {
	out := make([]Field, 0, len(fields))
	for name, value := range fields {
		out = append(out, Field{Name: name, Value: value})
	}
	slices.SortFunc(out, func(a, b Field) int { return strings.Compare(a.Name, b.Name) })
	return Param{kind: KindRecord, fields: out}
}

// Kind returns the parameter's shape.
func (p Param) Kind() ParamKind { return p.kind }

// Str returns the value of a string parameter.
func (p Param) Str() string { return p.str }

// Int returns the value of an integer parameter.
func (p Param) Int() int64 { return p.num }

// Fields returns the name-ordered fields of a record parameter.
func (p Param) Fields() []Field { return slices.Clone(p.fields) }

// Equal reports whether both parameters serialize identically.
func (p Param) Equal(other Param) bool {
	return p.String() == other.String()
}

func (p Param) String() string {
	var b strings.Builder
	p.write(&b)
	return b.String()
}

func (p Param) write(b *strings.Builder) {
	switch p.kind {
	case KindString:
		b.WriteString(strconv.Quote(p.str))
	case KindInt:
		b.WriteString(strconv.FormatInt(p.num, 10))
	case KindRecord:
		b.WriteByte('{')
		for i, f := range p.fields {
			if i > 0 {
				b.WriteByte(',')
			}
			b.WriteString(strconv.Quote(f.Name))
			b.WriteByte(':')
			f.Value.write(b)
		}
		b.WriteByte('}')
	default:
		b.WriteString("null")
	}
}

// QueryKey identifies one cached resource instance: a resource name followed
// by an ordered list of parameters. ["posts"] is a prefix of ["posts","123"].
type QueryKey struct {
	Resource string
	Params   []Param
}

// Key builds a QueryKey for resource with the given parameters.
func Key(resource string, params ...Param) QueryKey {
	return QueryKey{Resource: resource, Params: slices.Clone(params)}
}

// With returns a copy of k extended by params. k itself is not modified.
func (k QueryKey) With(params ...Param) QueryKey {
	out := make([]Param, 0, len(k.Params)+len(params))
	out = append(out, k.Params...)
	out = append(out, params...)
	return QueryKey{Resource: k.Resource, Params: out}
}

// Validate checks the key has a resource name.
func (k QueryKey) Validate() error {
	if k.Resource == "" {
		return ErrInvalidKey
	}
	return nil
}

// String returns the canonical serialization of the key. Two keys are equal
// exactly when their serializations match.
func (k QueryKey) String() string {
	var b strings.Builder
	b.WriteByte('[')
	b.WriteString(strconv.Quote(k.Resource))
	for _, p := range k.Params {
		b.WriteByte(',')
		p.write(&b)
	}
	b.WriteByte(']')
	return b.String()
}

// Equal reports whether k and other identify the same entry.
func (k QueryKey) Equal(other QueryKey) bool {
	return k.String() == other.String()
}

// HasPrefix reports whether prefix names the same resource and its parameters
// match the leading parameters of k. Every key is a prefix of itself.
func (k QueryKey) HasPrefix(prefix QueryKey) bool {
	if k.Resource != prefix.Resource || len(prefix.Params) > len(k.Params) {
		return false
	}
	for i, p := range prefix.Params {
		if !k.Params[i].Equal(p) {
			return false
		}
	}
	return true
}

// CompareKeys orders keys by resource, then parameter by parameter. A key
// sorts before every key it is a prefix of.
func CompareKeys(a, b QueryKey) int {
	if c := strings.Compare(a.Resource, b.Resource); c != 0 {
		return c
	}
	for i := range min(len(a.Params), len(b.Params)) {
		if c := strings.Compare(a.Params[i].String(), b.Params[i].String()); c != 0 {
			return c
		}
	}
	return len(a.Params) - len(b.Params)
}
