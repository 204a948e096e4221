package docdb

import (
	"bytes"
	"regexp"
	"strings"

	"go.mongodb.org/mongo-driver/v2/bson"
)

// Filter selects documents in a collection. The embedded engine evaluates it
// with Match against raw BSON; the MongoDB engine sends Document to the server.
type Filter interface {
	// Match reports whether doc satisfies the filter. Missing fields compare
	// as null.
	Match(doc bson.Raw) bool
	// Document renders the filter as a MongoDB query document.
	Document() bson.D
}

// All matches every document.
func All() Filter {
	return allFilter{}
}

// Eq matches documents whose field equals value. Values are compared by BSON
// type and encoding, so numbers must be queried with the Go type they were
// stored with. A nil value matches null and missing fields.
func Eq(field string, value any) Filter {
	return newEqFilter(field, value)
}

// EqFold matches documents whose string field equals value under Unicode
// case folding.
func EqFold(field, value string) Filter {
	return foldFilter{field: field, value: value}
}

// In matches documents whose field equals any of values.
func In[V any](field string, values ...V) Filter {
	f := inFilter{field: field, values: make([]any, 0, len(values))}
	for _, v := range values {
		f.values = append(f.values, v)
		f.eqs = append(f.eqs, newEqFilter(field, v))
	}

	return f
}

// And matches documents satisfying every filter. An empty And matches all.
func And(filters ...Filter) Filter {
	return andFilter(filters)
}

// Or matches documents satisfying at least one filter. An empty Or matches
// nothing.
func Or(filters ...Filter) Filter {
	return orFilter(filters)
}

func lookup(doc bson.Raw, field string) bson.RawValue {
	v, err := doc.LookupErr(strings.Split(field, ".")...)
	if err != nil {
		return bson.RawValue{Type: bson.TypeNull}
	}

	return v
}

type allFilter struct{}

func (allFilter) Match(bson.Raw) bool { return true }

func (allFilter) Document() bson.D { return bson.D{} }

type eqFilter struct {
	field string
	value any
	typ   bson.Type
	data  []byte
	err   error
}

func newEqFilter(field string, value any) eqFilter {
	f := eqFilter{field: field, value: value}
	if value == nil {
		f.typ = bson.TypeNull
		return f
	}
	f.typ, f.data, f.err = bson.MarshalValue(value)

	return f
}

func (f eqFilter) Match(doc bson.Raw) bool {
	if f.err != nil {
		return false
	}
	v := lookup(doc, f.field)

	return v.Type == f.typ && bytes.Equal(v.Value, f.data)
}

func (f eqFilter) Document() bson.D {
	return bson.D{{Key: f.field, Value: f.value}}
}

type foldFilter struct {
	field string
	value string
}

func (f foldFilter) Match(doc bson.Raw) bool {
	s, ok := lookup(doc, f.field).StringValueOK()
	if !ok {
		return false
	}

	return strings.EqualFold(s, f.value)
}

func (f foldFilter) Document() bson.D {
	return bson.D{{Key: f.field, Value: bson.Regex{
		Pattern: "^" + regexp.QuoteMeta(f.value) + "$",
		Options: "i",
	}}}
}

type inFilter struct {
	field  string
	values []any
	eqs    []eqFilter
}

func (f inFilter) Match(doc bson.Raw) bool {
	for _, eq := range f.eqs {
		if eq.Match(doc) {
			return true
		}
	}

	return false
}

func (f inFilter) Document() bson.D {
	return bson.D{{Key: f.field, Value: bson.D{{Key: "$in", Value: bson.A(f.values)}}}}
}

type andFilter []Filter

func (f andFilter) Match(doc bson.Raw) bool {
	for _, sub := range f {
		if !sub.Match(doc) {
			return false
		}
	}

	return true
}

func (f andFilter) Document() bson.D {
	if len(f) == 0 {
		return bson.D{}
	}
	clauses := make(bson.A, 0, len(f))
	for _, sub := range f {
		clauses = append(clauses, sub.Document())
	}

	return bson.D{{Key: "$and", Value: clauses}}
}

type orFilter []Filter

func (f orFilter) Match(doc bson.Raw) bool {
	for _, sub := range f {
		if sub.Match(doc) {
			return true
		}
	}

	return false
}

func (f orFilter) Document() bson.D {
	if len(f) == 0 {
		return bson.D{{Key: "$expr", Value: false}}
	}
	clauses := make(bson.A, 0, len(f))
	for _, sub := range f {
		clauses = append(clauses, sub.Document())
	}

	return bson.D{{Key: "$or", Value: clauses}}
}
