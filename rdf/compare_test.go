package rdf_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/GMaffio99/SPARQLPolicyTool/rdf"
)

func intVal(s string) rdf.NodeValue  { return rdf.NodeValue{Lexical: s, Type: rdf.TypeInteger} }
func dateVal(s string) rdf.NodeValue { return rdf.NodeValue{Lexical: s, Type: rdf.TypeDate} }
func strVal(s string) rdf.NodeValue  { return rdf.NodeValue{Lexical: s, Type: rdf.TypeString} }

func TestCompareIntegers(t *testing.T) {
	r, ok := rdf.Compare(intVal("3"), intVal("5"))
	assert.True(t, ok)
	assert.Equal(t, rdf.Less, r)

	r, ok = rdf.Compare(intVal("5"), intVal("5"))
	assert.True(t, ok)
	assert.Equal(t, rdf.Equal_, r)

	r, ok = rdf.Compare(intVal("9"), intVal("5"))
	assert.True(t, ok)
	assert.Equal(t, rdf.Greater, r)
}

func TestCompareDates(t *testing.T) {
	r, ok := rdf.Compare(dateVal("2020-01-01"), dateVal("2021-01-01"))
	assert.True(t, ok)
	assert.Equal(t, rdf.Less, r)
}

func TestCompareMalformedDate(t *testing.T) {
	_, ok := rdf.Compare(dateVal("not-a-date"), dateVal("2021-01-01"))
	assert.False(t, ok)
}

func TestCompareMismatchedTypes(t *testing.T) {
	_, ok := rdf.Compare(intVal("1"), strVal("1"))
	assert.False(t, ok)
}

func TestCompareStrings(t *testing.T) {
	r, ok := rdf.Compare(strVal("abc"), strVal("abd"))
	assert.True(t, ok)
	assert.Equal(t, rdf.Less, r)
}

func TestValuesEqualFallsBackToLexicalOnUnparsable(t *testing.T) {
	assert.True(t, rdf.ValuesEqual(dateVal("bogus"), dateVal("bogus")))
	assert.False(t, rdf.ValuesEqual(dateVal("bogus"), dateVal("2021-01-01")))
}

func TestValuesEqualDifferentTypesNeverEqual(t *testing.T) {
	assert.False(t, rdf.ValuesEqual(intVal("7"), strVal("7")))
}
