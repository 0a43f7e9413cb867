package predicate

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAllOf(t *testing.T) {
	a := Eq(FieldID, int64(1))
	b := HasTag("state=public")

	t.Run("drops true and nil", func(t *testing.T) {
		assert.Equal(t, a, AllOf(True(), nil, a))
	})

	t.Run("false absorbs", func(t *testing.T) {
		assert.Equal(t, False(), AllOf(a, False(), b))
	})

	t.Run("flattens nested conjunctions", func(t *testing.T) {
		assert.Equal(t, And{Terms: []Predicate{a, b, a}}, AllOf(AllOf(a, b), a))
	})

	t.Run("empty is true", func(t *testing.T) {
		assert.Equal(t, True(), AllOf())
	})
}

func TestAnyOf(t *testing.T) {
	a := Eq(FieldID, int64(1))
	b := HasTag("state=public")

	t.Run("empty is false", func(t *testing.T) {
		assert.True(t, IsFalse(AnyOf()))
	})

	t.Run("true absorbs", func(t *testing.T) {
		assert.Equal(t, True(), AnyOf(a, True()))
	})

	t.Run("drops false", func(t *testing.T) {
		assert.Equal(t, Or{Terms: []Predicate{a, b}}, AnyOf(False(), a, b))
	})
}

func TestIn(t *testing.T) {
	assert.True(t, IsFalse(In(FieldID, []int64{}...)))
	assert.Equal(t, Compare{Field: FieldID, Op: OpIn, Values: []any{int64(1), int64(2)}}, In(FieldID, int64(1), int64(2)))
}

func TestNegate(t *testing.T) {
	a := HasTag("type=File")
	assert.Equal(t, a, Negate(Negate(a)))
	assert.Equal(t, False(), Negate(True()))
}

func TestCombinators(t *testing.T) {
	a := HasTagPrefix("type=")
	b := HasTag("state=public")

	t.Run("Conjoin keeps both", func(t *testing.T) {
		assert.Equal(t, And{Terms: []Predicate{a, b}}, Conjoin(a, b))
	})

	t.Run("Supersede replaces", func(t *testing.T) {
		assert.Equal(t, b, Supersede(a, b))
		assert.Equal(t, True(), Supersede(a, nil))
	})

	t.Run("UnionClusters of nothing is empty", func(t *testing.T) {
		assert.True(t, IsFalse(UnionClusters()))
	})
}
