// Package predicate is the query language shared by the resolver and the stores.
//
// Authorization results are expressed as a small AST rather than SQL so that they
// can be combined (conjoined, superseded, unioned across clusters) before a store
// adapter compiles them for its dialect.
package predicate

// Field is a column that predicates may compare.
type Field string

// Fields understood by the compiler. Not every field exists on every table.
const (
	FieldID                 Field = "id"
	FieldFlexID             Field = "flexid"
	FieldClusterID          Field = "cluster_id"
	FieldPublic             Field = "public"
	FieldContentHash        Field = "content_hash"
	FieldMarkForDestruction Field = "mark_for_destruction"
	FieldKeyHash            Field = "key_hash"
	FieldActionType         Field = "action_type"
)

// Op is a comparison operator.
type Op string

// Comparison operators.
const (
	OpEq     Op = "="
	OpIn     Op = "IN"
	OpIsNull Op = "IS NULL"
	OpLte    Op = "<="
	OpGte    Op = ">="
)

// Predicate is a node of the query AST.
type Predicate interface {
	isPredicate()
}

// Const is a constant truth value.
type Const struct {
	Value bool
}

// Compare compares a field against Values (one value except for OpIn; none for OpIsNull).
type Compare struct {
	Field  Field
	Op     Op
	Values []any
}

// Tag matches contents carrying Tag exactly, or any tag starting with Tag when Prefix is set.
type Tag struct {
	Tag    string
	Prefix bool
}

// And is a conjunction.
type And struct {
	Terms []Predicate
}

// Or is a disjunction.
type Or struct {
	Terms []Predicate
}

// Not negates Term.
type Not struct {
	Term Predicate
}

func (Const) isPredicate()   {}
func (Compare) isPredicate() {}
func (Tag) isPredicate()     {}
func (And) isPredicate()     {}
func (Or) isPredicate()      {}
func (Not) isPredicate()     {}

// True matches everything.
func True() Predicate { return Const{Value: true} }

// False matches nothing.
func False() Predicate { return Const{Value: false} }

// Eq matches field = value.
func Eq(field Field, value any) Predicate {
	return Compare{Field: field, Op: OpEq, Values: []any{value}}
}

// In matches field IN values. An empty list matches nothing.
func In[T any](field Field, values ...T) Predicate {
	if len(values) == 0 {
		return False()
	}
	anyValues := make([]any, 0, len(values))
	for _, v := range values {
		anyValues = append(anyValues, v)
	}
	return Compare{Field: field, Op: OpIn, Values: anyValues}
}

// IsNull matches field IS NULL.
func IsNull(field Field) Predicate {
	return Compare{Field: field, Op: OpIsNull}
}

// Lte matches field <= value.
func Lte(field Field, value any) Predicate {
	return Compare{Field: field, Op: OpLte, Values: []any{value}}
}

// Gte matches field >= value.
func Gte(field Field, value any) Predicate {
	return Compare{Field: field, Op: OpGte, Values: []any{value}}
}

// HasTag matches contents carrying exactly tag.
func HasTag(tag string) Predicate {
	return Tag{Tag: tag}
}

// HasTagPrefix matches contents carrying a tag that starts with prefix.
func HasTagPrefix(prefix string) Predicate {
	return Tag{Tag: prefix, Prefix: true}
}

// AllOf conjoins terms. nil terms count as True; any False term makes the result False.
func AllOf(terms ...Predicate) Predicate {
	flat := make([]Predicate, 0, len(terms))
	for _, term := range terms {
		switch t := term.(type) {
		case nil:
			continue
		case Const:
			if !t.Value {
				return False()
			}
			continue
		case And:
			flat = append(flat, t.Terms...)
		default:
			flat = append(flat, t)
		}
	}
	switch len(flat) {
	case 0:
		return True()
	case 1:
		return flat[0]
	}
	return And{Terms: flat}
}

// AnyOf disjoins terms. nil terms are skipped; an empty disjunction is False.
func AnyOf(terms ...Predicate) Predicate {
	flat := make([]Predicate, 0, len(terms))
	for _, term := range terms {
		switch t := term.(type) {
		case nil:
			continue
		case Const:
			if t.Value {
				return True()
			}
			continue
		case Or:
			flat = append(flat, t.Terms...)
		default:
			flat = append(flat, t)
		}
	}
	switch len(flat) {
	case 0:
		return False()
	case 1:
		return flat[0]
	}
	return Or{Terms: flat}
}

// Negate returns NOT term, folding constants and double negation.
func Negate(term Predicate) Predicate {
	switch t := term.(type) {
	case nil:
		return False()
	case Const:
		return Const{Value: !t.Value}
	case Not:
		return t.Term
	}
	return Not{Term: term}
}

// IsFalse reports whether p is the constant False.
func IsFalse(p Predicate) bool {
	c, ok := p.(Const)
	return ok && !c.Value
}

// IsTrue reports whether p is nil or the constant True.
func IsTrue(p Predicate) bool {
	if p == nil {
		return true
	}
	c, ok := p.(Const)
	return ok && c.Value
}
