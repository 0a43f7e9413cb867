package predicate

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/google/uuid"

	apperrors "github.com/devkral/secretgraph/internal/errors"
)

// Dialect selects placeholder and value encoding for a SQL backend.
type Dialect int

// Supported dialects.
const (
	Postgres Dialect = iota
	MySQL
)

// Tables the compiler knows the columns of.
const (
	TableClusters = "clusters"
	TableContents = "contents"
	TableActions  = "actions"
)

// ErrUnsupportedField indicates a predicate references a column the table lacks.
var ErrUnsupportedField = apperrors.Wrap(apperrors.ErrInvalidInput, "unsupported predicate field")

var tableFields = map[string]map[Field]bool{
	TableClusters: {
		FieldID: true, FieldFlexID: true, FieldPublic: true, FieldMarkForDestruction: true,
	},
	TableContents: {
		FieldID: true, FieldFlexID: true, FieldClusterID: true,
		FieldContentHash: true, FieldMarkForDestruction: true,
	},
	TableActions: {
		FieldID: true, FieldClusterID: true, FieldKeyHash: true, FieldActionType: true,
	},
}

// Placeholder returns the bind parameter for the 1-based position n.
func (d Dialect) Placeholder(n int) string {
	if d == MySQL {
		return "?"
	}
	return "$" + strconv.Itoa(n)
}

// Compile renders p as a WHERE clause body for table. Bind parameters are
// numbered after offset existing ones.
func Compile(p Predicate, d Dialect, table string, offset int) (string, []any, error) {
	c := &compiler{dialect: d, offset: offset}
	sql, err := c.compile(p, table)
	if err != nil {
		return "", nil, err
	}
	return sql, c.args, nil
}

type compiler struct {
	dialect Dialect
	offset  int
	args    []any
}

func (c *compiler) bind(field Field, v any) string {
	if c.dialect == MySQL {
		if id, ok := v.(uuid.UUID); ok && field == FieldFlexID {
			b, _ := id.MarshalBinary()
			v = b
		}
	}
	c.args = append(c.args, v)
	return c.dialect.Placeholder(c.offset + len(c.args))
}

func (c *compiler) column(table string, field Field) (string, error) {
	if !tableFields[table][field] {
		return "", apperrors.Wrapf(ErrUnsupportedField, "%s.%s", table, field)
	}
	return table + "." + string(field), nil
}

func (c *compiler) compile(p Predicate, table string) (string, error) {
	switch node := p.(type) {
	case nil:
		return "1=1", nil
	case Const:
		if node.Value {
			return "1=1", nil
		}
		return "1=0", nil
	case Compare:
		return c.compare(node, table)
	case Tag:
		if table != TableContents {
			return "", apperrors.Wrapf(ErrUnsupportedField, "%s.tags", table)
		}
		if node.Prefix {
			return fmt.Sprintf(
				"EXISTS (SELECT 1 FROM content_tags WHERE content_tags.content_id = contents.id AND content_tags.tag LIKE %s)",
				c.bind("", escapeLike(node.Tag)+"%"),
			), nil
		}
		return fmt.Sprintf(
			"EXISTS (SELECT 1 FROM content_tags WHERE content_tags.content_id = contents.id AND content_tags.tag = %s)",
			c.bind("", node.Tag),
		), nil
	case And:
		return c.join(node.Terms, " AND ", "1=1", table)
	case Or:
		return c.join(node.Terms, " OR ", "1=0", table)
	case Not:
		inner, err := c.compile(node.Term, table)
		if err != nil {
			return "", err
		}
		return "NOT (" + inner + ")", nil
	default:
		return "", apperrors.Wrapf(apperrors.ErrInvalidInput, "unknown predicate node %T", p)
	}
}

func (c *compiler) compare(node Compare, table string) (string, error) {
	col, err := c.column(table, node.Field)
	if err != nil {
		return "", err
	}

	switch node.Op {
	case OpIsNull:
		return col + " IS NULL", nil
	case OpIn:
		if len(node.Values) == 0 {
			return "1=0", nil
		}
		placeholders := make([]string, 0, len(node.Values))
		for _, v := range node.Values {
			placeholders = append(placeholders, c.bind(node.Field, v))
		}
		return col + " IN (" + strings.Join(placeholders, ", ") + ")", nil
	case OpEq, OpLte, OpGte:
		if len(node.Values) != 1 {
			return "", apperrors.Wrapf(apperrors.ErrInvalidInput, "%s expects one value", node.Op)
		}
		return fmt.Sprintf("%s %s %s", col, node.Op, c.bind(node.Field, node.Values[0])), nil
	default:
		return "", apperrors.Wrapf(apperrors.ErrInvalidInput, "unknown operator %q", node.Op)
	}
}

func (c *compiler) join(terms []Predicate, sep, empty, table string) (string, error) {
	if len(terms) == 0 {
		return empty, nil
	}
	parts := make([]string, 0, len(terms))
	for _, term := range terms {
		part, err := c.compile(term, table)
		if err != nil {
			return "", err
		}
		parts = append(parts, "("+part+")")
	}
	return strings.Join(parts, sep), nil
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}
