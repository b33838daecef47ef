package expr

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/leapstack-labs/querykit/pkg/sqltype"
)

func TestEqualIndependentlyBuiltTrees(t *testing.T) {
	build := func() *Select {
		users := NewTable("users").As("u")
		id := users.Col("id", sqltype.BigInt)
		s := SelectFrom(users, id)
		s.Where = Eq(users.Col("name", sqltype.Varchar), Arg("alice"))
		s.OrderBy = []*OrderBy{Desc(id)}
		return s
	}

	a, b := build(), build()
	assert.NotSame(t, a, b)
	assert.True(t, Equal(a, b))
}

func TestEqualDetectsDifferences(t *testing.T) {
	users := NewTable("users")
	id := users.Col("id", sqltype.BigInt)
	name := users.Col("name", sqltype.Varchar)

	tests := []struct {
		name string
		a, b Expr
	}{
		{"different node kind", id, Arg(int64(1))},
		{"different column name", id, users.Col("uid", sqltype.BigInt)},
		{"different type code", id, users.Col("id", sqltype.Integer)},
		{"different table alias", users.As("u").Col("id", sqltype.BigInt), id},
		{"nil versus set table", id, &Column{Name: "id", Type: sqltype.BigInt}},
		{"different operator", Eq(id, Arg(1)), NotEq(id, Arg(1))},
		{"different argument value", Eq(id, Arg(1)), Eq(id, Arg(2))},
		{"different argument type", Eq(id, Arg(int64(1))), Eq(id, TypedArg(int64(1), sqltype.Integer))},
		{"different order direction", Asc(id), Desc(id)},
		{"different declared name", As(id, "a"), As(id, "b")},
		{"where versus no where", SelectFrom(users, id), &Select{
			Columns: []*ColumnDeclaring{{Expr: id, DeclaredName: "id"}},
			From:    users,
			Where:   IsNull(name),
		}},
		{"distinct flag", SelectFrom(users, id), &Select{
			Columns:  []*ColumnDeclaring{{Expr: id, DeclaredName: "id"}},
			From:     users,
			Distinct: true,
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.False(t, Equal(tt.a, tt.b))
			assert.False(t, Equal(tt.b, tt.a))
		})
	}
}

func TestEqualPaging(t *testing.T) {
	users := NewTable("users")
	ten, alsoTen, twenty := 10, 10, 20

	a := SelectFrom(users)
	a.Limit = &ten
	b := SelectFrom(users)
	b.Limit = &alsoTen

	assert.True(t, Equal(a, b), "paging compares by value, not pointer")

	b.Limit = &twenty
	assert.False(t, Equal(a, b))
}

func TestEqualNil(t *testing.T) {
	users := NewTable("users")
	assert.True(t, Equal(nil, nil))
	assert.False(t, Equal(users, nil))
	assert.False(t, Equal(nil, users))
}

func TestEqualStatements(t *testing.T) {
	users := NewTable("users")
	name := users.Col("name", sqltype.Varchar)

	a := NewUpdate(users, Eq(users.Col("id", sqltype.BigInt), Arg(int64(1))), AssignValue(name, "bob"))
	b := NewUpdate(users, Eq(users.Col("id", sqltype.BigInt), Arg(int64(1))), AssignValue(name, "bob"))
	c := NewUpdate(users, nil, AssignValue(name, "bob"))

	assert.True(t, Equal(a, b))
	assert.False(t, Equal(a, c))
}
