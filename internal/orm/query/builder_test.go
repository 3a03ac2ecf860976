package query

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/equal-orm/equal/internal/orm/schema"
)

type author struct {
	ID       string
	Name     string
	Posts    []*article
	Comments []*comment
}

type article struct {
	ID       string
	Title    string
	AuthorID string
}

type comment struct {
	ID       string
	Body     string
	AuthorID string
}

func newTestCompiler(t *testing.T) *Compiler {
	t.Helper()
	reg := schema.NewRegistry()

	require.NoError(t, schema.Define[author](reg, "").Columns(
		schema.Scalar("id", schema.TypeUUID, func(a *author) *string { return &a.ID }, schema.Primary()),
		schema.Scalar("name", schema.TypeString, func(a *author) *string { return &a.Name }),
		schema.HasMany("posts", func(a *author) *[]*article { return &a.Posts }),
		schema.HasMany("Comments", func(a *author) *[]*comment { return &a.Comments }),
	).Err())
	require.NoError(t, schema.Define[article](reg, "").Columns(
		schema.Scalar("id", schema.TypeUUID, func(a *article) *string { return &a.ID }, schema.Primary()),
		schema.Scalar("title", schema.TypeString, func(a *article) *string { return &a.Title }),
		schema.Scalar("authorId", schema.TypeUUID, func(a *article) *string { return &a.AuthorID }),
	).Err())
	require.NoError(t, schema.Define[comment](reg, "").Columns(
		schema.Scalar("id", schema.TypeUUID, func(c *comment) *string { return &c.ID }, schema.Primary()),
		schema.Scalar("body", schema.TypeText, func(c *comment) *string { return &c.Body }),
		schema.Scalar("authorId", schema.TypeUUID, func(c *comment) *string { return &c.AuthorID }),
	).Err())

	return NewCompiler(reg)
}

func aliases(cols []Column) []string {
	result := make([]string, len(cols))
	for i, c := range cols {
		result[i] = c.Alias
	}
	return result
}

func TestCompileSelect_NoRelations(t *testing.T) {
	c := newTestCompiler(t)

	stmt, err := c.CompileSelect(schema.TypeOf[author](), nil)
	require.NoError(t, err)

	assert.Equal(t, KindSelect, stmt.Kind)
	assert.Equal(t, "author", stmt.Table)
	assert.Equal(t, []string{"author_id", "author_name"}, aliases(stmt.Columns))
	assert.Empty(t, stmt.Joins)

	sql, args, err := stmt.ToSQL()
	require.NoError(t, err)
	assert.Equal(t, `SELECT "author"."id" AS "author_id", "author"."name" AS "author_name" FROM "author"`, sql)
	assert.Empty(t, args)
}

func TestCompileSelect_Relations(t *testing.T) {
	tests := []struct {
		name      string
		relations []string
		joins     []string
		columns   int
	}{
		{"no relations", []string{}, nil, 2},
		{"by column name", []string{"posts"}, []string{"article"}, 5},
		{"by property name", []string{"Comments"}, []string{"comment"}, 5},
		{"both", []string{"comments", "posts"}, []string{"article", "comment"}, 8},
		{"unknown names ignored", []string{"likes", "followers"}, nil, 2},
		{"mixed known and unknown", []string{"likes", "posts"}, []string{"article"}, 5},
		{"scalar names never join", []string{"name", "id"}, nil, 2},
	}

	c := newTestCompiler(t)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			stmt, err := c.CompileSelect(schema.TypeOf[author](), tt.relations)
			require.NoError(t, err)

			var joined []string
			for _, j := range stmt.Joins {
				assert.Equal(t, LeftJoin, j.Type)
				assert.Equal(t, "author_id", j.Column)
				assert.Equal(t, "author", j.RefTable)
				assert.Equal(t, "id", j.RefColumn)
				joined = append(joined, j.Table)
			}
			assert.Equal(t, tt.joins, joined)
			assert.Len(t, stmt.Columns, tt.columns)
		})
	}
}

func TestCompileSelect_JoinSQL(t *testing.T) {
	c := newTestCompiler(t)

	stmt, err := c.CompileSelect(schema.TypeOf[author](), []string{"posts"})
	require.NoError(t, err)

	sql, _, err := stmt.ToSQL()
	require.NoError(t, err)
	assert.Equal(t,
		`SELECT "author"."id" AS "author_id", "author"."name" AS "author_name", `+
			`"article"."id" AS "article_id", "article"."title" AS "article_title", "article"."author_id" AS "article_author_id" `+
			`FROM "author" LEFT OUTER JOIN "article" ON "article"."author_id" = "author"."id"`,
		sql)
	assert.Equal(t, sql, stmt.String())
}

type acct struct {
	ID        string
	ProfileID string
	Profile   *acctProfile
}

type acctProfile struct {
	ID string
}

func TestCompileSelect_AmbiguousAlias(t *testing.T) {
	reg := schema.NewRegistry()
	require.NoError(t, schema.Define[acct](reg, "").Columns(
		schema.Scalar("id", schema.TypeUUID, func(a *acct) *string { return &a.ID }, schema.Primary()),
		schema.Scalar("profileId", schema.TypeString, func(a *acct) *string { return &a.ProfileID }),
		schema.HasOne("profile", func(a *acct) **acctProfile { return &a.Profile }),
	).Err())
	require.NoError(t, schema.Define[acctProfile](reg, "").Column(
		schema.Scalar("id", schema.TypeUUID, func(p *acctProfile) *string { return &p.ID }, schema.Primary()),
	).Err())
	c := NewCompiler(reg)

	stmt, err := c.CompileSelect(schema.TypeOf[acct](), nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"acct_id", "acct_profile_id"}, aliases(stmt.Columns))

	_, err = c.CompileSelect(schema.TypeOf[acct](), []string{"profile"})
	require.ErrorIs(t, err, ErrAmbiguousAlias)
	assert.Contains(t, err.Error(), "acct.profile_id")
	assert.Contains(t, err.Error(), "acct_profile.id")
}

func TestCompileSelect_Errors(t *testing.T) {
	t.Run("unregistered entity", func(t *testing.T) {
		c := NewCompiler(schema.NewRegistry())

		_, err := c.CompileSelect(schema.TypeOf[author](), nil)
		require.Error(t, err)
		assert.ErrorIs(t, err, schema.ErrMetadataNotFound)
		assert.Contains(t, err.Error(), "query.author")
	})

	t.Run("unregistered relation target", func(t *testing.T) {
		reg := schema.NewRegistry()
		require.NoError(t, schema.Define[author](reg, "").Columns(
			schema.Scalar("id", schema.TypeUUID, func(a *author) *string { return &a.ID }, schema.Primary()),
			schema.HasMany("posts", func(a *author) *[]*article { return &a.Posts }),
		).Err())

		_, err := NewCompiler(reg).CompileSelect(schema.TypeOf[author](), []string{"posts"})
		assert.ErrorIs(t, err, schema.ErrMetadataNotFound)
	})

	t.Run("join needs owner primary key", func(t *testing.T) {
		reg := schema.NewRegistry()
		require.NoError(t, schema.Define[author](reg, "").Columns(
			schema.Scalar("name", schema.TypeString, func(a *author) *string { return &a.Name }),
			schema.HasMany("posts", func(a *author) *[]*article { return &a.Posts }),
		).Err())
		require.NoError(t, schema.Define[article](reg, "").Column(
			schema.Scalar("id", schema.TypeUUID, func(a *article) *string { return &a.ID }, schema.Primary()),
		).Err())

		_, err := NewCompiler(reg).CompileSelect(schema.TypeOf[author](), []string{"posts"})
		assert.ErrorIs(t, err, schema.ErrNoPrimaryKey)
	})
}

func TestCompileInsert(t *testing.T) {
	c := newTestCompiler(t)

	stmt, err := c.CompileInsert(schema.TypeOf[article](), map[string]any{
		"authorId": "u1",
		"title":    "X",
	})
	require.NoError(t, err)

	assert.Equal(t, KindInsert, stmt.Kind)
	assert.Equal(t, []Value{{Column: "title", Arg: "X"}, {Column: "author_id", Arg: "u1"}}, stmt.Values)
	assert.Equal(t, []string{"article_id", "article_title", "article_author_id"}, aliases(stmt.Returning))

	sql, args, err := stmt.ToSQL()
	require.NoError(t, err)
	assert.Equal(t,
		`INSERT INTO "article" ("title", "author_id") VALUES ($1, $2) `+
			`RETURNING "id" AS "article_id", "title" AS "article_title", "author_id" AS "article_author_id"`,
		sql)
	assert.Equal(t, []any{"X", "u1"}, args)
}

func TestCompileInsert_Empty(t *testing.T) {
	c := newTestCompiler(t)

	stmt, err := c.CompileInsert(schema.TypeOf[comment](), map[string]any{})
	require.NoError(t, err)

	sql, args, err := stmt.ToSQL()
	require.NoError(t, err)
	assert.Equal(t, `INSERT INTO "comment" DEFAULT VALUES RETURNING "id" AS "comment_id", "body" AS "comment_body", "author_id" AS "comment_author_id"`, sql)
	assert.Empty(t, args)
}

func TestCompileInsert_Errors(t *testing.T) {
	c := newTestCompiler(t)

	_, err := c.CompileInsert(schema.TypeOf[article](), map[string]any{"body": "nope"})
	assert.ErrorIs(t, err, schema.ErrUnknownColumn)

	_, err = c.CompileInsert(schema.TypeOf[author](), map[string]any{"posts": []*article{}})
	assert.ErrorIs(t, err, schema.ErrUnknownColumn)

	_, err = c.CompileInsert(schema.TypeOf[article](), map[string]any{"authorId": "a", "author_id": "b"})
	assert.ErrorContains(t, err, "both map to column author_id")

	_, err = NewCompiler(schema.NewRegistry()).CompileInsert(schema.TypeOf[article](), nil)
	assert.ErrorIs(t, err, schema.ErrMetadataNotFound)
}

func TestStatement_ToSQLErrors(t *testing.T) {
	_, _, err := (&Statement{Kind: KindSelect}).ToSQL()
	assert.Error(t, err)

	_, _, err = (&Statement{Kind: KindSelect, Table: "t"}).ToSQL()
	assert.Error(t, err)

	_, _, err = (&Statement{Kind: Kind(9), Table: "t"}).ToSQL()
	assert.Error(t, err)
}

func TestJoinType_String(t *testing.T) {
	assert.Equal(t, "LEFT OUTER", LeftJoin.String())
	assert.Equal(t, "UNKNOWN", JoinType(7).String())
}

func TestStatement_Args(t *testing.T) {
	stmt := &Statement{
		Kind:  KindInsert,
		Table: "article",
		Values: []Value{
			{Column: "title", Arg: "Hello"},
			{Column: "author_id", Arg: 7},
		},
	}
	assert.Equal(t, []any{"Hello", 7}, stmt.Args())
	assert.Empty(t, (&Statement{Kind: KindSelect}).Args())
}
