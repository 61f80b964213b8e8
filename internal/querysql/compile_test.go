package querysql

import (
	"fmt"
	"testing"

	"github.com/sebdah/goldie/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/beantag/internal/bean"
	"github.com/roach88/beantag/internal/queryir"
)

// TestCompile_Golden snapshots the SQL and parameter list of each query
// shape. Regenerate with:
//
//	go test ./internal/querysql -run TestCompile_Golden -update
func TestCompile_Golden(t *testing.T) {
	tests := []struct {
		name  string
		query queryir.Query
	}{
		{
			name:  "find_all",
			query: queryir.Find{Type: "movie"},
		},
		{
			name: "find_filter",
			query: queryir.Find{
				Type: "movie",
				Filter: queryir.FilterFromMap(map[string][]bean.Value{
					"title": {bean.String("Alien"), bean.String("Brazil")},
					"year":  {bean.Int(1979)},
				}),
			},
		},
		{
			name: "find_null_extra",
			query: queryir.Find{
				Type: "movie",
				Filter: queryir.And{Predicates: []queryir.Predicate{
					queryir.Equals{Field: "rating", Value: bean.Null{}},
					queryir.Equals{Field: "title", Value: bean.String("Alien")},
				}},
				Extra:    " ORDER BY movie.title DESC LIMIT ? ",
				Bindings: []any{10},
			},
		},
		{
			name:  "tagged_any",
			query: queryir.Tagged{Type: "movie", Tags: []string{"horror", "gothic"}},
		},
		{
			name: "tagged_all_extra",
			query: queryir.Tagged{
				Type:     "movie",
				Tags:     []string{"horror", "gothic", "horror"},
				MatchAll: true,
				Extra:    "ORDER BY movie.title DESC LIMIT ?",
				Bindings: []any{10},
			},
		},
		{
			name:  "tagged_type_after_tag",
			query: queryir.Tagged{Type: "video", Tags: []string{"x"}},
		},
		{
			name:  "tagged_empty",
			query: queryir.Tagged{Type: "movie", MatchAll: true},
		},
		{
			name: "count_tagged_all",
			query: queryir.Count{Of: queryir.Tagged{
				Type:     "movie",
				Tags:     []string{"horror", "gothic"},
				MatchAll: true,
			}},
		},
		{
			name: "related",
			query: queryir.Related{
				Source: bean.Identity{Type: "movie", ID: "m1"},
				Type:   "tag",
			},
		},
	}

	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	compiler := NewSQLCompiler()

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sql, params, err := compiler.Compile(tt.query)
			require.NoError(t, err)
			g.Assert(t, tt.name, []byte(fmt.Sprintf("%s\n-- params: %v\n", sql, params)))
		})
	}
}

func TestCompile_ValuesNeverInterpolated(t *testing.T) {
	compiler := NewSQLCompiler()

	sql, params, err := compiler.Compile(queryir.Tagged{
		Type: "movie",
		Tags: []string{"x' OR '1'='1"},
	})
	require.NoError(t, err)
	assert.NotContains(t, sql, "OR '1'")
	assert.Equal(t, []any{"x' OR '1'='1", 1}, params)
}

func TestCompile_PointerQueries(t *testing.T) {
	compiler := NewSQLCompiler()

	byValue, _, err := compiler.Compile(queryir.Find{Type: "movie"})
	require.NoError(t, err)
	byPointer, _, err := compiler.Compile(&queryir.Find{Type: "movie"})
	require.NoError(t, err)
	assert.Equal(t, byValue, byPointer)

	count, _, err := compiler.Compile(&queryir.Count{Of: &queryir.Find{Type: "movie"}})
	require.NoError(t, err)
	assert.Equal(t, "SELECT COUNT(*) FROM (SELECT movie.* FROM movie)", count)
}

func TestCompile_CountKeepsExtra(t *testing.T) {
	compiler := NewSQLCompiler()

	sql, params, err := compiler.Compile(queryir.Count{Of: queryir.Find{
		Type:     "movie",
		Extra:    "LIMIT ?",
		Bindings: []any{2},
	}})
	require.NoError(t, err)
	assert.Equal(t, "SELECT COUNT(*) FROM (SELECT movie.* FROM movie LIMIT ?)", sql)
	assert.Equal(t, []any{2}, params)
}

func TestCompile_NestedAndIsParenthesized(t *testing.T) {
	compiler := NewSQLCompiler()

	sql, params, err := compiler.Compile(queryir.Find{
		Type: "movie",
		Filter: queryir.And{Predicates: []queryir.Predicate{
			queryir.Equals{Field: "a", Value: bean.Int(1)},
			queryir.And{Predicates: []queryir.Predicate{
				queryir.Equals{Field: "b", Value: bean.Bool(true)},
				queryir.In{Field: "c"},
			}},
		}},
	})
	require.NoError(t, err)
	assert.Equal(t,
		"SELECT movie.* FROM movie WHERE movie.a = ? AND (movie.b = ? AND 1 = 0) ORDER BY movie.id ASC COLLATE BINARY",
		sql)
	assert.Equal(t, []any{int64(1), true}, params)
}

func TestCompile_RejectsInvalidQueries(t *testing.T) {
	compiler := NewSQLCompiler()

	queries := []queryir.Query{
		nil,
		queryir.Find{Type: "movie; DROP TABLE tag"},
		queryir.Tagged{Type: "Movie", Tags: []string{"a"}},
		queryir.Related{Source: bean.Identity{Type: "movie"}, Type: "tag"},
	}
	for _, q := range queries {
		_, _, err := compiler.Compile(q)
		assert.ErrorIs(t, err, queryir.ErrInvalidQuery, "%#v", q)
	}
}
