package queryir

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/beantag/internal/bean"
)

func TestIsIdent(t *testing.T) {
	valid := []string{"movie", "tag", "movie_tag", "a1", "x"}
	invalid := []string{"", "Movie", "1movie", "_movie", "movie-tag", "movie tag", "movie;drop", "mövie"}

	for _, name := range valid {
		assert.True(t, IsIdent(name), name)
	}
	for _, name := range invalid {
		assert.False(t, IsIdent(name), name)
	}
}

func TestValidate_ValidQueries(t *testing.T) {
	queries := []Query{
		Find{Type: "movie"},
		Find{
			Type: "movie",
			Filter: And{Predicates: []Predicate{
				Equals{Field: "title", Value: bean.String("Alien")},
				In{Field: "year", Values: []bean.Value{bean.Int(1979), bean.Int(1985)}},
			}},
			Extra:    "ORDER BY title LIMIT ?",
			Bindings: []any{10},
		},
		&Find{Type: "movie", Filter: &Equals{Field: "rating", Value: bean.Null{}}},
		Tagged{Type: "movie", Tags: []string{"horror", "gothic"}, MatchAll: true},
		Tagged{Type: "movie"},
		Related{Source: bean.Identity{Type: "movie", ID: "m1"}, Type: "tag"},
		Count{Of: Tagged{Type: "movie", Tags: []string{"horror"}}},
	}

	for _, q := range queries {
		assert.NoError(t, Validate(q), "%#v", q)
	}
}

func TestValidate_Problems(t *testing.T) {
	tests := []struct {
		name    string
		query   Query
		message string
	}{
		{"nil query", nil, "nil query"},
		{"bad type name", Find{Type: "Movie"}, `type name "Movie"`},
		{"injection in type", Tagged{Type: "movie; DROP TABLE tag"}, "type name"},
		{"bad field name", Find{Type: "movie", Filter: Equals{Field: "ti tle", Value: bean.String("x")}}, `field name "ti tle"`},
		{"nil value", Find{Type: "movie", Filter: Equals{Field: "title"}}, "compared to nil value"},
		{"nil in value", Find{Type: "movie", Filter: In{Field: "title", Values: []bean.Value{nil}}}, "value 0 is nil"},
		{"nested bad field", Find{Type: "movie", Filter: And{Predicates: []Predicate{In{Field: "X"}}}}, `field name "X"`},
		{"tags by tag", Tagged{Type: "tag", Tags: []string{"a"}}, "cannot select tags by tag"},
		{"unstored source", Related{Source: bean.Identity{Type: "movie"}, Type: "tag"}, "has no id"},
		{"self relation", Related{Source: bean.Identity{Type: "tag", ID: "t1"}, Type: "tag"}, "between two tag beans"},
		{"count of count", Count{Of: Count{Of: Find{Type: "movie"}}}, "count of count"},
		{"count of nil", Count{}, "nil query"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Validate(tt.query)
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrInvalidQuery)
			assert.Contains(t, err.Error(), tt.message)
		})
	}
}

func TestValidate_ReportsAllProblems(t *testing.T) {
	err := Validate(Find{
		Type: "Bad",
		Filter: And{Predicates: []Predicate{
			Equals{Field: "A", Value: bean.Int(1)},
			In{Field: "B"},
		}},
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), `"Bad"`)
	assert.Contains(t, err.Error(), `"A"`)
	assert.Contains(t, err.Error(), `"B"`)
}
