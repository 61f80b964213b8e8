package harness

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/beantag/internal/store"
)

func mustParse(t *testing.T, doc string) *Scenario {
	t.Helper()
	sc, err := ParseScenario([]byte(doc))
	require.NoError(t, err)
	return sc
}

func TestRun_Testdata(t *testing.T) {
	paths, err := FindScenarios("testdata/scenarios")
	require.NoError(t, err)
	require.NotEmpty(t, paths)

	for _, path := range paths {
		t.Run(path, func(t *testing.T) {
			sc, err := LoadScenario(path)
			require.NoError(t, err)

			for _, driver := range []string{store.DriverMattn, store.DriverModernc} {
				result, err := Run(context.Background(), sc, WithDriver(driver))
				require.NoError(t, err)
				assert.True(t, result.Pass, "%s on %s: %v", sc.Name, driver, result.Errors)
			}
		})
	}
}

func TestRun_ReportsUnmetExpectations(t *testing.T) {
	sc := mustParse(t, `
name: wrong
description: every expectation is wrong
beans:
  - {ref: alien, type: movie, fields: {title: Alien}}
steps:
  - op: tag
    bean: alien
    tags: a,b
    expect: {tags: [b, a]}
  - op: has_tag
    bean: alien
    tags: a
    expect: {has: false}
  - op: count
    type: movie
    tags: a
    expect: {count: 5}
  - op: tagged
    type: movie
    tags: a
    expect: {beans: []}
  - op: tagged
    type: movie
    tags: a
    expect: {error: boom}
`)
	result, err := Run(context.Background(), sc)
	require.NoError(t, err)
	assert.False(t, result.Pass)
	assert.Equal(t, []string{
		`steps[0] tag: tags: expected ["b" "a"], got ["a" "b"]`,
		`steps[1] has_tag: has: expected false, got true`,
		`steps[2] count: count: expected 5, got 1`,
		`steps[3] tagged: beans: expected [], got ["alien"]`,
		`steps[4] tagged: expected error containing "boom", got success`,
	}, result.Errors)
}

func TestRun_UnexpectedStepError(t *testing.T) {
	sc := mustParse(t, `
name: self
description: tags cannot be selected by tag
steps:
  - {op: tagged, type: tag, tags: x}
`)
	result, err := Run(context.Background(), sc)
	require.NoError(t, err)
	assert.False(t, result.Pass)
	require.Len(t, result.Errors, 1)
	assert.Contains(t, result.Errors[0], "unexpected error: cannot associate beans of the same type")

	last := result.Trace[len(result.Trace)-1]
	assert.Equal(t, OpTagged, last.Op)
	assert.Nil(t, last.Result)
	assert.NotEmpty(t, last.Error)
}

func TestRun_TraceNamesBeans(t *testing.T) {
	sc := mustParse(t, `
name: names
description: events name setup beans by ref and tags by title
beans:
  - {ref: alien, type: movie, fields: {title: Alien}}
steps:
  - {op: add_tags, bean: alien, tags: horror}
`)
	result, err := Run(context.Background(), sc)
	require.NoError(t, err)
	require.True(t, result.Pass, result.Errors)

	var events []string
	for _, ev := range result.Trace {
		events = append(events, ev.Kind+" "+ev.Op+" "+ev.Bean)
	}
	assert.Equal(t, []string{
		"step store alien",
		"event after_update alien",
		"event after_update tag:horror",
		"event associate alien~tag:horror",
		"step add_tags alien",
	}, events)
	for i, ev := range result.Trace {
		assert.Equal(t, i+1, ev.Seq)
	}
}

func TestRun_SetupFailure(t *testing.T) {
	sc := mustParse(t, `
name: bad_field
description: setup bean with a field the store rejects
beans:
  - {ref: a, type: movie, fields: {Title: Alien}}
steps:
  - {op: tags, bean: a}
`)
	_, err := Run(context.Background(), sc)
	assert.ErrorIs(t, err, store.ErrInvalidName)
}

func TestRun_FailingAssertions(t *testing.T) {
	sc := mustParse(t, `
name: assertions
description: assertions that do not hold
beans:
  - {ref: alien, type: movie, fields: {title: Alien}}
steps:
  - {op: add_tags, bean: alien, tags: a}
assertions:
  - {type: trace_count, op: associate, count: 2}
  - {type: row_count, table: tag, count: 0}
  - {type: final_state, table: tag, where: {title: a}, expect: {title: b}}
`)
	result, err := Run(context.Background(), sc)
	require.NoError(t, err)
	assert.False(t, result.Pass)
	require.Len(t, result.Errors, 3)
	assert.Contains(t, result.Errors[0], "2 occurrences of associate")
	assert.Contains(t, result.Errors[1], "0 rows in tag")
	assert.Contains(t, result.Errors[2], `field "title" = b`)
}
