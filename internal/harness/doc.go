// Package harness runs scripted tagging scenarios against the tag engine
// and a fresh SQLite store, and snapshots their traces.
//
// # Scenario Format
//
// Scenarios are defined in YAML files with the following structure:
//
//	name: scenario_name
//	description: "What this scenario validates"
//	beans:
//	  - ref: alien
//	    type: movie
//	    fields: { title: Alien, year: 1979 }
//	steps:
//	  - op: add_tags
//	    bean: alien
//	    tags: horror,scifi
//	  - op: tagged_all
//	    type: movie
//	    tags: [horror, scifi]
//	    sql: ORDER BY movie.title LIMIT ?
//	    bindings: [10]
//	    expect:
//	      beans: [alien]
//	assertions:
//	  - type: trace_count
//	    op: associate
//	    count: 2
//	  - type: row_count
//	    table: movie_tag
//	    count: 2
//
// A tags value may be a comma-separated string or a list; leaving it out
// passes the "no tags" list.
//
// Step ops: add_tags, tag, tags, untag, has_tag (bean steps) and tagged,
// tagged_all, count, count_all (type steps).
//
// # Assertion Types
//
//   - trace_contains: an op or store event appears, optionally for one bean
//   - trace_order: steps with the listed ops appear in order
//   - trace_count: an op or store event appears exactly N times
//   - final_state: exactly one row of a table matches and carries values
//   - row_count: N rows of a table match
//
// # Deterministic Testing
//
// Every scenario gets its own in-memory database and sequential bean ids,
// so traces are identical across runs and can be compared with golden
// files (RunWithGolden).
package harness
