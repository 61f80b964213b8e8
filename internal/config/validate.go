package config

import (
	_ "embed"
	"errors"
	"fmt"
	"strings"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	cueerrors "cuelang.org/go/cue/errors"
)

//go:embed schema.cue
var schemaCUE []byte

// ErrInvalid is returned when settings do not satisfy the schema.
var ErrInvalid = errors.New("config: invalid")

// Validate checks cfg against the #Config schema.
func Validate(cfg Config) error {
	ctx := cuecontext.New()

	schema := ctx.CompileBytes(schemaCUE, cue.Filename("schema.cue"))
	if err := schema.Err(); err != nil {
		return fmt.Errorf("compile config schema: %w", err)
	}
	def := schema.LookupPath(cue.ParsePath("#Config"))

	value := ctx.Encode(map[string]any{
		KeyDatabase:        cfg.Database,
		KeyDriver:          cfg.Driver,
		KeyLogLevel:        cfg.LogLevel,
		KeyUniqueTagTitles: cfg.UniqueTagTitles,
	})

	if err := def.Unify(value).Validate(cue.Concrete(true)); err != nil {
		var msgs []string
		for _, e := range cueerrors.Errors(err) {
			msgs = append(msgs, strings.TrimSpace(e.Error()))
		}
		return fmt.Errorf("%w: %s", ErrInvalid, strings.Join(msgs, "; "))
	}
	return nil
}
