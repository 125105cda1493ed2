package subscription

import (
	"strings"
	"time"

	"github.com/google/cel-go/cel"
)

// Filter wraps a compiled CEL program gating event delivery for one
// subscriber. A nil or empty expression matches everything.
//
// Available variables:
//
//	key     string - entry key the event belongs to
//	value   dyn    - the confirmed value (JSON model)
//	removed bool   - true when the key was deleted
//	now_ms  int    - current time in ms for windowed filters
type Filter struct {
	prog    cel.Program
	enabled bool
}

// NewFilter compiles expr. An empty expression yields a pass-through
// filter.
func NewFilter(expr string) (*Filter, error) {
	expr = strings.TrimSpace(expr)
	if expr == "" {
		return &Filter{enabled: false}, nil
	}
	env, err := cel.NewEnv(
		cel.Variable("key", cel.StringType),
		cel.Variable("value", cel.DynType),
		cel.Variable("removed", cel.BoolType),
		cel.Variable("now_ms", cel.IntType),
	)
	if err != nil {
		return nil, err
	}
	ast, iss := env.Parse(expr)
	if iss != nil && iss.Err() != nil {
		return nil, iss.Err()
	}
	checked, iss2 := env.Check(ast)
	if iss2 != nil && iss2.Err() != nil {
		return nil, iss2.Err()
	}
	prog, err := env.Program(checked)
	if err != nil {
		return nil, err
	}
	return &Filter{prog: prog, enabled: true}, nil
}

// Eval evaluates the filter against ev. Evaluation errors drop the
// event for this subscriber only.
func (f *Filter) Eval(ev Event) bool {
	if f == nil || !f.enabled {
		return true
	}
	out, _, err := f.prog.Eval(map[string]interface{}{
		"key":     ev.Key,
		"value":   ev.Value,
		"removed": ev.Removed,
		"now_ms":  time.Now().UnixMilli(),
	})
	if err != nil {
		return false
	}
	b, ok := out.Value().(bool)
	return ok && b
}
