package streamsvc

import (
	"fmt"
	"math"
	"strings"

	"github.com/google/cel-go/cel"
)

// celFilter wraps a compiled CEL program evaluated against stream views by
// List. When disabled, Eval always returns true.
type celFilter struct {
	prog    cel.Program
	enabled bool
}

func newCELFilter(expr string) (celFilter, error) {
	expr = strings.TrimSpace(expr)
	if expr == "" {
		return celFilter{enabled: false}, nil
	}
	env, err := cel.NewEnv(
		cel.Variable("stream", cel.MapType(cel.StringType, cel.DynType)),
		cel.Variable("now", cel.IntType),
	)
	if err != nil {
		return celFilter{}, err
	}
	ast, iss := env.Compile(expr)
	if iss != nil && iss.Err() != nil {
		return celFilter{}, iss.Err()
	}
	if t := ast.OutputType(); !t.IsExactType(cel.BoolType) && !t.IsExactType(cel.DynType) {
		return celFilter{}, fmt.Errorf("filter must evaluate to bool, got %s", t)
	}
	prog, err := env.Program(ast)
	if err != nil {
		return celFilter{}, err
	}
	return celFilter{prog: prog, enabled: true}, nil
}

// Eval reports whether v matches. Evaluation errors count as no match.
func (f celFilter) Eval(v View) bool {
	if !f.enabled {
		return true
	}
	out, _, err := f.prog.Eval(map[string]any{
		"stream": celStream(v),
		"now":    clampInt(v.Now),
	})
	if err != nil {
		return false
	}
	b, ok := out.Value().(bool)
	return ok && b
}

func celStream(v View) map[string]any {
	s := v.Stream
	return map[string]any{
		"id":                s.ID,
		"sender":            string(s.Sender),
		"recipient":         string(s.Recipient),
		"mint":              string(s.Mint),
		"partner":           string(s.Partner),
		"name":              s.Name.String(),
		"closed":            s.Closed,
		"status":            string(v.Status),
		"flags":             s.Flags.Names(),
		"start":             clampInt(s.Start),
		"cliff":             clampInt(s.Cliff),
		"period":            clampInt(s.Period),
		"end":               clampInt(v.End),
		"net":               clampInt(s.NetAmountDeposited),
		"withdrawn":         clampInt(s.WithdrawnAmount),
		"unlocked":          clampInt(v.Unlocked),
		"withdrawable":      clampInt(v.Withdrawable),
		"created_at":        clampInt(s.CreatedAt),
		"last_withdrawn_at": clampInt(s.LastWithdrawnAt),
	}
}

// clampInt maps a uint64 to CEL's int, saturating at MaxInt64.
func clampInt(v uint64) int64 {
	if v > math.MaxInt64 {
		return math.MaxInt64
	}
	return int64(v)
}
