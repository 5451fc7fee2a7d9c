// Package expr implements the small expression language used to bind
// fields to each other by name: a dotted property path optionally
// prefixed with "_ctx." to reach the ambient context instead of the
// current record, a comma-separated list of such paths, and a single
// binary arithmetic operation against one path (used for expressions
// like "_size - 1").
//
// The grammar is four productions wide and closed (no user-defined
// functions, no operator precedence chains), which doesn't warrant a
// parser-combinator dependency. This resolver is a hand-rolled
// string-splitting evaluator over the standard library; see DESIGN.md
// for the reasoning. The expression string is parsed again on every
// Resolve call.
package expr

import (
	"strconv"
	"strings"

	"github.com/binspector/binspector/bctx"
	"github.com/binspector/binspector/errs"
)

// Scope is what an expression is resolved against: the record currently
// being built (or already built, on write) plus the ambient context tree.
type Scope struct {
	Instance map[string]any
	Ctx      *bctx.Context
}

const ctxPrefix = "_ctx."

// Resolve evaluates expression against scope. A bare comma-free path with
// no arithmetic operator returns the raw value at that path. A
// comma-separated list returns a []any of each term's value. A path
// followed by one of + - * / and an integer literal returns the
// arithmetic result as a float64 (narrowed to int64 when the path value
// and operand are both integral).
func Resolve(expression string, scope Scope) (any, error) {
	terms := splitTopLevel(expression, ',')
	if len(terms) > 1 {
		out := make([]any, len(terms))
		for i, term := range terms {
			v, err := resolveTerm(strings.TrimSpace(term), scope)
			if err != nil {
				return nil, err
			}
			out[i] = v
		}

		return out, nil
	}

	return resolveTerm(strings.TrimSpace(expression), scope)
}

func resolveTerm(term string, scope Scope) (any, error) {
	path, op, operand, hasOp := splitArithmetic(term)

	v, err := resolvePath(path, scope)
	if err != nil {
		return nil, err
	}

	if !hasOp {
		return v, nil
	}

	base, err := asNumber(path, v)
	if err != nil {
		return nil, err
	}

	result := applyOp(base, op, float64(operand))
	if base == float64(int64(base)) {
		return int64(result), nil
	}

	return result, nil
}

func applyOp(a float64, op byte, b float64) float64 {
	switch op {
	case '+':
		return a + b
	case '-':
		return a - b
	case '*':
		return a * b
	case '/':
		return a / b
	default:
		return a
	}
}

func asNumber(path string, v any) (float64, error) {
	switch n := v.(type) {
	case int:
		return float64(n), nil
	case int8:
		return float64(n), nil
	case int16:
		return float64(n), nil
	case int32:
		return float64(n), nil
	case int64:
		return float64(n), nil
	case uint8:
		return float64(n), nil
	case uint16:
		return float64(n), nil
	case uint32:
		return float64(n), nil
	case uint64:
		return float64(n), nil
	case float32:
		return float64(n), nil
	case float64:
		return n, nil
	default:
		return 0, errs.NewReferenceError(path)
	}
}

// splitArithmetic splits "path + k" into ("path", '+', k, true), or
// returns (term, 0, 0, false) when term carries no arithmetic suffix.
func splitArithmetic(term string) (path string, op byte, operand int64, hasOp bool) {
	for _, candidate := range []byte{'+', '-', '*', '/'} {
		if idx := strings.IndexByte(term, candidate); idx > 0 {
			left := strings.TrimSpace(term[:idx])
			right := strings.TrimSpace(term[idx+1:])

			n, err := strconv.ParseInt(right, 10, 64)
			if err != nil {
				continue
			}

			return left, candidate, n, true
		}
	}

	return term, 0, 0, false
}

// splitTopLevel splits s on sep, ignoring none of Go's syntax (the
// grammar has no nested brackets), so a plain strings.Split suffices.
func splitTopLevel(s string, sep byte) []string {
	return strings.Split(s, string(sep))
}

// resolvePath traverses a dotted path against scope.Instance, or against
// scope.Ctx when the path begins with "_ctx.".
func resolvePath(path string, scope Scope) (any, error) {
	if strings.HasPrefix(path, ctxPrefix) {
		key := strings.TrimPrefix(path, ctxPrefix)
		if scope.Ctx == nil {
			return nil, errs.NewReferenceError(path)
		}

		v, ok := scope.Ctx.Get(key)
		if !ok {
			return nil, errs.NewReferenceError(path)
		}

		return v, nil
	}

	segs := strings.Split(path, ".")
	var node any = scope.Instance

	for _, seg := range segs {
		m, ok := node.(map[string]any)
		if !ok {
			return nil, errs.NewReferenceError(path)
		}

		v, exists := m[seg]
		if !exists {
			return nil, errs.NewReferenceError(path)
		}

		node = v
	}

	return node, nil
}
