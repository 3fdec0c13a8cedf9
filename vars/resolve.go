// Package vars implements the variable resolution language shared by every
// step handler and by the manifest's return template (spec §4.2): whole-value
// substitution for bare `$path` references and in-string interpolation for
// `$path` occurrences embedded in larger text.
package vars

import (
	"fmt"
	"os"
	"regexp"
	"strconv"
	"strings"
)

// Context is the minimal surface the resolver needs from a workflow
// execution: the request input and the variables accumulated from prior
// step results. It is a narrow read-only view, not workflow.Context itself,
// so this package has no dependency on workflow.
type Context struct {
	Input     any
	Variables map[string]any
}

// refPattern matches a `$` reference: an identifier followed by zero or more
// dot-separated segments, each an identifier or a numeric array index. It is
// used both to recognize a whole-value reference and to find embedded
// occurrences during interpolation.
var refPattern = regexp.MustCompile(`\$([A-Za-z_][A-Za-z0-9_]*(?:\.[A-Za-z0-9_]+)*)`)

// undefinedType is the sentinel returned for a reference whose path does not
// resolve, per §4.2's "Undefined paths resolve to undefined in whole-value
// mode" edge case.
type undefinedType struct{}

// Undefined is returned by Resolve when a whole-value reference's path does
// not resolve to anything.
var Undefined any = undefinedType{}

// IsUndefined reports whether v is the Undefined sentinel.
func IsUndefined(v any) bool {
	_, ok := v.(undefinedType)
	return ok
}

// Resolve evaluates template against ctx, recursing through arrays and maps
// element-wise. Strings are resolved per §4.2: a bare `$path` with no
// whitespace is whole-value substituted (typed, not stringified); otherwise
// any embedded `$path` occurrences are interpolated as their string form,
// leaving unresolved references verbatim. Non-string, non-container values
// are returned unchanged.
func Resolve(template any, ctx Context) any {
	switch t := template.(type) {
	case string:
		return resolveString(t, ctx)
	case []any:
		out := make([]any, len(t))
		for i, v := range t {
			out[i] = Resolve(v, ctx)
		}
		return out
	case map[string]any:
		out := make(map[string]any, len(t))
		for k, v := range t {
			out[k] = Resolve(v, ctx)
		}
		return out
	default:
		return template
	}
}

func resolveString(s string, ctx Context) any {
	if strings.HasPrefix(s, "$$") {
		return s[1:]
	}
	if isWholeValueRef(s) {
		path := strings.TrimPrefix(s, "$")
		v, ok := lookup(path, ctx)
		if !ok {
			return Undefined
		}
		return v
	}
	if !strings.Contains(s, "$") {
		return s
	}
	return refPattern.ReplaceAllStringFunc(s, func(match string) string {
		path := strings.TrimPrefix(match, "$")
		v, ok := lookup(path, ctx)
		if !ok {
			return match
		}
		return stringify(v)
	})
}

// isWholeValueRef reports whether s is a bare `$path` reference: starts with
// `$`, contains no whitespace/newline, and the remainder is a full reference
// match (nothing left over, so "$foo bar" or "$foo!" do not qualify).
func isWholeValueRef(s string) bool {
	if !strings.HasPrefix(s, "$") || strings.ContainsAny(s, " \t\n\r") {
		return false
	}
	loc := refPattern.FindStringIndex(s)
	return loc != nil && loc[0] == 0 && loc[1] == len(s)
}

// lookup resolves a dotted reference path against one of the four prefixes
// defined in §4.2: env., input., stepResult.<var>., or a bare <var>. as a
// legacy alias for stepResult.<var>.
func lookup(path string, ctx Context) (any, bool) {
	segs := strings.Split(path, ".")
	if len(segs) == 0 {
		return nil, false
	}
	switch segs[0] {
	case "env":
		if len(segs) < 2 {
			return nil, false
		}
		v, ok := os.LookupEnv(segs[1])
		if !ok {
			return nil, false
		}
		return v, true
	case "input":
		return walk(ctx.Input, segs[1:])
	case "stepResult":
		if len(segs) < 2 {
			return nil, false
		}
		root, ok := ctx.Variables[segs[1]]
		if !ok {
			return nil, false
		}
		return walk(root, segs[2:])
	default:
		root, ok := ctx.Variables[segs[0]]
		if !ok {
			return nil, false
		}
		return walk(root, segs[1:])
	}
}

// walk descends into node following the dotted path segments. A path through
// a non-object/non-array node resolves to undefined, matching §4.2's "Paths
// through non-object nodes resolve to undefined" edge case.
func walk(node any, segs []string) (any, bool) {
	cur := node
	for _, seg := range segs {
		switch v := cur.(type) {
		case map[string]any:
			next, ok := v[seg]
			if !ok {
				return nil, false
			}
			cur = next
		case []any:
			idx, err := strconv.Atoi(seg)
			if err != nil || idx < 0 || idx >= len(v) {
				return nil, false
			}
			cur = v[idx]
		default:
			return nil, false
		}
	}
	return cur, true
}

func stringify(v any) string {
	switch t := v.(type) {
	case string:
		return t
	case fmt.Stringer:
		return t.String()
	default:
		return fmt.Sprintf("%v", t)
	}
}
