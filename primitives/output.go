package primitives

import (
	"context"
	"encoding/json"
	"regexp"
	"strings"

	"github.com/botanarede/beddel-alpha/registry"
	"github.com/botanarede/beddel-alpha/vars"
	"github.com/botanarede/beddel-alpha/workflow"
)

func init() {
	registry.RegisterHandler("output-generator", OutputHandler)
}

var fencedJSONPattern = regexp.MustCompile("(?s)```(?:json)?\\s*\\n?(.*?)\\n?```")

// OutputHandler implements the output-generator primitive (spec §4.7): a
// dependency-free step that parses a model's raw text into structured JSON
// and/or projects it through a return template, without invoking a model.
func OutputHandler(ctx context.Context, config map[string]any) (any, error) {
	execCtx, _ := workflow.FromContext(ctx)
	resolveCtx := vars.Context{}
	if execCtx != nil {
		resolveCtx = vars.Context{Input: execCtx.Input, Variables: execCtx.Variables()}
	}

	rawJSON, hasJSON := config["json"]
	rawTemplate, hasTemplate := config["template"]

	var parsed map[string]any
	if hasJSON {
		resolved := vars.Resolve(rawJSON, resolveCtx)
		parsed = parseJSONValue(resolved)
		if execCtx != nil {
			execCtx.SetVariable("json", parsed)
		}
		resolveCtx.Variables = mergeVar(resolveCtx.Variables, "json", parsed)
	}

	if hasTemplate {
		resolved := vars.Resolve(rawTemplate, resolveCtx)
		if m, ok := resolved.(map[string]any); ok {
			return workflow.Record(m), nil
		}
		return workflow.Record{"value": resolved}, nil
	}

	if hasJSON {
		return workflow.Record(parsed), nil
	}

	return workflow.Record{}, nil
}

// mergeVar returns a copy of variables with key set to value, so the
// template resolution below sees the just-parsed $json.* value without
// mutating the caller's snapshot.
func mergeVar(variables map[string]any, key string, value any) map[string]any {
	out := make(map[string]any, len(variables)+1)
	for k, v := range variables {
		out[k] = v
	}
	out[key] = value
	return out
}

// parseJSONValue implements §4.7's json branch: a mapping passes through
// unchanged, a string is scanned for embedded JSON (fenced code block first,
// else the first balanced object/array), and a parse failure yields an empty
// mapping rather than propagating an error.
func parseJSONValue(resolved any) map[string]any {
	if m, ok := resolved.(map[string]any); ok {
		return m
	}
	text, ok := resolved.(string)
	if !ok {
		return map[string]any{}
	}

	if match := fencedJSONPattern.FindStringSubmatch(text); match != nil {
		text = match[1]
	} else if span := firstBalancedJSON(text); span != "" {
		text = span
	}

	var out map[string]any
	if err := json.Unmarshal([]byte(text), &out); err != nil {
		return map[string]any{}
	}
	return out
}

// firstBalancedJSON scans s for the first balanced {...} or [...] span,
// respecting string literals so braces inside quoted text do not unbalance
// the scan. Returns "" if no balanced span is found.
func firstBalancedJSON(s string) string {
	start := strings.IndexAny(s, "{[")
	if start < 0 {
		return ""
	}
	open, close := s[start], byte(0)
	if open == '{' {
		close = '}'
	} else {
		close = ']'
	}

	depth := 0
	inString := false
	escaped := false
	for i := start; i < len(s); i++ {
		c := s[i]
		if inString {
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inString = false
			}
			continue
		}
		switch c {
		case '"':
			inString = true
		case open:
			depth++
		case close:
			depth--
			if depth == 0 {
				return s[start : i+1]
			}
		}
	}
	return ""
}
