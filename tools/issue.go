package tools

import "fmt"

// FieldIssue describes a single validation failure in a tool call's
// arguments, reported at the field it was detected on rather than as a
// flattened string so the caller can decide how much detail is safe to
// surface to a model or log.
type FieldIssue struct {
	Field   string
	Message string
}

func (i FieldIssue) String() string {
	return fmt.Sprintf("%s: %s", i.Field, i.Message)
}

// ValidationError aggregates the field issues found while checking a tool
// call's arguments against a Spec's ParameterSchema.
type ValidationError struct {
	Tool   Ident
	Issues []FieldIssue
}

func (e *ValidationError) Error() string {
	if len(e.Issues) == 0 {
		return fmt.Sprintf("tools: %s: invalid arguments", e.Tool)
	}
	msg := fmt.Sprintf("tools: %s: invalid arguments: %s", e.Tool, e.Issues[0])
	for _, issue := range e.Issues[1:] {
		msg += "; " + issue.String()
	}
	return msg
}
