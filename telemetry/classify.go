package telemetry

import "strings"

// classifyTerms maps each ErrorType to the case-insensitive substrings that
// select it. Order matters: the first matching type wins, so more specific
// terms (auth, validation, network) are checked before falling through to
// unknown. timeout is checked first since "timeout" can itself appear in
// messages that also mention network failure.
var classifyTerms = []struct {
	typ   ErrorType
	terms []string
}{
	{ErrorTypeTimeout, []string{"timeout"}},
	{ErrorTypeAuthFailed, []string{"auth", "unauthorized"}},
	{ErrorTypeValidation, []string{"valid"}},
	{ErrorTypeNetwork, []string{"network", "econnrefused"}},
}

// Classify maps a thrown error to the closed errorType vocabulary surfaced on
// trace events, by case-insensitive substring match against the error's
// message. It never returns the message itself: callers must not attach err
// to an Event beyond the classified type.
func Classify(err error) ErrorType {
	if err == nil {
		return ErrorTypeUnknown
	}
	msg := strings.ToLower(err.Error())
	for _, c := range classifyTerms {
		for _, term := range c.terms {
			if strings.Contains(msg, term) {
				return c.typ
			}
		}
	}
	return ErrorTypeUnknown
}
