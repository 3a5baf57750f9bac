package remote

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"budgetgrader/internal/domain"
	"budgetgrader/internal/llm"
)

const rawExcerptLen = 500

// MalformedResponseError reports a remote reply that could not be decoded
// into the expected shape. It matches domain.ErrExternalService.
type MalformedResponseError struct {
	Stage string
	Raw   string
	Err   error
}

func (e *MalformedResponseError) Error() string {
	return fmt.Sprintf("remote %s: malformed response: %v (raw: %s)", e.Stage, e.Err, llm.Truncate(e.Raw, rawExcerptLen))
}

func (e *MalformedResponseError) Unwrap() []error {
	return []error{domain.ErrExternalService, e.Err}
}

// stripCodeFences removes a surrounding markdown code fence, with or without
// a language tag.
func stripCodeFences(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```")
	if nl := strings.IndexByte(s, '\n'); nl >= 0 && !strings.ContainsAny(s[:nl], "{[") {
		s = s[nl+1:]
	}
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}

// decodeObject strips fences, checks the reply is a JSON object carrying every
// required key, then decodes it into dst.
func decodeObject(stage, raw string, dst any, required ...string) error {
	body := stripCodeFences(raw)

	var keys map[string]json.RawMessage
	if err := json.Unmarshal([]byte(body), &keys); err != nil {
		return &MalformedResponseError{Stage: stage, Raw: raw, Err: err}
	}
	if keys == nil {
		return &MalformedResponseError{Stage: stage, Raw: raw, Err: errors.New("not a JSON object")}
	}
	var missing []string
	for _, k := range required {
		if _, ok := keys[k]; !ok {
			missing = append(missing, k)
		}
	}
	if len(missing) > 0 {
		return &MalformedResponseError{
			Stage: stage,
			Raw:   raw,
			Err:   fmt.Errorf("missing keys: %s", strings.Join(missing, ", ")),
		}
	}

	if err := json.Unmarshal([]byte(body), dst); err != nil {
		return &MalformedResponseError{Stage: stage, Raw: raw, Err: err}
	}
	return nil
}

// serviceError wraps a provider failure so callers can match domain.ErrExternalService
// while still reaching the provider's own error (for example llm.RateLimitError).
func serviceError(stage string, err error) error {
	var malformed *MalformedResponseError
	if errors.As(err, &malformed) {
		return err
	}
	return fmt.Errorf("%w: %s: %w", domain.ErrExternalService, stage, err)
}
