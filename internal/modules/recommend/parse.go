package recommend

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/goccy/go-json"
)

// ProviderRecommendation is a validated provider answer. MaterialIDs is
// non-empty and in the provider's ranked order; ids are not yet resolved.
type ProviderRecommendation struct {
	Message     string
	Reasoning   string
	MaterialIDs []int64
}

// ParseFailure reports a provider answer that could not be used.
type ParseFailure struct {
	Reason string
	Raw    string
	Err    error
}

func (e *ParseFailure) Error() string {
	if e == nil {
		return "parse failure"
	}
	if e.Err != nil {
		return fmt.Sprintf("parse failure: %s: %v", e.Reason, e.Err)
	}
	return "parse failure: " + e.Reason
}

func (e *ParseFailure) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

type wireRecommendation struct {
	Message     *string            `json:"message"`
	Reasoning   *string            `json:"reasoning"`
	MaterialIDs *[]json.RawMessage `json:"materialIds"`
}

// ParseRecommendation strictly decodes a provider answer. Surrounding
// whitespace and a single markdown code fence are tolerated; nothing else is
// repaired. A non-nil error is always a *ParseFailure.
func ParseRecommendation(raw string) (ProviderRecommendation, error) {
	text := stripCodeFence(raw)
	if text == "" {
		return ProviderRecommendation{}, &ParseFailure{Reason: "empty response", Raw: raw}
	}
	if !strings.HasPrefix(text, "{") {
		return ProviderRecommendation{}, &ParseFailure{Reason: "not a json object", Raw: raw}
	}

	var w wireRecommendation
	if err := json.Unmarshal([]byte(text), &w); err != nil {
		return ProviderRecommendation{}, &ParseFailure{Reason: "invalid json", Raw: raw, Err: err}
	}
	if w.MaterialIDs == nil || *w.MaterialIDs == nil {
		return ProviderRecommendation{}, &ParseFailure{Reason: "missing materialIds", Raw: raw}
	}
	if len(*w.MaterialIDs) == 0 {
		return ProviderRecommendation{}, &ParseFailure{Reason: "empty materialIds", Raw: raw}
	}

	ids := make([]int64, 0, len(*w.MaterialIDs))
	for i, el := range *w.MaterialIDs {
		id, err := decodeID(el)
		if err != nil {
			return ProviderRecommendation{}, &ParseFailure{Reason: fmt.Sprintf("materialIds[%d] is not an integer", i), Raw: raw, Err: err}
		}
		ids = append(ids, id)
	}

	out := ProviderRecommendation{MaterialIDs: ids}
	if w.Message != nil {
		out.Message = strings.TrimSpace(*w.Message)
	}
	if w.Reasoning != nil {
		out.Reasoning = strings.TrimSpace(*w.Reasoning)
	}
	return out, nil
}

func decodeID(el json.RawMessage) (int64, error) {
	el = bytes.TrimSpace(el)
	if len(el) == 0 || el[0] == '"' || bytes.Equal(el, []byte("null")) || bytes.ContainsAny(el, ".eE") {
		return 0, fmt.Errorf("got %s", string(el))
	}
	var id int64
	if err := json.Unmarshal(el, &id); err != nil {
		return 0, err
	}
	return id, nil
}

func stripCodeFence(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	firstNL := strings.IndexByte(s, '\n')
	if firstNL == -1 {
		return strings.TrimSpace(strings.Trim(s, "`"))
	}
	s = s[firstNL+1:]
	if idx := strings.LastIndex(s, "```"); idx != -1 {
		s = s[:idx]
	}
	return strings.TrimSpace(s)
}
