package event

import (
	"bytes"
	"encoding/json"
	"strings"

	"github.com/pkg/errors"

	"github.com/hrygo/agenda/plugin/ai/ptime"
)

// requiredFields must all be present in the model's JSON object.
var requiredFields = []string{"title", "start", "end", "timezone", "location", "notes"}

// decodeBaseline parses the raw model reply into a baseline event.
func decodeBaseline(raw string) (ptime.Event, error) {
	fields, err := decodeObject(raw)
	if err != nil {
		return ptime.Event{}, err
	}

	for _, k := range requiredFields {
		if _, ok := fields[k]; !ok {
			return ptime.Event{}, errors.Wrapf(ErrIncompleteBaseline, "missing %q", k)
		}
	}

	return ptime.Event{
		Title:    coerceString(fields["title"]),
		Start:    coerceString(fields["start"]),
		End:      coerceString(fields["end"]),
		Timezone: coerceString(fields["timezone"]),
		Location: coerceString(fields["location"]),
		Notes:    coerceString(fields["notes"]),
	}, nil
}

// decodeObject decodes the reply as a JSON object, stripping markdown code
// fences, and falls back to the span from the first '{' to the last '}'.
func decodeObject(raw string) (map[string]json.RawMessage, error) {
	body := stripCodeFence(raw)

	var fields map[string]json.RawMessage
	if err := json.Unmarshal([]byte(body), &fields); err == nil && fields != nil {
		return fields, nil
	}

	start := strings.IndexByte(raw, '{')
	end := strings.LastIndexByte(raw, '}')
	if start < 0 || end < start {
		return nil, errors.Wrap(ErrInvalidLLMResponse, "no JSON object in reply")
	}
	if err := json.Unmarshal([]byte(raw[start:end+1]), &fields); err != nil || fields == nil {
		return nil, errors.Wrapf(ErrInvalidLLMResponse, "decode JSON object: %v", err)
	}
	return fields, nil
}

func stripCodeFence(s string) string {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```JSON")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(s, "```")
	return strings.TrimSpace(s)
}

// coerceString turns a JSON value into a string field: strings verbatim,
// null as "", anything else as its JSON text.
func coerceString(v json.RawMessage) string {
	v = bytes.TrimSpace(v)
	if len(v) == 0 || bytes.Equal(v, []byte("null")) {
		return ""
	}
	var s string
	if err := json.Unmarshal(v, &s); err == nil {
		return s
	}
	return string(v)
}
