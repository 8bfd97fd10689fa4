package intake

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/mitchellh/mapstructure"
)

// Tags the model is instructed to delimit its reply with.
const (
	convOpenTag  = "<conversation_response>"
	convCloseTag = "</conversation_response>"
	dataOpenTag  = "<updated_data>"
	dataCloseTag = "</updated_data>"
)

// parseReply splits a raw completion into the conversational reply and the
// echoed record. The reply falls back to the whole raw text when the
// conversational region is missing. The record is nil when the structured
// region is absent or does not decode; the returned error then describes the
// failure for logging and must not abort the turn.
func parseReply(raw string) (string, *Record, error) {
	reply, ok := extractTagged(raw, convOpenTag, convCloseTag)
	if !ok {
		reply = strings.TrimSpace(raw)
	}

	inner, ok := extractTagged(raw, dataOpenTag, dataCloseTag)
	if !ok {
		return reply, nil, fmt.Errorf("completion has no %s region", dataOpenTag)
	}

	cleaned := stripFences(inner)

	var tree map[string]any
	if err := json.Unmarshal([]byte(cleaned), &tree); err != nil {
		return reply, nil, fmt.Errorf("decode updated data: %w", err)
	}

	record := NewRecord()
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result: record,
		// The model occasionally emits numbers where strings belong.
		WeaklyTypedInput: true,
	})
	if err != nil {
		return reply, nil, fmt.Errorf("build record decoder: %w", err)
	}

	if err := decoder.Decode(tree); err != nil {
		return reply, nil, fmt.Errorf("decode updated data into record: %w", err)
	}

	return reply, record, nil
}

// extractTagged returns the trimmed text between the first open/close tag pair.
func extractTagged(raw, open, closing string) (string, bool) {
	start := strings.Index(raw, open)
	if start == -1 {
		return "", false
	}
	start += len(open)

	end := strings.Index(raw[start:], closing)
	if end == -1 {
		return "", false
	}

	return strings.TrimSpace(raw[start : start+end]), true
}

// stripFences removes an optional markdown code fence around a JSON payload,
// tolerating malformed fences and stray backticks.
func stripFences(raw string) string {
	raw = strings.TrimSpace(raw)
	if strings.HasPrefix(raw, "```") {
		raw = strings.TrimPrefix(raw, "```json")
		raw = strings.TrimPrefix(raw, "```")
		raw = strings.TrimSpace(raw)
		if idx := strings.LastIndex(raw, "```"); idx != -1 {
			raw = raw[:idx]
		}
	}
	raw = strings.Trim(raw, "`")
	return strings.TrimSpace(raw)
}
