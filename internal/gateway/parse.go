package gateway

import (
	"encoding/json"
	"strings"

	"github.com/rotisserie/eris"

	"github.com/youcodecowboy/disco-grid-sub000/pkg/llm"
)

// rawEntity is one element of the model's "entities" array before
// normalization. Confidence stays loose because models emit it as a number
// or a string.
type rawEntity struct {
	Type       string `json:"type"`
	Value      any    `json:"value"`
	Confidence any    `json:"confidence"`
	RawText    string `json:"rawText"`
}

type entityEnvelope struct {
	Entities []rawEntity `json:"entities"`
}

// payloads returns the candidate JSON texts of a completion, content first.
// Some reasoning models leave content empty and put the answer in the
// reasoning field.
func payloads(resp *llm.Response) []string {
	var out []string
	if s := strings.TrimSpace(resp.Content); s != "" {
		out = append(out, s)
	}
	if s := strings.TrimSpace(resp.Reasoning); s != "" {
		out = append(out, s)
	}
	return out
}

// decodeInto checks the completion for truncation and emptiness, then
// decodes the first candidate payload that parses into v.
func decodeInto(resp *llm.Response, modelName string, v any) error {
	if resp.FinishReason == llm.FinishLength {
		return &Error{
			Kind:  KindTruncated,
			Model: modelName,
			Err:   eris.Errorf("finish_reason %q after %d output tokens", resp.FinishReason, resp.Usage.OutputTokens),
		}
	}

	candidates := payloads(resp)
	if len(candidates) == 0 {
		return &Error{Kind: KindEmptyContent, Model: modelName, Err: eris.New("completion has no content or reasoning")}
	}

	var firstErr error
	for _, c := range candidates {
		err := json.Unmarshal([]byte(cleanJSON(c)), v)
		if err == nil {
			return nil
		}
		if firstErr == nil {
			firstErr = err
		}
	}
	return &Error{Kind: KindParse, Model: modelName, Err: eris.Wrap(firstErr, "decode completion JSON")}
}

func decodeEntities(resp *llm.Response, modelName string) ([]rawEntity, error) {
	var env entityEnvelope
	if err := decodeInto(resp, modelName, &env); err != nil {
		return nil, err
	}
	return env.Entities, nil
}

// cleanJSON strips a Markdown code fence and any prose around the outermost
// JSON object.
func cleanJSON(text string) string {
	text = strings.TrimSpace(text)

	if strings.HasPrefix(text, "```") {
		text = strings.TrimPrefix(text, "```")
		if nl := strings.IndexByte(text, '\n'); nl >= 0 && !strings.ContainsAny(text[:nl], "{[") {
			text = text[nl+1:]
		}
		if idx := strings.LastIndex(text, "```"); idx >= 0 {
			text = text[:idx]
		}
	} else if idx := strings.Index(text, "```json"); idx >= 0 {
		text = text[idx+len("```json"):]
		if end := strings.Index(text, "```"); end >= 0 {
			text = text[:end]
		}
	}

	start := strings.Index(text, "{")
	end := strings.LastIndex(text, "}")
	if start >= 0 && end > start {
		text = text[start : end+1]
	}
	return strings.TrimSpace(text)
}
