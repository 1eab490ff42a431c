package chatapi

import (
	"encoding/json"
	"strings"
)

const (
	// FinalAnswerMarker separates the reasoning trace from the answer.
	FinalAnswerMarker = "\nFinal Answer: "
	// NotFoundText is returned when a reply carries no marker.
	NotFoundText = "未找到Final Answer"
	// ExtractErrorPrefix starts the diagnostic for a reply missing expected fields.
	ExtractErrorPrefix = "提取错误: "
)

// Extract returns the trimmed text after the first FinalAnswerMarker, or NotFoundText.
func Extract(text string) string {
	idx := strings.Index(text, FinalAnswerMarker)
	if idx < 0 {
		return NotFoundText
	}
	return strings.TrimSpace(text[idx+len(FinalAnswerMarker):])
}

type structuredEnvelope struct {
	Choices *[]struct {
		Message *struct {
			Content *string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

// ExtractResponse pulls choices[0].message.content out of a structured reply and applies Extract.
// Any structural problem is reported as a diagnostic string.
func ExtractResponse(body []byte) string {
	var env structuredEnvelope
	if err := json.Unmarshal(body, &env); err != nil {
		return ExtractErrorPrefix + err.Error()
	}
	switch {
	case env.Choices == nil:
		return ExtractErrorPrefix + "missing choices"
	case len(*env.Choices) == 0:
		return ExtractErrorPrefix + "choices is empty"
	}
	first := (*env.Choices)[0]
	if first.Message == nil {
		return ExtractErrorPrefix + "missing message"
	}
	if first.Message.Content == nil {
		return ExtractErrorPrefix + "missing content"
	}
	return Extract(*first.Message.Content)
}
