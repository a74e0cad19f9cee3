package llm

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/kaptinlin/jsonrepair"
	"github.com/rs/zerolog/log"
)

// DecodeStringArray extracts a JSON string array from a raw model response.
// Models routinely wrap JSON in markdown fences or prose, and occasionally
// emit slightly broken JSON (trailing commas, single quotes); the extraction
// step strips the wrapping and the repair step fixes what it can before
// decoding.
func DecodeStringArray(raw string) ([]string, error) {
	jsonStr := extractJSON(raw)
	if jsonStr == "" {
		return nil, fmt.Errorf("no JSON found in response")
	}

	var out []string
	if err := json.Unmarshal([]byte(jsonStr), &out); err == nil {
		return out, nil
	}

	repaired, repairErr := jsonrepair.JSONRepair(jsonStr)
	if repairErr != nil {
		return nil, fmt.Errorf("JSON repair failed: %w", repairErr)
	}
	if err := json.Unmarshal([]byte(repaired), &out); err != nil {
		return nil, fmt.Errorf("JSON parsing failed after repair: %w", err)
	}

	log.Debug().
		Int("original_bytes", len(jsonStr)).
		Int("repaired_bytes", len(repaired)).
		Msg("Model JSON repaired before decoding")
	return out, nil
}

// extractJSON pulls the JSON payload out of a response that may wrap it in
// markdown code fences or explanatory text.
func extractJSON(raw string) string {
	raw = strings.TrimSpace(raw)

	if strings.HasPrefix(raw, "{") || strings.HasPrefix(raw, "[") {
		return raw
	}

	// Look for JSON blocks marked with ```json or ```
	if strings.Contains(raw, "```") {
		lines := strings.Split(raw, "\n")
		var jsonLines []string
		inCodeBlock := false

		for _, line := range lines {
			if strings.HasPrefix(strings.TrimSpace(line), "```") {
				inCodeBlock = !inCodeBlock
				continue
			}
			if inCodeBlock {
				jsonLines = append(jsonLines, line)
			}
		}

		if len(jsonLines) > 0 {
			return strings.TrimSpace(strings.Join(jsonLines, "\n"))
		}
	}

	// Look for the first bracket and find its match
	startIdx := strings.Index(raw, "[")
	openChar := byte('[')
	closeChar := byte(']')
	if startIdx == -1 {
		startIdx = strings.Index(raw, "{")
		if startIdx == -1 {
			return ""
		}
		openChar, closeChar = '{', '}'
	}

	count := 0
	for i := startIdx; i < len(raw); i++ {
		if raw[i] == openChar {
			count++
		} else if raw[i] == closeChar {
			count--
			if count == 0 {
				return raw[startIdx : i+1]
			}
		}
	}

	// Incomplete structure; hand the tail to the repair step
	return raw[startIdx:]
}
