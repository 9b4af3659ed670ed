// ABOUTME: Parses and validates the extraction model's JSON output into observations
// ABOUTME: Tolerates code fences, string booleans and string scores
package interpreter

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"math"
	"strconv"
	"strings"

	"github.com/harper/confidant/internal/models"
	"github.com/santhosh-tekuri/jsonschema/v5"
)

const observationSchemaURL = "observation.json"

const observationSchema = `{
  "type": "object",
  "required": ["observation"],
  "properties": {
    "observation": {"type": "string"},
    "interpretation": {"type": ["string", "null"]},
    "category": {"type": ["string", "null"]},
    "relevance_score": {"type": ["number", "string", "null"]},
    "follow_up_question": {"type": ["string", "null"]},
    "people_mentioned": {
      "type": ["array", "string", "null"],
      "items": {"type": "string"}
    },
    "is_identity_statement": {"type": ["boolean", "string", "null"]},
    "is_breakthrough_moment": {"type": ["boolean", "string", "null"]}
  }
}`

var observationValidator = jsonschema.MustCompileString(observationSchemaURL, observationSchema)

// ParseObservations decodes extraction output. The top level must be a JSON
// array; items failing validation are dropped individually.
func ParseObservations(content string) ([]models.Observation, error) {
	content = stripFences(content)

	var items []interface{}
	if err := json.Unmarshal([]byte(content), &items); err != nil {
		return nil, fmt.Errorf("extraction output is not a JSON array: %w", err)
	}

	observations := make([]models.Observation, 0, len(items))
	for i, item := range items {
		if err := observationValidator.Validate(item); err != nil {
			slog.Warn("dropping invalid extracted memory", "index", i, "error", err)
			continue
		}
		observations = append(observations, toObservation(item.(map[string]interface{})))
	}
	return observations, nil
}

// stripFences removes a surrounding ``` or ```json block
func stripFences(content string) string {
	content = strings.TrimSpace(content)
	if !strings.HasPrefix(content, "```") {
		return content
	}
	content = strings.TrimPrefix(content, "```")
	content = strings.TrimPrefix(content, "json")
	if end := strings.Index(content, "```"); end >= 0 {
		content = content[:end]
	}
	return strings.TrimSpace(content)
}

func toObservation(raw map[string]interface{}) models.Observation {
	obs := models.Observation{
		Observation:          stringField(raw, "observation"),
		Interpretation:       stringField(raw, "interpretation"),
		Category:             stringField(raw, "category"),
		FollowUpQuestion:     stringField(raw, "follow_up_question"),
		RelevanceScore:       scoreField(raw["relevance_score"]),
		IsIdentityStatement:  looseBool(raw["is_identity_statement"]),
		IsBreakthroughMoment: looseBool(raw["is_breakthrough_moment"]),
	}

	switch people := raw["people_mentioned"].(type) {
	case []interface{}:
		for _, p := range people {
			if s, ok := p.(string); ok {
				obs.PeopleMentioned = append(obs.PeopleMentioned, s)
			}
		}
	case string:
		obs.PeopleMentioned = models.ParsePeople(people)
	}
	obs.PeopleMentioned = models.NormalizePeople(obs.PeopleMentioned)

	return obs
}

func stringField(raw map[string]interface{}, key string) string {
	s, _ := raw[key].(string)
	return strings.TrimSpace(s)
}

func scoreField(v interface{}) int {
	switch n := v.(type) {
	case float64:
		return int(math.Round(n))
	case string:
		if f, err := strconv.ParseFloat(strings.TrimSpace(n), 64); err == nil {
			return int(math.Round(f))
		}
	}
	return 0
}

func looseBool(v interface{}) bool {
	switch b := v.(type) {
	case bool:
		return b
	case string:
		return strings.EqualFold(strings.TrimSpace(b), "true")
	}
	return false
}
