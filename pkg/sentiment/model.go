package sentiment

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/invopop/jsonschema"
	"github.com/openai/openai-go"
	"github.com/openai/openai-go/responses"
)

const modelInstructions = `You rate the sentiment of a single message written by a student to a tutor.
Return JSON with one field, "polarity": a number from -1 (very negative) through 0 (neutral) to 1 (very positive).
Judge only the emotional tone of the message, not its topic.`

type polarityResponse struct {
	Polarity float64 `json:"polarity" jsonschema:"description=Sentiment polarity from -1 (very negative) to 1 (very positive)"`
}

var polaritySchema = generateSchema[polarityResponse]()

// ModelScorer asks an LLM for a polarity using JSON-schema structured output.
type ModelScorer struct {
	client *openai.Client
	model  string
}

// NewModelScorer creates a scorer that calls model through client.
func NewModelScorer(client *openai.Client, model string) *ModelScorer {
	return &ModelScorer{client: client, model: model}
}

func (s *ModelScorer) Score(ctx context.Context, text string) (float64, error) {
	if strings.TrimSpace(text) == "" {
		return 0, nil
	}
	if s.client == nil {
		return 0, errors.New("sentiment: model scorer client is nil")
	}
	if s.model == "" {
		return 0, errors.New("sentiment: model scorer model is empty")
	}

	params := responses.ResponseNewParams{
		Model:        s.model,
		Instructions: openai.String(modelInstructions),
		Input: responses.ResponseNewParamsInputUnion{
			OfInputItemList: []responses.ResponseInputItemUnionParam{
				responses.ResponseInputItemParamOfMessage(text, responses.EasyInputMessageRoleUser),
			},
		},
		Text: responses.ResponseTextConfigParam{
			Format: responses.ResponseFormatTextConfigUnionParam{
				OfJSONSchema: &responses.ResponseFormatTextJSONSchemaConfigParam{
					Name:        "Sentiment",
					Schema:      polaritySchema,
					Strict:      openai.Bool(true),
					Description: openai.String("Sentiment polarity JSON"),
					Type:        "json_schema",
				},
			},
		},
	}

	resp, err := s.client.Responses.New(ctx, params)
	if err != nil {
		return 0, fmt.Errorf("sentiment model call failed: %w", err)
	}

	var out polarityResponse
	if err := decodeModelJSON(resp.OutputText(), &out); err != nil {
		return 0, fmt.Errorf("sentiment model returned invalid JSON: %w", err)
	}
	return Clamp(out.Polarity), nil
}

// decodeModelJSON unmarshals JSON from a model response, tolerating
// surrounding whitespace or prose around a single JSON object.
func decodeModelJSON(outputText string, v any) error {
	s := strings.TrimSpace(outputText)
	if s == "" {
		return io.ErrUnexpectedEOF
	}
	if err := json.Unmarshal([]byte(s), v); err == nil {
		return nil
	}

	start := strings.IndexByte(s, '{')
	end := strings.LastIndexByte(s, '}')
	if start == -1 || end == -1 || end <= start {
		return fmt.Errorf("no JSON object found in model output (len=%d)", len(s))
	}
	sub := s[start : end+1]
	if err := json.Unmarshal([]byte(sub), v); err != nil {
		return fmt.Errorf("failed to unmarshal extracted JSON (len=%d): %w", len(sub), err)
	}
	return nil
}

func generateSchema[T any]() map[string]interface{} {
	reflector := jsonschema.Reflector{
		AllowAdditionalProperties:  false,
		DoNotReference:             true,
		RequiredFromJSONSchemaTags: true,
	}
	var v T
	b, err := reflector.Reflect(v).MarshalJSON()
	if err != nil {
		panic(err)
	}
	var schema map[string]interface{}
	if err := json.Unmarshal(b, &schema); err != nil {
		panic(err)
	}
	ensureStrictObject(schema)
	return schema
}

// ensureStrictObject marks every object closed and every property required,
// as strict structured output demands.
func ensureStrictObject(schema map[string]interface{}) {
	if t, ok := schema["type"].(string); ok && t == "object" {
		schema["additionalProperties"] = false
		if props, ok := schema["properties"].(map[string]interface{}); ok {
			required := make([]string, 0, len(props))
			for name := range props {
				required = append(required, name)
			}
			if len(required) > 0 {
				schema["required"] = required
			}
		}
	}
	if props, ok := schema["properties"].(map[string]interface{}); ok {
		for _, prop := range props {
			if m, ok := prop.(map[string]interface{}); ok {
				ensureStrictObject(m)
			}
		}
	}
	if items, ok := schema["items"].(map[string]interface{}); ok {
		ensureStrictObject(items)
	}
}
