package processing

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"strings"

	"github.com/drewmudry/vibecast-api/fal"
	"github.com/drewmudry/vibecast-api/internal/config"
	"github.com/invopop/jsonschema"
	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
)

// NarrationResponse is the structured output requested from the LLM.
type NarrationResponse struct {
	Narration string `json:"narration" jsonschema_description:"The recap text, written to be read out loud"`
}

// GenerateSchema generates a JSON schema for structured outputs
func GenerateSchema[T any]() interface{} {
	// Structured Outputs uses a subset of JSON schema
	reflector := &jsonschema.Reflector{
		AllowAdditionalProperties: false,
		DoNotReference:            true,
	}
	var v T
	schema := reflector.Reflect(v)
	return schema
}

var narrationResponseSchema = GenerateSchema[NarrationResponse]()

// NarrationPrompt builds the instructions for turning a transcript into a
// short read-aloud recap.
func NarrationPrompt(transcript string, targetSeconds int) string {
	return fmt.Sprintf(`You are turning a corporate meeting transcript into a short spoken recap.

1. Summarize what the transcript is about.
2. Identify the key points and the questions the audience is likely to ask.
3. Write a brief, entertaining recap meant to be read out loud. It must take no more than %d seconds to say.

Return only the recap text, with no headings, lists or stage directions.

Transcript:
%s`, targetSeconds, transcript)
}

// OpenAINarrator generates narration with an OpenAI chat model.
type OpenAINarrator struct {
	client        openai.Client
	model         string
	targetSeconds int
}

func NewOpenAINarrator(cfg config.OpenAIConfig, targetSeconds int, httpClient *http.Client) *OpenAINarrator {
	opts := []option.RequestOption{
		option.WithAPIKey(cfg.APIKey),
		option.WithMaxRetries(0),
	}
	if cfg.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(cfg.BaseURL))
	}
	if httpClient != nil {
		opts = append(opts, option.WithHTTPClient(httpClient))
	}

	return &OpenAINarrator{
		client:        openai.NewClient(opts...),
		model:         cfg.Model,
		targetSeconds: targetSeconds,
	}
}

func (n *OpenAINarrator) Narrate(ctx context.Context, transcript string) (string, error) {
	resp, err := getStructuredResponse[NarrationResponse](
		ctx, n.client, n.model,
		NarrationPrompt(transcript, n.targetSeconds),
		"narration", "A read-aloud recap of a transcript",
		narrationResponseSchema,
	)
	if err != nil {
		return "", err
	}

	narration := strings.TrimSpace(resp.Narration)
	if narration == "" {
		return "", fmt.Errorf("OpenAI returned empty narration")
	}
	return narration, nil
}

// getStructuredResponse is a helper function to call the OpenAI API with JSON schema enforcement
func getStructuredResponse[T any](ctx context.Context, client openai.Client, model, prompt, name, description string, schema interface{}) (*T, error) {
	schemaParam := openai.ResponseFormatJSONSchemaJSONSchemaParam{
		Name:        name,
		Description: openai.String(description),
		Schema:      schema,
		Strict:      openai.Bool(true),
	}

	chatCompletion, err := client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.UserMessage(prompt),
		},
		Model: openai.ChatModel(model),
		ResponseFormat: openai.ChatCompletionNewParamsResponseFormatUnion{
			OfJSONSchema: &openai.ResponseFormatJSONSchemaParam{
				JSONSchema: schemaParam,
			},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("OpenAI API error: %w", err)
	}

	if len(chatCompletion.Choices) == 0 {
		return nil, fmt.Errorf("no response from OpenAI")
	}

	rawResponse := chatCompletion.Choices[0].Message.Content
	if rawResponse == "" {
		return nil, fmt.Errorf("OpenAI returned empty response. Finish reason: %s", chatCompletion.Choices[0].FinishReason)
	}

	var structuredResponse T
	if err := json.Unmarshal([]byte(rawResponse), &structuredResponse); err != nil {
		return nil, fmt.Errorf("failed to parse OpenAI JSON response: %w", err)
	}

	return &structuredResponse, nil
}

// FalNarrator generates narration through fal's any-llm endpoint.
type FalNarrator struct {
	Client        *fal.Client
	Endpoint      string
	LLM           string
	TargetSeconds int
}

func (n *FalNarrator) Narrate(ctx context.Context, transcript string) (string, error) {
	result, err := n.Client.Subscribe(ctx, n.Endpoint, map[string]any{
		"model":  n.LLM,
		"prompt": NarrationPrompt(transcript, n.TargetSeconds),
	}, fal.SubscribeOptions{})
	if err != nil {
		return "", err
	}

	data, _ := result.Data.(map[string]any)
	if msg := stringAt(data, "error"); msg != nil && *msg != "" {
		return "", fmt.Errorf("%s", *msg)
	}
	output := stringAt(data, "output")
	if output == nil || strings.TrimSpace(*output) == "" {
		return "", fmt.Errorf("%s returned no output text", n.Endpoint)
	}

	log.Printf("[narration] Generated %d characters of narration", len(*output))
	return strings.TrimSpace(*output), nil
}
