// Package keywords expands a natural-language product query into search
// keywords using the Gemini API.
package keywords

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"google.golang.org/genai"
)

type Expander interface {
	// Expand turns a free-text query into a list of keyword tokens.
	Expand(ctx context.Context, query string) ([]string, error)
}

const promptTemplate = `Given the query: %q, generate keywords or product attributes to search for products across various categories.`

type GeminiExpander struct {
	client *genai.Client
	model  string
}

func NewGeminiExpander(ctx context.Context, apiKey, model string) (*GeminiExpander, error) {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey: apiKey,
	})
	if err != nil {
		return nil, fmt.Errorf("create genai client: %w", err)
	}
	return &GeminiExpander{client: client, model: model}, nil
}

// Expand asks the model for a JSON array of strings. The response schema is
// part of the request, so anything that does not decode as []string is an
// error rather than a guess.
func (e *GeminiExpander) Expand(ctx context.Context, query string) ([]string, error) {
	prompt := fmt.Sprintf(promptTemplate, query)

	resp, err := e.client.Models.GenerateContent(ctx,
		e.model,
		genai.Text(prompt),
		&genai.GenerateContentConfig{
			ResponseMIMEType: "application/json",
			ResponseSchema: &genai.Schema{
				Type:  genai.TypeArray,
				Items: &genai.Schema{Type: genai.TypeString},
			},
		},
	)
	if err != nil {
		return nil, fmt.Errorf("generate keywords: %w", err)
	}

	var raw []string
	if err := json.Unmarshal([]byte(resp.Text()), &raw); err != nil {
		return nil, fmt.Errorf("decode keyword response: %w", err)
	}

	keywords := make([]string, 0, len(raw))
	for _, kw := range raw {
		if kw = strings.TrimSpace(kw); kw != "" {
			keywords = append(keywords, kw)
		}
	}
	if len(keywords) == 0 {
		return nil, fmt.Errorf("model returned no keywords")
	}
	return keywords, nil
}
