package llm

import (
	"context"
	"errors"
	"fmt"

	"google.golang.org/genai"
)

const DefaultGeminiModel = "gemini-2.0-flash-exp"

// GeminiClient calls the Gemini generateContent API. A genai client is built
// per call because the API key is supplied by the learner and may change.
type GeminiClient struct {
	model   string
	baseURL string
}

func NewGemini(model, baseURL string) *GeminiClient {
	if model == "" {
		model = DefaultGeminiModel
	}
	return &GeminiClient{model: model, baseURL: baseURL}
}

func (c *GeminiClient) Generate(ctx context.Context, credential string, req Request) (Response, error) {
	cfg := &genai.ClientConfig{
		APIKey:  credential,
		Backend: genai.BackendGeminiAPI,
	}
	if c.baseURL != "" {
		cfg.HTTPOptions = genai.HTTPOptions{BaseURL: c.baseURL}
	}
	client, err := genai.NewClient(ctx, cfg)
	if err != nil {
		return Response{}, &Fault{Message: fmt.Sprintf("failed to create GenAI client: %v", err), Err: err}
	}

	resp, err := client.Models.GenerateContent(ctx, c.model, toGeminiContents(req), geminiConfig(req))
	if err != nil {
		return Response{}, geminiFault(err)
	}
	if resp == nil || len(resp.Candidates) == 0 {
		return Response{}, emptyReply("gemini")
	}
	text := resp.Text()
	if text == "" {
		return Response{}, emptyReply("gemini")
	}

	out := Response{Content: text, Model: c.model}
	if u := resp.UsageMetadata; u != nil {
		out.PromptTokens = int(u.PromptTokenCount)
		out.CompletionTokens = int(u.CandidatesTokenCount)
		out.TotalTokens = int(u.TotalTokenCount)
	}
	return out, nil
}

func geminiConfig(req Request) *genai.GenerateContentConfig {
	temp := req.Temperature
	cfg := &genai.GenerateContentConfig{
		Temperature:     &temp,
		MaxOutputTokens: int32(req.MaxOutputTokens),
	}
	if req.Instructions != "" {
		cfg.SystemInstruction = genai.NewContentFromText(req.Instructions, genai.RoleUser)
	}
	return cfg
}

func toGeminiContents(req Request) []*genai.Content {
	contents := make([]*genai.Content, 0, len(req.Turns)+1)
	for _, m := range req.Turns {
		role := genai.Role(genai.RoleUser)
		if m.Role == RoleModel {
			role = genai.RoleModel
		}
		contents = append(contents, genai.NewContentFromText(m.Content, role))
	}
	return append(contents, genai.NewContentFromText(req.NewMessage, genai.RoleUser))
}

func geminiFault(err error) *Fault {
	var apiErr genai.APIError
	if errors.As(err, &apiErr) {
		return &Fault{StatusCode: apiErr.Code, Message: apiErr.Message, Err: err}
	}
	var apiErrPtr *genai.APIError
	if errors.As(err, &apiErrPtr) {
		return &Fault{StatusCode: apiErrPtr.Code, Message: apiErrPtr.Message, Err: err}
	}
	return &Fault{Message: err.Error(), Err: err}
}
