package llm

import (
	"context"
	"fmt"

	"github.com/Morwran/yagpt"
)

// YandexClient calls YandexGPT. The credential is an OAuth token that is
// exchanged for an IAM token on every call.
type YandexClient struct {
	folderID string
}

func NewYandex(folderID string) *YandexClient {
	return &YandexClient{folderID: folderID}
}

func (c *YandexClient) Generate(ctx context.Context, credential string, req Request) (Response, error) {
	// Create IAM token from OAuth token
	iam, err := yagpt.NewYaIam(credential)
	if err != nil {
		return Response{}, &Fault{Message: fmt.Sprintf("failed to init yandex iam: %v", err), Err: err}
	}
	token, err := iam.Create()
	if err != nil {
		return Response{}, &Fault{Message: fmt.Sprintf("failed to create iam token: %v", err), Err: err}
	}

	// Create YaGPT client for a folder
	ya, err := yagpt.NewYagpt(c.folderID)
	if err != nil {
		return Response{}, &Fault{Message: fmt.Sprintf("failed to init yagpt: %v", err), Err: err}
	}

	resp, err := ya.CompletionWithCtx(ctx, token.IamToken, toYandexMessages(req))
	if err != nil {
		return Response{}, &Fault{Message: fmt.Sprintf("yagpt completion failed: %v", err), Err: err}
	}
	if resp == nil || len(resp.Alternatives) == 0 {
		return Response{}, emptyReply("yagpt")
	}
	out := Response{Content: resp.Alternatives[0].Message.Content, Model: yagpt.YaModelLite}
	out.PromptTokens = int(resp.Usage.InputTextTokens)
	out.CompletionTokens = int(resp.Usage.CompletionTokens)
	out.TotalTokens = int(resp.Usage.TotalTokens)
	return out, nil
}

// yagpt has no knobs for temperature or output size, so those are ignored.
func toYandexMessages(req Request) []yagpt.Message {
	messages := make([]yagpt.Message, 0, len(req.Turns)+2)
	if req.Instructions != "" {
		messages = append(messages, yagpt.Message{Role: "system", Content: req.Instructions})
	}
	for _, m := range req.Turns {
		if m.Role == RoleModel {
			messages = append(messages, yagpt.Message{Role: "assistant", Content: m.Content})
			continue
		}
		messages = append(messages, yagpt.Message{Role: "user", Content: m.Content})
	}
	return append(messages, yagpt.Message{Role: "user", Content: req.NewMessage})
}
