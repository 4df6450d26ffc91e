package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
)

// GeminiCompleter calls the Generative Language generateContent endpoint.
// The system entry becomes systemInstruction and assistant turns use the
// "model" role.
type GeminiCompleter struct {
	http   *resty.Client
	apiKey string
	model  string
}

type geminiPart struct {
	Text string `json:"text"`
}

type geminiContent struct {
	Role  string       `json:"role,omitempty"`
	Parts []geminiPart `json:"parts"`
}

type geminiRequest struct {
	SystemInstruction *geminiContent  `json:"systemInstruction,omitempty"`
	Contents          []geminiContent `json:"contents"`
}

type geminiResponse struct {
	Candidates []struct {
		Content geminiContent `json:"content"`
	} `json:"candidates"`
}

func NewGeminiCompleter(apiKey, model, baseURL string, timeout time.Duration) *GeminiCompleter {
	return &GeminiCompleter{
		http: resty.New().
			SetBaseURL(strings.TrimRight(baseURL, "/")).
			SetHeader("Content-Type", "application/json").
			SetHeader("Accept", "application/json").
			SetTimeout(timeout),
		apiKey: apiKey,
		model:  model,
	}
}

func (c *GeminiCompleter) Complete(ctx context.Context, chat []ChatMessage) (string, error) {
	if strings.TrimSpace(c.apiKey) == "" {
		return "", upstreamError("gemini", errors.New("GEMINI_API_KEY is not set"))
	}

	var out geminiResponse
	resp, err := c.http.R().
		SetContext(ctx).
		SetQueryParam("key", c.apiKey).
		SetPathParam("model", c.model).
		SetBody(geminiPayload(chat)).
		SetResult(&out).
		Post("/models/{model}:generateContent")
	if err != nil {
		return "", upstreamError("gemini", err)
	}
	if resp.IsError() {
		return "", upstreamError("gemini", fmt.Errorf("status %d: %s", resp.StatusCode(), strings.TrimSpace(resp.String())))
	}
	if len(out.Candidates) == 0 || len(out.Candidates[0].Content.Parts) == 0 {
		return "", upstreamError("gemini", errors.New("response has no candidates"))
	}

	var b strings.Builder
	for _, p := range out.Candidates[0].Content.Parts {
		b.WriteString(p.Text)
	}
	return b.String(), nil
}

func geminiPayload(chat []ChatMessage) geminiRequest {
	req := geminiRequest{Contents: make([]geminiContent, 0, len(chat))}
	for _, m := range chat {
		switch m.Role {
		case RoleSystem:
			if req.SystemInstruction == nil {
				req.SystemInstruction = &geminiContent{}
			}
			req.SystemInstruction.Parts = append(req.SystemInstruction.Parts, geminiPart{Text: m.Text})
		case RoleAssistant:
			req.Contents = append(req.Contents, geminiContent{Role: "model", Parts: []geminiPart{{Text: m.Text}}})
		default:
			req.Contents = append(req.Contents, geminiContent{Role: "user", Parts: []geminiPart{{Text: m.Text}}})
		}
	}
	return req
}
