package openai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/joseph-ayodele/pdf-data-extractor/internal/common"
	"github.com/joseph-ayodele/pdf-data-extractor/internal/llm"
)

type responseFormat struct {
	Type string `json:"type"`
}

type chatRequest struct {
	Model          string            `json:"model"`
	Temperature    float32           `json:"temperature"`
	Messages       []llm.ChatMessage `json:"messages"`
	ResponseFormat *responseFormat   `json:"response_format,omitempty"`
}

type chatCompletion struct {
	Model   string `json:"model"`
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
	Usage struct {
		PromptTokens     int `json:"prompt_tokens"`
		CompletionTokens int `json:"completion_tokens"`
	} `json:"usage"`
}

// errorBodyLimit caps how much of a non-2xx body ends up in the error.
const errorBodyLimit = 512

// Complete implements llm.Completer with a single chat/completions round trip. Every failure
// (transport, non-2xx, undecodable body, no choices) wraps common.ErrTransport.
func (c *Client) Complete(ctx context.Context, req llm.ChatRequest) (llm.ChatResponse, error) {
	rid := uuid.New().String()
	start := time.Now()
	log := c.log.With(common.LogAttrs(ctx)...).With("req_id", rid)

	log.Info("llm.chat.start",
		"model", c.cfg.Model,
		"temp", c.cfg.Temperature,
		"messages", len(req.Messages),
		"json_object", req.JSONObject,
	)

	body := chatRequest{
		Model:       c.cfg.Model,
		Temperature: c.cfg.Temperature,
		Messages:    req.Messages,
	}
	if body.Messages == nil {
		body.Messages = []llm.ChatMessage{}
	}
	if req.JSONObject {
		body.ResponseFormat = &responseFormat{Type: "json_object"}
	}

	cc, err := c.postChat(ctx, body)
	if err != nil {
		log.Error("llm.chat.failed", "error", err, "elapsed_ms", time.Since(start).Milliseconds())
		return llm.ChatResponse{}, err
	}

	out := llm.ChatResponse{
		Content:          cc.Choices[0].Message.Content,
		Model:            cc.Model,
		PromptTokens:     cc.Usage.PromptTokens,
		CompletionTokens: cc.Usage.CompletionTokens,
	}
	log.Info("llm.chat.ok",
		"model", out.Model,
		"reply_chars", len(out.Content),
		"prompt_tokens", out.PromptTokens,
		"completion_tokens", out.CompletionTokens,
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return out, nil
}

// postChat sends body to {BaseURL}/chat/completions and decodes the first successful reply.
func (c *Client) postChat(ctx context.Context, body chatRequest) (*chatCompletion, error) {
	bs, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("%w: encode chat request: %v", common.ErrTransport, err)
	}

	endpoint := strings.TrimRight(c.cfg.BaseURL, "/") + "/chat/completions"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(bs))
	if err != nil {
		return nil, fmt.Errorf("%w: build chat request: %v", common.ErrTransport, err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.cfg.APIKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: chat completion: %v", common.ErrTransport, err)
	}
	defer func() {
		if cerr := resp.Body.Close(); cerr != nil {
			c.log.Warn("llm.chat.body_close_error", "error", cerr)
		}
	}()

	if resp.StatusCode/100 != 2 {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, errorBodyLimit))
		return nil, fmt.Errorf("%w: chat completion: status %d: %s",
			common.ErrTransport, resp.StatusCode, strings.TrimSpace(string(raw)))
	}

	var cc chatCompletion
	if err := json.NewDecoder(resp.Body).Decode(&cc); err != nil {
		return nil, fmt.Errorf("%w: decode chat completion: %v", common.ErrTransport, err)
	}
	if len(cc.Choices) == 0 {
		return nil, fmt.Errorf("%w: no choices in chat completion", common.ErrTransport)
	}
	return &cc, nil
}
