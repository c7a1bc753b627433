// Package summarize turns session notes into study aids with an OpenAI-compatible chat
// completion endpoint.
package summarize

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// Kind selects the study aid to generate.
type Kind string

const (
	KindSummary    Kind = "summary"
	KindKeyPoints  Kind = "keypoints"
	KindQuestions  Kind = "questions"
	KindFlashcards Kind = "flashcards"
)

// Kinds lists every supported kind.
var Kinds = []Kind{KindSummary, KindKeyPoints, KindQuestions, KindFlashcards}

var (
	ErrNoNotes     = errors.New("summarize: notes are required")
	ErrNoQuestion  = errors.New("summarize: question is required")
	ErrUnknownKind = errors.New("summarize: unknown kind")
	ErrNotAllowed  = errors.New("summarize: the AI endpoint rejected the credentials")
)

// ParseKind validates s. Empty means KindSummary.
func ParseKind(s string) (Kind, error) {
	if s == "" {
		return KindSummary, nil
	}
	for _, k := range Kinds {
		if string(k) == strings.ToLower(s) {
			return k, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownKind, s)
}

type Client struct {
	baseURL    string
	apiKey     string
	model      string
	httpClient *http.Client
}

func NewClient(baseURL, apiKey, model string) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		model:   model,
		httpClient: &http.Client{
			Timeout: 60 * time.Second,
		},
	}
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature float64       `json:"temperature"`
	MaxTokens   int           `json:"max_tokens"`
}

type chatResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
}

// Generate produces the requested study aid for notes, a plain-text bullet list.
func (c *Client) Generate(ctx context.Context, kind Kind, videoTitle, notes string) (string, error) {
	if strings.TrimSpace(notes) == "" {
		return "", ErrNoNotes
	}
	prompt, err := Prompt(kind, videoTitle, notes)
	if err != nil {
		return "", err
	}

	return c.complete(ctx, []chatMessage{{Role: "user", Content: prompt}}, 0.5)
}

// ChatContext is what the assistant knows about the session when answering.
type ChatContext struct {
	VideoTitle string
	Notes      string
	Extra      string
}

// Ask answers a free-form question about the video, grounded on the session's notes.
func (c *Client) Ask(ctx context.Context, question string, cc ChatContext) (string, error) {
	question = strings.TrimSpace(question)
	if question == "" {
		return "", ErrNoQuestion
	}
	return c.complete(ctx, []chatMessage{
		{Role: "system", Content: SystemPrompt(cc)},
		{Role: "user", Content: question},
	}, 0.7)
}

// SystemPrompt describes the learning assistant and the session it is helping with.
func SystemPrompt(cc ChatContext) string {
	var b strings.Builder
	b.WriteString("You are a helpful learning assistant. ")
	if cc.VideoTitle != "" {
		fmt.Fprintf(&b, "The user is watching a video titled %q. ", cc.VideoTitle)
	}
	if strings.TrimSpace(cc.Notes) != "" {
		fmt.Fprintf(&b, "Here are the user's notes from the video:\n%s\n\n", cc.Notes)
	}
	if cc.Extra != "" {
		fmt.Fprintf(&b, "Additional context: %s\n\n", cc.Extra)
	}
	b.WriteString("Help the user understand the content, answer questions, and provide explanations. Be concise but thorough.")
	return b.String()
}

func (c *Client) complete(ctx context.Context, messages []chatMessage, temperature float64) (string, error) {
	body, err := json.Marshal(chatRequest{
		Model:       c.model,
		Messages:    messages,
		Temperature: temperature,
		MaxTokens:   2048,
	})
	if err != nil {
		return "", fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/v1/chat/completions", bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("send request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("read response: %w", err)
	}

	switch {
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return "", ErrNotAllowed
	case resp.StatusCode != http.StatusOK:
		return "", fmt.Errorf("AI API returned status %d: %s", resp.StatusCode, string(respBody))
	}

	var chatResp chatResponse
	if err := json.Unmarshal(respBody, &chatResp); err != nil {
		return "", fmt.Errorf("unmarshal response: %w", err)
	}
	if len(chatResp.Choices) == 0 || strings.TrimSpace(chatResp.Choices[0].Message.Content) == "" {
		return "", fmt.Errorf("AI API returned empty choices")
	}
	return strings.TrimSpace(chatResp.Choices[0].Message.Content), nil
}

// Prompt builds the user prompt for kind.
func Prompt(kind Kind, videoTitle, notes string) (string, error) {
	titled := func(prefix string) string {
		if videoTitle == "" {
			return ""
		}
		return fmt.Sprintf(" %s %q", prefix, videoTitle)
	}

	switch kind {
	case KindSummary:
		return fmt.Sprintf("Please summarize the following notes from a video%s. Provide a clear, concise summary with key points:\n\n%s", titled("titled"), notes), nil
	case KindKeyPoints:
		return fmt.Sprintf("Extract the key points and main concepts from these notes%s. Format as a bulleted list:\n\n%s", titled("about"), notes), nil
	case KindQuestions:
		return fmt.Sprintf("Based on these notes%s, generate 5 study questions that would help someone test their understanding of the material:\n\n%s", titled("about"), notes), nil
	case KindFlashcards:
		return fmt.Sprintf("Create flashcard-style Q&A pairs from these notes%s. Format each as:\nQ: [question]\nA: [answer]\n\nNotes:\n%s", titled("about"), notes), nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownKind, kind)
	}
}
