package verify

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	openai "github.com/sashabaranov/go-openai"
	"go.uber.org/zap"

	"github.com/avetisyan-lab/citewell/internal/model"
	"github.com/avetisyan-lab/citewell/internal/worker"
)

// OpenAIJudge implements Judge using the Chat Completions API
type OpenAIJudge struct {
	client    *openai.Client
	model     string
	maxTokens int
	timeout   time.Duration
	limiter   *worker.Limiter
	logger    *zap.Logger
}

// NewOpenAIJudge creates an LLM-backed evidence judge
func NewOpenAIJudge(cfg model.JudgeConfig, limiter *worker.Limiter, logger *zap.Logger) (*OpenAIJudge, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("OpenAI API key is required")
	}

	clientConfig := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientConfig.BaseURL = cfg.BaseURL
	}

	chatModel := cfg.Model
	if chatModel == "" {
		chatModel = openai.GPT4oMini
	}

	maxTokens := cfg.MaxTokens
	if maxTokens == 0 {
		maxTokens = 400
	}

	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 45 * time.Second
	}

	return &OpenAIJudge{
		client:    openai.NewClientWithConfig(clientConfig),
		model:     chatModel,
		maxTokens: maxTokens,
		timeout:   timeout,
		limiter:   limiter,
		logger:    logger,
	}, nil
}

// judgePrompt instructs the model to answer with a strict JSON verdict.
const judgePrompt = `You are judging whether a passage from the scientific literature supports a claim.

Claim:
%s

Passage:
%s

Answer with a single JSON object, nothing else:
{"supports": true|false, "confidence": 0.0-1.0, "reasoning": "one sentence"}

"supports" is true only when the passage itself states or directly implies the claim. Topical relatedness alone is not support.`

// verdictPayload mirrors the JSON the model is asked to return
type verdictPayload struct {
	Supports   bool    `json:"supports"`
	Confidence float64 `json:"confidence"`
	Reasoning  string  `json:"reasoning"`
}

// Verify asks the model for a support judgment on one claim/snippet pair.
func (j *OpenAIJudge) Verify(ctx context.Context, claimText, snippetText string) (*Verdict, error) {
	if j.limiter != nil {
		if err := j.limiter.Wait(ctx, worker.CapabilityJudge); err != nil {
			return nil, err
		}
	}

	ctxWithTimeout, cancel := context.WithTimeout(ctx, j.timeout)
	defer cancel()

	resp, err := j.client.CreateChatCompletion(ctxWithTimeout, openai.ChatCompletionRequest{
		Model: j.model,
		Messages: []openai.ChatCompletionMessage{
			{
				Role:    openai.ChatMessageRoleSystem,
				Content: "You judge evidentiary support strictly. You never reward topical similarity without substantive support.",
			},
			{
				Role:    openai.ChatMessageRoleUser,
				Content: fmt.Sprintf(judgePrompt, claimText, snippetText),
			},
		},
		MaxTokens:   j.maxTokens,
		Temperature: 0.1,
	})
	if err != nil {
		return nil, fmt.Errorf("judge request: %w", err)
	}
	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("no response from judge")
	}

	verdict, err := parseVerdict(resp.Choices[0].Message.Content)
	if err != nil {
		j.logger.Debug("unparseable judge response",
			zap.String("content", resp.Choices[0].Message.Content), zap.Error(err))
		return nil, err
	}
	return verdict, nil
}

// parseVerdict extracts the JSON verdict, tolerating surrounding prose or
// markdown fences.
func parseVerdict(content string) (*Verdict, error) {
	start := strings.Index(content, "{")
	end := strings.LastIndex(content, "}")
	if start < 0 || end <= start {
		return nil, fmt.Errorf("no JSON object in judge response")
	}

	var payload verdictPayload
	if err := json.Unmarshal([]byte(content[start:end+1]), &payload); err != nil {
		return nil, fmt.Errorf("parse verdict: %w", err)
	}

	if payload.Confidence < 0 {
		payload.Confidence = 0
	}
	if payload.Confidence > 1 {
		payload.Confidence = 1
	}

	return &Verdict{
		Supports:   payload.Supports,
		Confidence: payload.Confidence,
		Reasoning:  strings.TrimSpace(payload.Reasoning),
	}, nil
}
