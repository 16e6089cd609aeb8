// Package analyze turns observation notes into structured analyses
// using an OpenAI chat model.
package analyze

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"

	"github.com/starford/munin/internal/apperr"
	"github.com/starford/munin/internal/models"
)

// DefaultModel is used when no model is configured.
const DefaultModel = "gpt-4o"

// Analyzer produces an analysis for a single note. Implementations
// never abort a run: failures come back as a failed Analysis carrying
// the reason.
type Analyzer interface {
	Analyze(ctx context.Context, note models.Note) models.Analysis
}

// Options configures the OpenAI-backed analyzer.
type Options struct {
	APIKey            string
	BaseURL           string
	Model             string
	Temperature       float64
	MaxResponseTokens int
	// MaxNoteTokens caps how much of a note body goes into the prompt.
	// Zero means no cap.
	MaxNoteTokens int
}

// OpenAI implements Analyzer against the OpenAI chat completions API.
// Each note gets exactly one request attempt.
type OpenAI struct {
	client      openai.Client
	model       string
	temperature float64
	maxTokens   int64
	trunc       *truncator
	logger      *slog.Logger
}

// NewOpenAI builds the analyzer. A missing API key is a configuration
// error so callers can fail fast before touching the vault.
func NewOpenAI(opts Options, logger *slog.Logger) (*OpenAI, error) {
	if opts.APIKey == "" {
		return nil, fmt.Errorf("analyze: OpenAI API key not set: %w", apperr.ErrConfiguration)
	}
	if logger == nil {
		logger = slog.Default()
	}
	model := opts.Model
	if model == "" {
		model = DefaultModel
	}
	maxTokens := opts.MaxResponseTokens
	if maxTokens <= 0 {
		maxTokens = 500
	}

	ro := []option.RequestOption{
		option.WithAPIKey(opts.APIKey),
		option.WithMaxRetries(0),
	}
	if opts.BaseURL != "" {
		ro = append(ro, option.WithBaseURL(opts.BaseURL))
	}

	return &OpenAI{
		client:      openai.NewClient(ro...),
		model:       model,
		temperature: opts.Temperature,
		maxTokens:   int64(maxTokens),
		trunc:       newTruncator(model, opts.MaxNoteTokens),
		logger:      logger,
	}, nil
}

// Analyze runs one chat completion for the note and parses the labelled
// response. Notes with an empty body are not sent to the model.
func (o *OpenAI) Analyze(ctx context.Context, note models.Note) models.Analysis {
	a := models.Analysis{
		NotePath:  note.Path,
		NoteTitle: note.Title,
		WordCount: note.WordCount,
	}

	if strings.TrimSpace(note.Body) == "" {
		a.Status = models.AnalysisSucceeded
		a.Summary = "Note has no content to analyze."
		return a
	}

	body, truncated := o.trunc.truncate(note.Body)
	if truncated {
		o.logger.Warn("note body truncated to fit token budget", "path", note.Path)
	}

	resp, err := o.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model: openai.ChatModel(o.model),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(systemPrompt),
			openai.UserMessage(buildUserPrompt(note.Title, body)),
		},
		MaxTokens:   openai.Int(o.maxTokens),
		Temperature: openai.Float(o.temperature),
	})
	if err != nil {
		a.Status = models.AnalysisFailed
		a.FailReason = failReason(err)
		return a
	}
	if len(resp.Choices) == 0 || strings.TrimSpace(resp.Choices[0].Message.Content) == "" {
		a.Status = models.AnalysisFailed
		a.FailReason = "model returned an empty response"
		return a
	}

	parsed := ParseResponse(resp.Choices[0].Message.Content)
	a.Summary = parsed.Summary
	a.Hypothesis = parsed.Hypothesis
	a.FollowUp = parsed.FollowUp
	a.Status = models.AnalysisSucceeded
	return a
}

func failReason(err error) string {
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return "request timed out"
	case errors.Is(err, context.Canceled):
		return "request cancelled"
	}
	return strings.TrimSpace(err.Error())
}
