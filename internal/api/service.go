// Package api exposes the review pipeline over HTTP as a minimal chat
// endpoint: one free-text message in, one generated review out.
package api

import (
	"context"
	"fmt"
	"log/slog"
	"regexp"
	"strconv"
	"strings"

	"github.com/starford/munin/internal/models"
	"github.com/starford/munin/internal/pipeline"
)

// daysHint matches phrases like "14 days" or "last 3 day".
var daysHint = regexp.MustCompile(`(\d+)\s*day`)

// Service turns chat messages into pipeline runs.
type Service struct {
	pipe        *pipeline.Pipeline
	defaultDays int
	logger      *slog.Logger
}

// NewService creates a new Service.
func NewService(pipe *pipeline.Pipeline, defaultDays int, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	if defaultDays < 1 {
		defaultDays = 7
	}
	return &Service{pipe: pipe, defaultDays: defaultDays, logger: logger}
}

// ParseWindowHint extracts a review window from free text. "All time"
// or "everything" selects the unbounded window, an explicit "N days"
// sets the day count, and anything else falls back to the default.
func (s *Service) ParseWindowHint(message string) models.ReviewWindow {
	lower := strings.ToLower(message)
	if strings.Contains(lower, "all time") || strings.Contains(lower, "everything") {
		return models.ReviewWindow{AllTime: true}
	}
	if m := daysHint.FindStringSubmatch(lower); m != nil {
		if days, err := strconv.Atoi(m[1]); err == nil && days > 0 {
			return models.ReviewWindow{Days: days}
		}
	}
	return models.ReviewWindow{Days: s.defaultDays}
}

// HandleMessage runs a review for the window hinted at by the message
// and summarises the outcome for the chat client.
func (s *Service) HandleMessage(ctx context.Context, message string) (*MessageResponse, error) {
	window := s.ParseWindowHint(message)
	s.logger.Info("chat message received", "window", window.Describe())

	res, err := s.pipe.Run(ctx, window)
	if err != nil {
		return nil, err
	}

	reply := fmt.Sprintf("Generated a review of the %s: %d note%s analyzed",
		window.Describe(), len(res.Review.Entries), plural(len(res.Review.Entries)))
	if res.Failures > 0 {
		reply += fmt.Sprintf(" (%d failed)", res.Failures)
	}
	reply += fmt.Sprintf(". Saved to %s.", res.Path)

	return &MessageResponse{
		Response:       reply,
		Path:           res.Path,
		Window:         window.Describe(),
		NotesProcessed: len(res.Review.Entries),
		FailedEntries:  res.Failures,
	}, nil
}

func plural(n int) string {
	if n == 1 {
		return ""
	}
	return "s"
}
