package services

import (
	"context"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"askbrooks/config"
	"askbrooks/metrics"
	"askbrooks/models"

	"go.uber.org/zap"
)

const publishTimeout = 2 * time.Second

// sources are the three books the notebook is built from. They are returned
// with every answer regardless of content.
// TODO: derive these from the citations in the answer once the bridge exposes them.
var sources = []string{
	"Trading Price Action Trends",
	"Trading Price Action Reversals",
	"Trading Price Action Trading Ranges",
}

// Sources returns a copy of the fixed source list.
func Sources() []string {
	return append([]string(nil), sources...)
}

type AskService struct {
	manager    *ClientManager
	notebookID string
	maxLength  int
	publisher  EventPublisher
	metrics    *metrics.Metrics
	logger     *zap.Logger
}

func NewAskService(cfg *config.Config, manager *ClientManager, publisher EventPublisher, m *metrics.Metrics, logger *zap.Logger) *AskService {
	return &AskService{
		manager:    manager,
		notebookID: cfg.NotebookLM.NotebookID,
		maxLength:  cfg.Ask.MaxQuestionLength,
		publisher:  publisher,
		metrics:    m,
		logger:     logger,
	}
}

// Ask validates question, forwards it to the notebook and wraps the answer.
func (s *AskService) Ask(ctx context.Context, question string) (*models.AskResponse, error) {
	start := time.Now()
	question = strings.TrimSpace(question)

	resp, err := s.ask(ctx, question)

	elapsed := time.Since(start)
	s.metrics.ObserveAsk(outcome(err), elapsed)
	s.publish(ctx, models.AskEvent{
		QuestionLength: utf8.RuneCountInString(question),
		Status:         StatusCode(err),
		DurationMs:     elapsed.Milliseconds(),
		OccurredAt:     start.UTC(),
	})
	return resp, err
}

func (s *AskService) ask(ctx context.Context, question string) (*models.AskResponse, error) {
	if question == "" {
		return nil, &Error{Kind: ErrInvalidQuestion, Detail: "Question cannot be empty"}
	}
	if s.maxLength > 0 && utf8.RuneCountInString(question) > s.maxLength {
		return nil, &Error{
			Kind:   ErrInvalidQuestion,
			Detail: fmt.Sprintf("Question cannot be longer than %d characters", s.maxLength),
		}
	}

	client, err := s.manager.Acquire(ctx)
	if err != nil {
		return nil, err
	}

	answer, err := client.Ask(ctx, s.notebookID, question)
	if err != nil {
		return nil, &Error{Kind: ErrUpstream, Detail: "NotebookLM error: " + err.Error(), Err: err}
	}

	return &models.AskResponse{Answer: answer, Sources: Sources()}, nil
}

func (s *AskService) publish(ctx context.Context, event models.AskEvent) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), publishTimeout)
	defer cancel()
	if err := s.publisher.Publish(ctx, event); err != nil {
		s.logger.Warn("failed to publish ask event", zap.Error(err))
	}
}
