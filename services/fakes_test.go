package services

import (
	"context"
	"sync"
	"sync/atomic"

	"askbrooks/models"
)

type fakeConnector struct {
	answer string
	err    error
	closes atomic.Int32

	mu        sync.Mutex
	questions []string
}

func (f *fakeConnector) Ask(_ context.Context, notebookID, question string) (string, error) {
	f.mu.Lock()
	f.questions = append(f.questions, notebookID+"|"+question)
	f.mu.Unlock()
	return f.answer, f.err
}

func (f *fakeConnector) Close() error {
	f.closes.Add(1)
	return nil
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []models.AskEvent
	err    error
}

func (p *recordingPublisher) Publish(_ context.Context, e models.AskEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, e)
	return p.err
}
