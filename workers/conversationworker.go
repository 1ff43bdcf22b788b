package workers

import (
	"context"
	"fmt"
	"log"

	"github.com/pkg/errors"

	"github.com/mrsingh-rishi/wyn-voice/errs"
	"github.com/mrsingh-rishi/wyn-voice/pipeline"
)

//go:generate mockgen -destination=../mocks/mock_workers.go -package=mocks github.com/mrsingh-rishi/wyn-voice/workers Conversation,Speaker

// Conversation runs one spoken round trip, typically *pipeline.AudioProcessor.
type Conversation interface {
	Converse(ctx context.Context) (*pipeline.Turn, error)
}

// ConversationWorker runs Converse turns back to back until stopped.
type ConversationWorker struct {
	ctx      context.Context
	cancel   context.CancelFunc
	done     chan struct{}
	logger   *log.Logger
	maxTurns int

	Conversation Conversation
	Results      chan *pipeline.Turn
	Errors       chan error
}

// NewConversationWorker creates a worker. maxTurns <= 0 means run until Stop.
func NewConversationWorker(conversation Conversation, maxTurns int, logger *log.Logger) (*ConversationWorker, error) {
	if conversation == nil {
		return nil, fmt.Errorf("conversation is required")
	}
	if logger == nil {
		logger = log.Default()
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &ConversationWorker{
		ctx:          ctx,
		cancel:       cancel,
		done:         make(chan struct{}),
		logger:       logger,
		maxTurns:     maxTurns,
		Conversation: conversation,
		Results:      make(chan *pipeline.Turn),
		Errors:       make(chan error),
	}, nil
}

// Start runs turns on a goroutine. Results and Errors are closed when it exits.
func (w *ConversationWorker) Start() {
	go func() {
		defer close(w.done)
		defer close(w.Errors)
		defer close(w.Results)

		for turns := 0; w.maxTurns <= 0 || turns < w.maxTurns; turns++ {
			if w.ctx.Err() != nil {
				return
			}

			turn, err := w.Conversation.Converse(w.ctx)
			if err != nil {
				if w.ctx.Err() != nil {
					return
				}
				if !w.publish(nil, err) {
					return
				}
				if fatal(err) {
					w.logger.Printf("Conversation stopped: %v", err)
					return
				}
				continue
			}
			if !w.publish(turn, nil) {
				return
			}
		}
	}()
}

func (w *ConversationWorker) publish(turn *pipeline.Turn, err error) bool {
	if err != nil {
		select {
		case w.Errors <- err:
			return true
		case <-w.ctx.Done():
			return false
		}
	}
	select {
	case w.Results <- turn:
		return true
	case <-w.ctx.Done():
		return false
	}
}

// Done is closed once the loop has exited.
func (w *ConversationWorker) Done() <-chan struct{} {
	return w.done
}

// Stop cancels the turn in flight and ends the loop.
func (w *ConversationWorker) Stop() {
	w.cancel()
}

// fatal reports errors that another turn cannot recover from.
func fatal(err error) bool {
	return errors.Is(err, errs.ErrInvalidCredentials) || errors.Is(err, errs.ErrDeviceUnavailable)
}
