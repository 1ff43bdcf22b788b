package workers

import (
	"context"
	"fmt"
	"log"

	"github.com/mrsingh-rishi/wyn-voice/queue"
)

// Speaker synthesizes text and plays it, typically *pipeline.AudioProcessor.
type Speaker interface {
	Speak(ctx context.Context, text string) (string, error)
}

// SpeechWorker speaks replies in arrival order, one at a time, while the producer keeps going.
type SpeechWorker struct {
	ctx     context.Context
	cancel  context.CancelFunc
	done    chan struct{}
	logger  *log.Logger
	pending *queue.Queue[string]

	Speaker      Speaker
	InputChannel <-chan string
	Errors       chan error
}

func NewSpeechWorker(speaker Speaker, inputChannel <-chan string, logger *log.Logger) (*SpeechWorker, error) {
	if speaker == nil {
		return nil, fmt.Errorf("speaker is required")
	}
	if inputChannel == nil {
		return nil, fmt.Errorf("input channel is required")
	}
	if logger == nil {
		logger = log.Default()
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &SpeechWorker{
		ctx:          ctx,
		cancel:       cancel,
		done:         make(chan struct{}),
		logger:       logger,
		pending:      queue.New[string](),
		Speaker:      speaker,
		InputChannel: inputChannel,
		Errors:       make(chan error, 8),
	}, nil
}

// Start begins receiving and speaking. Once InputChannel closes, whatever is still
// queued is spoken before Done closes.
func (w *SpeechWorker) Start() {
	received := make(chan struct{})

	go func() {
		defer close(received)
		for {
			select {
			case <-w.ctx.Done():
				return
			case text, ok := <-w.InputChannel:
				if !ok {
					return
				}
				w.pending.Enqueue(text)
			}
		}
	}()

	go func() {
		defer close(w.done)
		defer close(w.Errors)
		for {
			w.speakPending()
			select {
			case <-w.ctx.Done():
				if n := len(w.pending.Drain()); n > 0 {
					w.logger.Printf("Dropped %d unspoken replies", n)
				}
				return
			case <-w.pending.Ready():
			case <-received:
				w.speakPending()
				return
			}
		}
	}()
}

func (w *SpeechWorker) speakPending() {
	for w.ctx.Err() == nil {
		text, ok := w.pending.Dequeue()
		if !ok {
			return
		}
		if _, err := w.Speaker.Speak(w.ctx, text); err != nil && w.ctx.Err() == nil {
			w.logger.Printf("Failed to speak reply: %v", err)
			select {
			case w.Errors <- err:
			default:
			}
		}
	}
}

// Pending is the number of replies waiting to be spoken.
func (w *SpeechWorker) Pending() int {
	return w.pending.Len()
}

// Done is closed once the worker has exited.
func (w *SpeechWorker) Done() <-chan struct{} {
	return w.done
}

// Stop aborts current playback and drops anything still queued.
func (w *SpeechWorker) Stop() {
	w.cancel()
}
