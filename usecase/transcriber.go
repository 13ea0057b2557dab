package usecase

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/eldanielo/ceassist/domain/entities"
	"github.com/eldanielo/ceassist/domain/repositories"
	"github.com/eldanielo/ceassist/internal/audio"
)

// Advisor handles one finalized transcript segment.
type Advisor interface {
	Dispatch(ctx context.Context, transcript string) error
}

// TranscriberConfig tunes one connection's transcription pipeline.
type TranscriberConfig struct {
	SourceSampleRate int
	SpeechSampleRate int
	Language         string
	// StreamLimit bounds one recognition window. The provider enforces a
	// hard session-duration limit (~305s); staying under it lets the window
	// rotate gracefully instead of erroring out.
	StreamLimit time.Duration
	Diarization bool
}

// Transcriber owns one outbound streaming-recognition window at a time for
// the lifetime of a connection. It drains the ingest queue, resamples,
// forwards audio upstream, consumes interim and final results, and rotates
// the window before the provider's duration limit expires. Frames queued
// across a rotation are forwarded to the replacement window, never dropped.
type Transcriber struct {
	recognizer repositories.SpeechRecognizer
	queue      *audio.Queue
	emitter    Emitter
	advisor    Advisor
	transcript *entities.SessionTranscript
	config     TranscriberConfig
	logger     *zap.Logger
}

// NewTranscriber creates the transcription loop for one connection.
func NewTranscriber(
	recognizer repositories.SpeechRecognizer,
	queue *audio.Queue,
	emitter Emitter,
	advisor Advisor,
	transcript *entities.SessionTranscript,
	config TranscriberConfig,
	logger *zap.Logger,
) *Transcriber {
	return &Transcriber{
		recognizer: recognizer,
		queue:      queue,
		emitter:    emitter,
		advisor:    advisor,
		transcript: transcript,
		config:     config,
		logger:     logger,
	}
}

// Run drives the window state machine until the queue sentinel arrives, the
// context is cancelled, or the upstream fails. Cancellation is a clean exit,
// never an error.
func (t *Transcriber) Run(ctx context.Context) error {
	for {
		rotate, err := t.runWindow(ctx)
		if err != nil {
			if errors.Is(err, context.Canceled) {
				t.logger.Info("Transcription loop cancelled")
				return nil
			}
			return err
		}
		if !rotate {
			t.logger.Info("Transcription loop finished")
			return nil
		}
		t.logger.Info("Stream limit reached, rotating recognition window")
	}
}

type feedOutcome struct {
	rotate bool
	err    error
}

// runWindow runs one recognition window to completion. It reports whether a
// replacement window should be opened.
func (t *Transcriber) runWindow(ctx context.Context) (bool, error) {
	stream, err := t.recognizer.OpenStream(ctx, repositories.RecognitionConfig{
		SampleRate:        t.config.SpeechSampleRate,
		Language:          t.config.Language,
		InterimResults:    true,
		EnableDiarization: t.config.Diarization,
	})
	if err != nil {
		return false, fmt.Errorf("failed to open recognition window: %w", err)
	}
	defer stream.Close()

	// The window deadline only stops the feeder; the stream itself hangs off
	// the connection context so in-flight results still drain after rotation.
	windowCtx, cancel := context.WithTimeout(ctx, t.config.StreamLimit)
	defer cancel()

	feedDone := make(chan feedOutcome, 1)
	go func() {
		feedDone <- t.feed(windowCtx, ctx, stream)
	}()

	for {
		result, recvErr := stream.Recv()
		if recvErr == io.EOF {
			break
		}
		if recvErr != nil {
			cancel()
			<-feedDone
			if ctx.Err() != nil {
				return false, ctx.Err()
			}
			return false, recvErr
		}
		if err := t.handleResult(ctx, result); err != nil {
			cancel()
			<-feedDone
			return false, err
		}
	}

	outcome := <-feedDone
	if outcome.err != nil {
		if ctx.Err() != nil {
			return false, ctx.Err()
		}
		return false, outcome.err
	}
	return outcome.rotate, nil
}

// feed drains the queue into the window until the sentinel, the window
// deadline, or cancellation. Frames are only removed from the queue once
// they can be sent into the current window, so rotation never loses audio.
func (t *Transcriber) feed(windowCtx, ctx context.Context, stream repositories.RecognitionStream) feedOutcome {
	defer stream.CloseSend()

	for {
		// The deadline wins even while frames are still buffered, or a
		// sustained backlog would hold the window open past the provider's
		// hard duration cap. Whatever stays queued goes to the next window.
		if err := windowCtx.Err(); err != nil {
			return feedStop(ctx, err)
		}
		frame, err := t.queue.Get(windowCtx)
		if err != nil {
			return feedStop(ctx, err)
		}
		if frame == nil {
			// End of stream: let in-flight results finish, then close.
			return feedOutcome{}
		}

		resampled := audio.Resample(frame, t.config.SourceSampleRate, t.config.SpeechSampleRate)
		if err := stream.Send(resampled); err != nil {
			return feedOutcome{err: fmt.Errorf("failed to forward audio: %w", err)}
		}
	}
}

// feedStop classifies why the feeder stopped: parent cancellation is fatal,
// a window deadline asks for rotation.
func feedStop(ctx context.Context, err error) feedOutcome {
	if ctx.Err() != nil {
		return feedOutcome{err: ctx.Err()}
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return feedOutcome{rotate: true}
	}
	return feedOutcome{err: err}
}

func (t *Transcriber) handleResult(ctx context.Context, result *repositories.RecognitionResult) error {
	if !result.IsFinal {
		if result.Transcript == "" {
			return nil
		}
		return t.emitter.Emit(entities.NewInterimEnvelope(result.Transcript))
	}

	text := result.Transcript
	if t.config.Diarization && len(result.Words) > 0 {
		text = speakerAnnotated(result.Words)
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return nil
	}

	t.transcript.Append(text)
	if err := t.emitter.Emit(entities.NewTranscriptEnvelope(text)); err != nil {
		return err
	}

	// Dispatch synchronously: the next recognition result is not processed
	// until the advisory round trip completes.
	return t.advisor.Dispatch(ctx, text)
}

// speakerAnnotated merges word-level speaker tags into a single annotated
// string, repeating a speaker header line whenever the tag changes.
func speakerAnnotated(words []repositories.Word) string {
	var b strings.Builder
	current := -1
	for _, w := range words {
		if w.SpeakerTag != current {
			if b.Len() > 0 {
				b.WriteString("\n")
			}
			fmt.Fprintf(&b, "Speaker %d:", w.SpeakerTag)
			current = w.SpeakerTag
		}
		b.WriteString(" ")
		b.WriteString(w.Text)
	}
	return b.String()
}
