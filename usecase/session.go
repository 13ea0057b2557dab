package usecase

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/eldanielo/ceassist/domain/entities"
	"github.com/eldanielo/ceassist/domain/repositories"
	"github.com/eldanielo/ceassist/internal/audio"
)

// Conn is the duplex client connection as the session sees it. ReadFrame
// blocks for the next inbound audio frame and fails once the client
// disconnects.
type Conn interface {
	Emitter
	ReadFrame() ([]byte, error)
	Close() error
}

// SessionConfig wires one connection's pipeline.
type SessionConfig struct {
	Transcriber TranscriberConfig
	// QueueCapacity bounds the ingest queue; zero means unbounded.
	QueueCapacity int
	// SystemInstruction and Acknowledgment seed the conversation.
	SystemInstruction string
	Acknowledgment    string
	// PersistTimeout bounds the teardown store call.
	PersistTimeout time.Duration
}

// Session wires ingest, transcription, and advisory dispatch together for
// one connection. All state below is connection-scoped and released when Run
// returns.
type Session struct {
	conn         Conn
	identity     entities.Identity
	store        repositories.TranscriptStore
	queue        *audio.Queue
	conversation *entities.Conversation
	transcript   *entities.SessionTranscript
	transcriber  *Transcriber
	config       SessionConfig
	logger       *zap.Logger
}

// NewSession builds the per-connection pipeline: ingest queue, conversation
// log seeded with the system instruction, transcript accumulator,
// dispatcher, and transcription loop.
func NewSession(
	conn Conn,
	identity entities.Identity,
	recognizer repositories.SpeechRecognizer,
	model repositories.AdvisoryModel,
	store repositories.TranscriptStore,
	config SessionConfig,
	logger *zap.Logger,
) *Session {
	queue := audio.NewQueue(config.QueueCapacity)
	conversation := entities.NewConversation(config.SystemInstruction, config.Acknowledgment)
	transcript := &entities.SessionTranscript{}
	dispatcher := NewDispatcher(model, conversation, conn, logger)
	transcriber := NewTranscriber(recognizer, queue, conn, dispatcher, transcript, config.Transcriber, logger)

	return &Session{
		conn:         conn,
		identity:     identity,
		store:        store,
		queue:        queue,
		conversation: conversation,
		transcript:   transcript,
		transcriber:  transcriber,
		config:       config,
		logger:       logger,
	}
}

// Run races the ingest loop against the transcription loop. Normally the
// ingest loop finishes first, on client disconnect, and signals the
// transcription loop through the queue sentinel. A transcription failure
// closes the connection to unblock ingest. Either way the finished
// transcript is handed to the store before Run returns.
func (s *Session) Run(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	ingestDone := make(chan struct{})
	go func() {
		defer close(ingestDone)
		s.ingest()
	}()

	err := s.transcriber.Run(ctx)
	if err != nil {
		s.logger.Error("Transcription loop failed", zap.Error(err))
	}

	// Teardown: closing the connection unblocks the ingest loop whether the
	// transcription loop failed or was cancelled.
	s.conn.Close()
	<-ingestDone

	s.persist()
	return err
}

func (s *Session) ingest() {
	for {
		frame, err := s.conn.ReadFrame()
		if err != nil {
			s.logger.Info("Client stream ended, signaling transcription loop",
				zap.Error(err))
			s.queue.Put(nil)
			return
		}
		s.queue.Put(frame)
	}
}

// persist hands the transcript to the store. Failures are logged, never
// propagated: the connection is already closed.
func (s *Session) persist() {
	timeout := s.config.PersistTimeout
	if timeout == 0 {
		timeout = 30 * time.Second
	}
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	if err := s.store.Store(ctx, s.identity, s.transcript.Lines()); err != nil {
		s.logger.Error("Failed to persist transcript",
			zap.String("user", s.identity.Email),
			zap.Error(err))
		return
	}
	s.logger.Info("Session transcript persisted",
		zap.String("user", s.identity.Email),
		zap.Int("lines", s.transcript.Len()))
}
