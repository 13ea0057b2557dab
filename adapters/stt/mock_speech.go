package stt

import (
	"context"
	"io"
	"sync"

	"go.uber.org/zap"

	"github.com/eldanielo/ceassist/domain/repositories"
)

// MockSpeechRecognizer is a placeholder recognizer for local development
// without Google Cloud credentials. Each window echoes a canned final result
// once audio has arrived and the sender closes.
type MockSpeechRecognizer struct {
	logger *zap.Logger
}

// NewMockSpeechRecognizer creates a mock recognizer.
func NewMockSpeechRecognizer(logger *zap.Logger) *MockSpeechRecognizer {
	return &MockSpeechRecognizer{logger: logger}
}

func (m *MockSpeechRecognizer) OpenStream(ctx context.Context, config repositories.RecognitionConfig) (repositories.RecognitionStream, error) {
	m.logger.Info("Opening mock recognition stream",
		zap.Int("sampleRate", config.SampleRate),
		zap.String("language", config.Language),
		zap.Bool("diarization", config.EnableDiarization))

	return &mockRecognitionStream{
		ctx:     ctx,
		results: make(chan *repositories.RecognitionResult, 4),
	}, nil
}

type mockRecognitionStream struct {
	ctx     context.Context
	results chan *repositories.RecognitionResult

	mu            sync.Mutex
	bytesReceived int
	closed        bool
}

func (m *mockRecognitionStream) Send(audio []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.bytesReceived += len(audio)
	return nil
}

func (m *mockRecognitionStream) CloseSend() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return nil
	}
	m.closed = true
	if m.bytesReceived > 0 {
		m.results <- &repositories.RecognitionResult{
			Transcript: "mock transcript",
			IsFinal:    true,
		}
	}
	close(m.results)
	return nil
}

func (m *mockRecognitionStream) Recv() (*repositories.RecognitionResult, error) {
	select {
	case <-m.ctx.Done():
		return nil, m.ctx.Err()
	case res, ok := <-m.results:
		if !ok {
			return nil, io.EOF
		}
		return res, nil
	}
}

func (m *mockRecognitionStream) Close() error {
	return nil
}

var _ repositories.SpeechRecognizer = &MockSpeechRecognizer{}
