package repositories

import "context"

// RecognitionConfig seeds one streaming recognition window.
type RecognitionConfig struct {
	SampleRate        int    `json:"sample_rate"`
	Language          string `json:"language"`
	InterimResults    bool   `json:"interim_results"`
	EnableDiarization bool   `json:"enable_diarization"`
}

// Word is a single recognized word with its diarization speaker tag.
// SpeakerTag is zero when diarization is disabled.
type Word struct {
	Text       string
	SpeakerTag int
}

// RecognitionResult is one hypothesis from the recognition service. Interim
// results are superseded by later results for the same utterance; final
// results are never revised.
type RecognitionResult struct {
	Transcript string
	IsFinal    bool
	Words      []Word
}

// SpeechRecognizer abstracts a streaming speech recognition service.
type SpeechRecognizer interface {
	// OpenStream opens one recognition window. The window is bounded by the
	// provider's session duration limit; callers rotate windows themselves.
	OpenStream(ctx context.Context, config RecognitionConfig) (RecognitionStream, error)
}

// RecognitionStream is one bidirectional recognition window.
type RecognitionStream interface {
	// Send forwards raw audio at the configured sample rate.
	Send(audio []byte) error
	// CloseSend signals that no more audio will arrive. Results still in
	// flight continue to be delivered by Recv.
	CloseSend() error
	// Recv blocks for the next recognition result. It returns io.EOF once
	// the service has delivered everything after CloseSend.
	Recv() (*RecognitionResult, error)
	// Close releases the underlying client resources.
	Close() error
}
