package stt

import (
	"context"
	"fmt"
	"io"

	speech "cloud.google.com/go/speech/apiv1"
	"cloud.google.com/go/speech/apiv1/speechpb"

	"github.com/eldanielo/ceassist/domain/repositories"
)

// GoogleSpeechRecognizer implements SpeechRecognizer on Google Cloud
// Speech-to-Text streaming recognition.
type GoogleSpeechRecognizer struct{}

// NewGoogleSpeechRecognizer creates a Google Cloud recognizer. Credentials
// come from the application-default environment.
func NewGoogleSpeechRecognizer() *GoogleSpeechRecognizer {
	return &GoogleSpeechRecognizer{}
}

// OpenStream opens one streaming recognition window. The gRPC client lives
// and dies with the window, so rotated windows never share a half-open call.
func (g *GoogleSpeechRecognizer) OpenStream(ctx context.Context, config repositories.RecognitionConfig) (repositories.RecognitionStream, error) {
	client, err := speech.NewClient(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to create speech client: %w", err)
	}

	stream, err := client.StreamingRecognize(ctx)
	if err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to create streaming recognize: %w", err)
	}

	recognitionConfig := &speechpb.RecognitionConfig{
		Encoding:        speechpb.RecognitionConfig_LINEAR16,
		SampleRateHertz: int32(config.SampleRate),
		LanguageCode:    config.Language,
	}
	if config.EnableDiarization {
		recognitionConfig.DiarizationConfig = &speechpb.SpeakerDiarizationConfig{
			EnableSpeakerDiarization: true,
		}
	}

	if err := stream.Send(&speechpb.StreamingRecognizeRequest{
		StreamingRequest: &speechpb.StreamingRecognizeRequest_StreamingConfig{
			StreamingConfig: &speechpb.StreamingRecognitionConfig{
				Config:         recognitionConfig,
				InterimResults: config.InterimResults,
			},
		},
	}); err != nil {
		stream.CloseSend()
		client.Close()
		return nil, fmt.Errorf("failed to send streaming config: %w", err)
	}

	return &googleRecognitionStream{client: client, stream: stream}, nil
}

type googleRecognitionStream struct {
	client *speech.Client
	stream speechpb.Speech_StreamingRecognizeClient
}

func (g *googleRecognitionStream) Send(audio []byte) error {
	if len(audio) == 0 {
		return nil
	}
	if err := g.stream.Send(&speechpb.StreamingRecognizeRequest{
		StreamingRequest: &speechpb.StreamingRecognizeRequest_AudioContent{
			AudioContent: audio,
		},
	}); err != nil {
		return fmt.Errorf("failed to send audio data: %w", err)
	}
	return nil
}

func (g *googleRecognitionStream) CloseSend() error {
	return g.stream.CloseSend()
}

// Recv blocks for the next response carrying a usable alternative. Responses
// without results are skipped; io.EOF passes through once the service has
// drained after CloseSend.
func (g *googleRecognitionStream) Recv() (*repositories.RecognitionResult, error) {
	for {
		resp, err := g.stream.Recv()
		if err == io.EOF {
			return nil, io.EOF
		}
		if err != nil {
			return nil, fmt.Errorf("failed to receive response: %w", err)
		}

		if len(resp.Results) == 0 || len(resp.Results[0].Alternatives) == 0 {
			continue
		}

		result := resp.Results[0]
		alt := result.Alternatives[0]
		out := &repositories.RecognitionResult{
			Transcript: alt.Transcript,
			IsFinal:    result.IsFinal,
		}
		for _, w := range alt.Words {
			out.Words = append(out.Words, repositories.Word{
				Text:       w.Word,
				SpeakerTag: int(w.SpeakerTag),
			})
		}
		return out, nil
	}
}

func (g *googleRecognitionStream) Close() error {
	return g.client.Close()
}
