package llm

import (
	"context"
	"fmt"

	"go.uber.org/zap"
	"google.golang.org/genai"

	"github.com/eldanielo/ceassist/domain/entities"
	"github.com/eldanielo/ceassist/domain/repositories"
)

// GeminiAdvisor implements AdvisoryModel on the Gemini API. The underlying
// client is stateless per call, so one advisor is shared across connections;
// each call carries the full ordered conversation.
type GeminiAdvisor struct {
	client *genai.Client
	logger *zap.Logger
	model  string
	config *genai.GenerateContentConfig
}

// NewGeminiAdvisor creates a Gemini-backed advisory model.
func NewGeminiAdvisor(ctx context.Context, apiKey, model string, factCategories []string, logger *zap.Logger) (*GeminiAdvisor, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("gemini API key is required")
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}

	return &GeminiAdvisor{
		client: client,
		logger: logger,
		model:  model,
		config: &genai.GenerateContentConfig{
			Tools: []*genai.Tool{advisoryTools(factCategories)},
		},
	}, nil
}

// Advise sends the conversation to Gemini and returns its reply. A response
// without candidates is an empty reply, not an error.
func (g *GeminiAdvisor) Advise(ctx context.Context, turns []entities.Turn) (*entities.ModelReply, error) {
	contents := turnsToContents(turns)

	response, err := g.client.Models.GenerateContent(ctx, g.model, contents, g.config)
	if err != nil {
		return nil, fmt.Errorf("failed to generate content: %w", err)
	}

	if len(response.Candidates) == 0 || response.Candidates[0].Content == nil {
		g.logger.Info("Gemini returned no candidates")
		return &entities.ModelReply{}, nil
	}

	reply := &entities.ModelReply{}
	for _, part := range response.Candidates[0].Content.Parts {
		if part.Text != "" {
			reply.Text += part.Text
		}
		if part.FunctionCall != nil {
			reply.ToolCalls = append(reply.ToolCalls, entities.ToolCall{
				Name: part.FunctionCall.Name,
				Args: part.FunctionCall.Args,
			})
		}
	}
	return reply, nil
}

// turnsToContents converts the conversation log to Gemini contents. Model
// tool invocations are carried as function-call parts so the model retains
// its own advisory record; turns with no content at all are skipped.
func turnsToContents(turns []entities.Turn) []*genai.Content {
	var contents []*genai.Content
	for _, turn := range turns {
		role := genai.Role(genai.RoleUser)
		if turn.Role == entities.RoleModel {
			role = genai.RoleModel
		}

		var parts []*genai.Part
		if turn.Text != "" {
			parts = append(parts, genai.NewPartFromText(turn.Text))
		}
		for _, call := range turn.ToolCalls {
			parts = append(parts, genai.NewPartFromFunctionCall(call.Name, call.Args))
		}
		if len(parts) == 0 {
			continue
		}
		contents = append(contents, genai.NewContentFromParts(parts, role))
	}
	return contents
}

var _ repositories.AdvisoryModel = &GeminiAdvisor{}
