package llm

import (
	"context"
	"strings"

	"github.com/eldanielo/ceassist/domain/entities"
	"github.com/eldanielo/ceassist/domain/repositories"
)

// MockAdvisor is a placeholder advisory model for local development. It tips
// on every transcript mentioning a cloud keyword and stays silent otherwise.
type MockAdvisor struct{}

// NewMockAdvisor creates a mock advisory model.
func NewMockAdvisor() repositories.AdvisoryModel {
	return &MockAdvisor{}
}

// Advise implements repositories.AdvisoryModel.
func (m *MockAdvisor) Advise(ctx context.Context, turns []entities.Turn) (*entities.ModelReply, error) {
	if len(turns) == 0 {
		return &entities.ModelReply{}, nil
	}

	last := turns[len(turns)-1].Text
	if !strings.Contains(strings.ToLower(last), "aws") {
		return &entities.ModelReply{}, nil
	}

	return &entities.ModelReply{
		ToolCalls: []entities.ToolCall{
			{
				Name: entities.ToolExtractFact,
				Args: map[string]interface{}{
					"fact":        "100% AWS",
					"category":    "infrastructure",
					"gcp_service": "Compute Engine",
				},
			},
			{
				Name: entities.ToolProvideTip,
				Args: map[string]interface{}{
					"short_tip": "Ask about migration timeline",
					"long_tip":  "Ask when the customer plans to re-evaluate their cloud footprint and position a migration assessment.",
				},
			},
		},
	}, nil
}
