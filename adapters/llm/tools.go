package llm

import (
	"google.golang.org/genai"

	"github.com/eldanielo/ceassist/domain/entities"
)

// SystemPrompt seeds every conversation as the initial user turn.
const SystemPrompt = `
You are a highly advanced AI assistant for a Google Cloud Customer Engineer (CE).
You are listening in on a live sales call. Your purpose is to provide real-time support.
For each user transcript you receive, you must use the provided tools to respond.

Your primary goal is to help the CE. Therefore, you should always look for opportunities to ` + "`provide_tip`" + `.
- ` + "`answer_question`" + `: If the customer asks a direct question, provide a short, keyword-based summary of the question, a short, keyword-based answer, and a longer, more detailed answer.
- ` + "`provide_tip`" + `: If there is an opportunity for the CE to ask a question or position a product. This is your most important function. Tips should be short and keyword-based, but you should also provide a longer, more detailed version.
- ` + "`extract_fact`" + `: If a key fact is mentioned (a number, technology, person, or goal), categorize it. If the category is 'infrastructure', provide the equivalent GCP service if one exists. Facts should be concise and to the point. For example, instead of "The entire infrastructure is on AWS", say "100% AWS". Instead of "Their application is built with React", say "React". Facts should also usually trigger provide_tip.
If you have no valuable information to provide, do not call any tool. Do not respond outside of the tools.
`

// Acknowledgment is the seeded model reply to the system prompt.
const Acknowledgment = "Understood. I am ready to assist."

// advisoryTools declares the three callable tools. The fact category list is
// configurable, so the declaration is built per adapter instance.
func advisoryTools(factCategories []string) *genai.Tool {
	return &genai.Tool{
		FunctionDeclarations: []*genai.FunctionDeclaration{
			{
				Name:        entities.ToolExtractFact,
				Description: "Extract a key fact from the transcript.",
				Parameters: &genai.Schema{
					Type: genai.TypeObject,
					Properties: map[string]*genai.Schema{
						"fact": {
							Type:        genai.TypeString,
							Description: "The key fact, such as a number, technology, person, or goal. Should be keywords only.",
						},
						"category": {
							Type:        genai.TypeString,
							Description: "The category of the fact. Use 'infrastructure' for infrastructure components (e.g., 'EC2', 'S3', 'VPC').",
							Enum:        factCategories,
						},
						"gcp_service": {
							Type:        genai.TypeString,
							Description: "The equivalent GCP service for an infrastructure fact. Only provide if the category is 'infrastructure' and a clear equivalent exists.",
						},
					},
					Required: []string{"fact", "category"},
				},
			},
			{
				Name:        entities.ToolProvideTip,
				Description: "Provide a proactive tip for the Customer Engineer.",
				Parameters: &genai.Schema{
					Type: genai.TypeObject,
					Properties: map[string]*genai.Schema{
						"short_tip": {
							Type:        genai.TypeString,
							Description: "A short, keyword-based version of the tip.",
						},
						"long_tip": {
							Type:        genai.TypeString,
							Description: "A longer, more detailed version of the tip.",
						},
					},
					Required: []string{"short_tip", "long_tip"},
				},
			},
			{
				Name:        entities.ToolAnswerQuestion,
				Description: "Answer a direct question from the customer.",
				Parameters: &genai.Schema{
					Type: genai.TypeObject,
					Properties: map[string]*genai.Schema{
						"question": {
							Type:        genai.TypeString,
							Description: "A short, keyword-based summary of the customer's question.",
						},
						"short_answer": {
							Type:        genai.TypeString,
							Description: "A short, keyword-based answer to the customer's question.",
						},
						"long_answer": {
							Type:        genai.TypeString,
							Description: "A longer, more detailed answer to the customer's question.",
						},
					},
					Required: []string{"question", "short_answer", "long_answer"},
				},
			},
		},
	}
}
