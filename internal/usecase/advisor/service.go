package advisor

import (
	"context"
	"fmt"
	"log/slog"

	"google.golang.org/genai"

	"github.com/BthnIsler/finoria/internal/domain"
)

const defaultModel = "gemini-2.5-flash"

const analysisSystemPrompt = `You are a concise financial analyst.
Answer with short sections: current market situation, short-term
outlook, 6-12 month outlook, and a buy/hold/sell view with a one-line
rationale. Two sentences per section at most. This is commentary, not
personal investment advice.`

const chatSystemPrompt = `You are a portfolio assistant. The user's
portfolio is listed below; use it to give specific, personalized
answers. Keep replies short (a few sentences) and concrete.

%s`

// Message is one turn of an ongoing advisor conversation
type Message struct {
	Role    string // "user" or "model"
	Content string
}

// Service produces AI commentary about single assets and answers
// portfolio chat, through a hosted LLM
type Service struct {
	client *genai.Client
	model  string
	logger *slog.Logger
}

// NewService creates a new advisor over the given LLM client.
// model may be empty to use the default.
func NewService(client *genai.Client, model string, logger *slog.Logger) *Service {
	if model == "" {
		model = defaultModel
	}
	return &Service{client: client, model: model, logger: logger}
}

// Enabled reports whether an LLM client is configured
func (s *Service) Enabled() bool { return s.client != nil }

// Analyze asks the LLM for a short commentary on one holding
func (s *Service) Analyze(ctx context.Context, h *domain.Holding) (string, error) {
	if s.client == nil {
		return "", fmt.Errorf("advisor is not configured")
	}

	question := fmt.Sprintf("Give a short analysis of %q (%s", h.Name, categoryLabel(h.Category))
	if h.ProviderID != "" {
		question += fmt.Sprintf(", symbol %s", h.ProviderID)
	}
	question += ")."

	config := &genai.GenerateContentConfig{
		SystemInstruction: &genai.Content{Parts: []*genai.Part{{Text: analysisSystemPrompt}}},
	}
	chat, err := s.client.Chats.Create(ctx, s.model, config, nil)
	if err != nil {
		return "", fmt.Errorf("failed to start analysis chat: %w", err)
	}
	return s.send(ctx, chat, question)
}

// Chat continues a portfolio conversation. history holds the previous
// turns; userMessage is the new user turn; portfolioContext is the
// rendered portfolio summary injected into the system prompt.
func (s *Service) Chat(ctx context.Context, history []Message, userMessage, portfolioContext string) (string, error) {
	if s.client == nil {
		return "", fmt.Errorf("advisor is not configured")
	}

	contents := make([]*genai.Content, 0, len(history))
	for _, m := range history {
		contents = append(contents, &genai.Content{
			Role:  m.Role,
			Parts: []*genai.Part{{Text: m.Content}},
		})
	}

	config := &genai.GenerateContentConfig{
		SystemInstruction: &genai.Content{Parts: []*genai.Part{{
			Text: fmt.Sprintf(chatSystemPrompt, portfolioContext),
		}}},
	}
	chat, err := s.client.Chats.Create(ctx, s.model, config, contents)
	if err != nil {
		return "", fmt.Errorf("failed to start portfolio chat: %w", err)
	}
	return s.send(ctx, chat, userMessage)
}

// send delivers one message and unwraps the first candidate's text
func (s *Service) send(ctx context.Context, chat *genai.Chat, message string) (string, error) {
	resp, err := chat.Send(ctx, &genai.Part{Text: message})
	if err != nil {
		return "", fmt.Errorf("advisor request failed: %w", err)
	}
	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil || len(resp.Candidates[0].Content.Parts) == 0 {
		return "", fmt.Errorf("advisor returned no response")
	}
	return resp.Candidates[0].Content.Parts[0].Text, nil
}

func categoryLabel(c domain.Category) string {
	switch c {
	case domain.CategoryCrypto:
		return "cryptocurrency"
	case domain.CategoryGold:
		return "gold"
	case domain.CategoryPreciousMetal:
		return "precious metal"
	case domain.CategoryForex:
		return "foreign currency"
	case domain.CategoryStock:
		return "stock"
	case domain.CategoryRealEstate:
		return "real estate"
	case domain.CategorySavings:
		return "savings"
	default:
		return "investment"
	}
}
