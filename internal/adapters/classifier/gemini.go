package classifier

import (
	"context"
	"fmt"

	"golang.org/x/time/rate"
	"google.golang.org/genai"

	"github.com/PabloGalante/vibe-agent/internal/domain"
	"github.com/PabloGalante/vibe-agent/internal/observability"
)

// GeminiModel classifies answers with Gemini on Vertex AI.
type GeminiModel struct {
	client    *genai.Client
	modelName string
	limiter   *rate.Limiter
}

type GeminiConfig struct {
	ProjectID string
	Location  string
	ModelName string
	// RPS caps outgoing requests; zero disables the cap.
	RPS float64
}

// NewGeminiModel creates a Vertex AI backed sentiment model.
func NewGeminiModel(ctx context.Context, cfg GeminiConfig) (*GeminiModel, error) {
	if cfg.ProjectID == "" || cfg.Location == "" {
		return nil, fmt.Errorf("gemini classifier needs a GCP project and location")
	}
	modelName := cfg.ModelName
	if modelName == "" {
		modelName = "gemini-2.5-flash-lite"
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		Project:  cfg.ProjectID,
		Location: cfg.Location,
		Backend:  genai.BackendVertexAI,
	})
	if err != nil {
		return nil, fmt.Errorf("creating Vertex AI client: %w", err)
	}

	return &GeminiModel{
		client:    client,
		modelName: modelName,
		limiter:   newLimiter(cfg.RPS),
	}, nil
}

func (g *GeminiModel) Name() string { return "gemini" }

// Classify implements domain.SentimentModel.
func (g *GeminiModel) Classify(ctx context.Context, text string) (domain.SentimentJudgment, error) {
	if err := waitTurn(ctx, g.limiter); err != nil {
		return domain.SentimentJudgment{}, err
	}

	contents := []*genai.Content{
		genai.NewContentFromText(buildUserPrompt(text), genai.RoleUser),
	}
	cfg := &genai.GenerateContentConfig{
		SystemInstruction: genai.NewContentFromText(systemPrompt, genai.RoleUser),
		Temperature:       genai.Ptr(float32(0)),
		MaxOutputTokens:   64,
		ResponseMIMEType:  "application/json",
		ResponseSchema:    judgmentSchema(),
	}

	res, err := g.client.Models.GenerateContent(ctx, g.modelName, contents, cfg)
	if err != nil {
		return domain.SentimentJudgment{}, fmt.Errorf("%w: vertex generate content: %v", domain.ErrClassifierUnavailable, err)
	}

	j, err := parseJudgment(res.Text())
	if err != nil {
		observability.LoggerFromContext(ctx).Debug("unusable gemini reply", "model", g.modelName, "error", err)
		return domain.SentimentJudgment{}, err
	}
	return j, nil
}

func judgmentSchema() *genai.Schema {
	return &genai.Schema{
		Type: genai.TypeObject,
		Properties: map[string]*genai.Schema{
			"label": {
				Type: genai.TypeString,
				Enum: []string{string(domain.LabelPositive), string(domain.LabelNegative)},
			},
			"score": {Type: genai.TypeNumber},
		},
		Required: []string{"label", "score"},
	}
}
