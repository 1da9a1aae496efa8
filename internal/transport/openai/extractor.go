package openai

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	openai "github.com/sashabaranov/go-openai"
	"go.uber.org/zap"

	"github.com/ppetroskevicius/fastctl-search/internal/domain"
	"github.com/ppetroskevicius/fastctl-search/internal/domain/query"
	"github.com/ppetroskevicius/fastctl-search/internal/metrics"
)

// extractionSystemPrompt instructs the model to parse a rental query into the
// structured element schema. Prices are JPY, walk times are minutes, wards use
// the "-ku" suffix. Fields the query does not mention stay null.
const extractionSystemPrompt = `You are a Tokyo rental real estate search assistant. Parse the user's query into structured elements for filtering listings. Return exactly one JSON object with these fields, using null for anything the query does not mention:

- semantic_text: Short phrase capturing the descriptive search intent (string, e.g. "modern bright apartment near a park"). Always set this.
- max_monthly_price: Maximum total monthly price in JPY (integer).
- max_management_fee: Maximum monthly management fee in JPY (integer).
- max_guarantor_service: Maximum guarantor service fee in JPY (integer).
- max_fire_insurance: Maximum fire insurance fee in JPY (integer).
- min_area_m2: Minimum floor area in square meters (number).
- min_year_built: Minimum construction year (integer). If the user asks for a "new" or "newly built" place, use the current year minus 5.
- min_floor: Minimum floor number (integer, e.g. 2 for "2F or higher").
- max_floor: Maximum floor number (integer).
- contract_length: Contract length as stated (string, e.g. "2 years").
- ward: Tokyo ward with the -ku suffix (string, e.g. "Shibuya-ku").
- unit_features: List of in-unit features mentioned (e.g. ["Balcony", "Autolock"]).
- building_features: List of building features mentioned (e.g. ["Elevator", "Bicycle Parking"]).
- pet_friendly: true if pets must be allowed, false if the user wants no-pet buildings (boolean).
- japanese_required: Whether Japanese language ability is required (boolean).
- station_name: Station name without the word "station" (string, e.g. "Nakameguro").
- max_walk_time: Maximum walk time to that station in minutes (integer).
- train_line: Train line name (string, e.g. "Yamanote").

Only extract a field when the query states it with confidence. Never guess numeric values. Reply with the JSON object only, no prose.`

// Extractor turns free-text queries into structured elements via chat
// completion in JSON mode.
type Extractor struct {
	client *openai.Client
	model  string
	logger *zap.Logger
}

// ExtractorConfig holds the extraction model settings.
type ExtractorConfig struct {
	APIKey  string
	BaseURL string
	Model   string
	Logger  *zap.Logger
}

// NewExtractor creates an OpenAI-compatible query extractor.
func NewExtractor(cfg *ExtractorConfig) *Extractor {
	clientCfg := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientCfg.BaseURL = cfg.BaseURL
	}

	return &Extractor{
		client: openai.NewClientWithConfig(clientCfg),
		model:  cfg.Model,
		logger: cfg.Logger,
	}
}

// elementsDTO is the wire schema the model replies with. Pointer fields keep
// "not mentioned" distinct from zero.
type elementsDTO struct {
	SemanticText        string   `json:"semantic_text"`
	MaxMonthlyPrice     *int     `json:"max_monthly_price"`
	MaxManagementFee    *int     `json:"max_management_fee"`
	MaxGuarantorService *int     `json:"max_guarantor_service"`
	MaxFireInsurance    *int     `json:"max_fire_insurance"`
	MinAreaM2           *float64 `json:"min_area_m2"`
	MinYearBuilt        *int     `json:"min_year_built"`
	MinFloor            *int     `json:"min_floor"`
	MaxFloor            *int     `json:"max_floor"`
	ContractLength      *string  `json:"contract_length"`
	Ward                *string  `json:"ward"`
	UnitFeatures        []string `json:"unit_features"`
	BuildingFeatures    []string `json:"building_features"`
	PetFriendly         *bool    `json:"pet_friendly"`
	JapaneseRequired    *bool    `json:"japanese_required"`
	StationName         *string  `json:"station_name"`
	MaxWalkTime         *int     `json:"max_walk_time"`
	TrainLine           *string  `json:"train_line"`
}

// Extract implements interpret.Extractor. A non-empty correction is appended
// as an extra system message on retry after malformed output.
func (e *Extractor) Extract(ctx context.Context, rawQuery, correction string) (query.Elements, error) {
	messages := []openai.ChatCompletionMessage{
		{Role: openai.ChatMessageRoleSystem, Content: extractionSystemPrompt},
		{Role: openai.ChatMessageRoleUser, Content: rawQuery},
	}
	if correction != "" {
		messages = append(messages, openai.ChatCompletionMessage{
			Role:    openai.ChatMessageRoleSystem,
			Content: correction,
		})
	}

	start := time.Now()

	resp, err := e.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:    e.model,
		Messages: messages,
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		},
		Temperature: 0,
	})

	duration := time.Since(start)

	if err != nil {
		metrics.ExtractionRequestsTotal.WithLabelValues(e.model, "error").Inc()
		return query.Elements{}, fmt.Errorf("%w: chat completion: %w", domain.ErrExtraction, err)
	}

	if len(resp.Choices) == 0 {
		metrics.ExtractionRequestsTotal.WithLabelValues(e.model, "malformed").Inc()
		return query.Elements{}, fmt.Errorf("%w: empty completion", domain.ErrMalformedExtraction)
	}

	content := stripCodeFences(resp.Choices[0].Message.Content)

	var dto elementsDTO
	if err := json.Unmarshal([]byte(content), &dto); err != nil {
		metrics.ExtractionRequestsTotal.WithLabelValues(e.model, "malformed").Inc()
		e.logger.Debug("Unparseable extraction output",
			zap.String("model", e.model),
			zap.String("content", content),
		)
		return query.Elements{}, fmt.Errorf("%w: decode completion: %w", domain.ErrMalformedExtraction, err)
	}

	metrics.ExtractionRequestsTotal.WithLabelValues(e.model, "success").Inc()
	metrics.ExtractionRequestDuration.WithLabelValues(e.model).Observe(duration.Seconds())

	return query.Elements{
		SemanticText:        dto.SemanticText,
		MaxMonthlyPrice:     dto.MaxMonthlyPrice,
		MaxManagementFee:    dto.MaxManagementFee,
		MaxGuarantorService: dto.MaxGuarantorService,
		MaxFireInsurance:    dto.MaxFireInsurance,
		MinAreaM2:           dto.MinAreaM2,
		MinYearBuilt:        dto.MinYearBuilt,
		MinFloor:            dto.MinFloor,
		MaxFloor:            dto.MaxFloor,
		ContractLength:      dto.ContractLength,
		Ward:                dto.Ward,
		UnitFeatures:        dto.UnitFeatures,
		BuildingFeatures:    dto.BuildingFeatures,
		PetFriendly:         dto.PetFriendly,
		JapaneseRequired:    dto.JapaneseRequired,
		StationName:         dto.StationName,
		MaxWalkTime:         dto.MaxWalkTime,
		TrainLine:           dto.TrainLine,
	}, nil
}

// stripCodeFences removes a surrounding markdown code fence if the model
// ignored the JSON-only instruction.
func stripCodeFences(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}
