package gemini

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"unicode/utf8"

	"ai-promoter/domain/apperror"
	"ai-promoter/domain/model"
	"ai-promoter/domain/repository"
	"ai-promoter/infrastructure/configuration"
	"ai-promoter/infrastructure/logger"

	"google.golang.org/api/generativelanguage/v1beta"
	"google.golang.org/api/option"
)

const promptTemplate = `Analyze the following content and extract key information in JSON format:
%s

Return a JSON object with these fields:
- Title: The main title of the content
- Description: A brief description or summary
- Image URL: Any image URLs found in the content
- Publish Date: The publication date if available, or "Not available"
- Key Points: An array of 3-5 main points or takeaways
- Target Audience: Who this content is intended for
- Tone: The overall tone of the content (e.g., professional, casual, technical)

IMPORTANT: Your response must be a valid JSON object. Do not include any additional text or explanation.`

// Extractor asks Gemini for the fixed metadata schema.
type Extractor struct {
	service       *generativelanguage.Service
	model         string
	temperature   float64
	maxTokens     int64
	maxInputChars int
}

func NewExtractor(ctx context.Context, cfg configuration.Gemini, opts ...option.ClientOption) (repository.IContentExtractor, error) {
	if cfg.APIKey != "" {
		opts = append([]option.ClientOption{option.WithAPIKey(cfg.APIKey)}, opts...)
	}
	if cfg.Endpoint != "" {
		opts = append(opts, option.WithEndpoint(cfg.Endpoint))
	}
	service, err := generativelanguage.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini service: %w", err)
	}
	return &Extractor{
		service:       service,
		model:         cfg.Model,
		temperature:   cfg.Temperature,
		maxTokens:     cfg.MaxOutputTokens,
		maxInputChars: cfg.MaxInputChars,
	}, nil
}

func (e *Extractor) Extract(ctx context.Context, text string) (*model.ExtractedContent, string, error) {
	const op = "gemini.extract"
	text = clipRunes(text, e.maxInputChars)
	req := &generativelanguage.GenerateContentRequest{
		Contents: []*generativelanguage.Content{{
			Role:  "user",
			Parts: []*generativelanguage.Part{{Text: fmt.Sprintf(promptTemplate, text)}},
		}},
		GenerationConfig: &generativelanguage.GenerationConfig{
			Temperature:     e.temperature,
			MaxOutputTokens: e.maxTokens,
		},
	}
	resp, err := e.service.Models.GenerateContent("models/"+e.model, req).Context(ctx).Do()
	if err != nil {
		return nil, "", apperror.Wrap(apperror.ExtractionError, op, err)
	}

	var sb strings.Builder
	for _, c := range resp.Candidates {
		if c == nil || c.Content == nil {
			continue
		}
		for _, p := range c.Content.Parts {
			if p != nil {
				sb.WriteString(p.Text)
			}
		}
		break
	}
	raw := sb.String()
	info, err := ParseExtraction(raw)
	if err != nil {
		logger.GetLogger().WithField("raw", raw).WithError(err).Error("Failed to parse Gemini response as JSON")
		return nil, raw, apperror.Wrapf(apperror.ExtractionError, op, err, "failed to parse content information")
	}
	return info, raw, nil
}

// ParseExtraction strips markdown code fences and decodes the JSON object.
func ParseExtraction(raw string) (*model.ExtractedContent, error) {
	s := stripFences(strings.TrimSpace(raw))
	if s == "" {
		return nil, fmt.Errorf("empty model response")
	}
	var info model.ExtractedContent
	if err := json.Unmarshal([]byte(s), &info); err != nil {
		return nil, err
	}
	return &info, nil
}

func stripFences(s string) string {
	if i := strings.Index(s, "```json"); i >= 0 {
		s = s[i+len("```json"):]
		if j := strings.Index(s, "```"); j >= 0 {
			s = s[:j]
		}
		return strings.TrimSpace(s)
	}
	if i := strings.Index(s, "```"); i >= 0 {
		s = s[i+3:]
		if j := strings.Index(s, "```"); j >= 0 {
			s = s[:j]
		}
	}
	return strings.TrimSpace(s)
}

// clipRunes keeps at most limit characters, never splitting a multi-byte rune. limit <= 0 keeps everything.
func clipRunes(text string, limit int) string {
	if limit <= 0 || utf8.RuneCountInString(text) <= limit {
		return text
	}
	return string([]rune(text)[:limit])
}
