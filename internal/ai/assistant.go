package ai

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/apogee-blog/apogee/internal/config"
)

// Tones supported by ChangeTone. Unknown tones fall back to "professional".
var toneDescriptions = map[string]string{
	"professional": "formal and professional",
	"casual":       "casual and conversational",
	"technical":    "technical and precise",
	"friendly":     "warm and friendly",
	"academic":     "scholarly and academic",
}

// Content longer than this is truncated before analysis prompts.
const analysisContentLimit = 2000

// Tag is a suggested post tag with the model's confidence in it.
type Tag struct {
	Tag        string  `json:"tag"`
	Confidence float64 `json:"confidence"`
}

type CategoryResult struct {
	Category             string   `json:"category"`
	Confidence           float64  `json:"confidence"`
	AlternativeCategories []string `json:"alternativeCategories"`
}

type SpamResult struct {
	IsSpam     bool    `json:"isSpam"`
	Confidence float64 `json:"confidence"`
	Reason     string  `json:"reason"`
}

type ToxicityResult struct {
	IsToxic    bool     `json:"isToxic"`
	Severity   string   `json:"severity"`
	Confidence float64  `json:"confidence"`
	Categories []string `json:"categories"`
	Action     string   `json:"action"`
}

var categories = []string{
	"Technology", "Programming", "Design", "Business", "Science",
	"Health", "Travel", "Food", "Lifestyle", "Education",
	"Entertainment", "Sports", "Politics", "Opinion", "Tutorial",
}

// Assistant exposes the editor's writing tools on top of a Provider.
type Assistant struct {
	provider Provider
	maxTags  int
}

func NewAssistant(provider Provider, cfg *config.AIConfig) *Assistant {
	maxTags := 5
	if cfg != nil && cfg.MaxTags > 0 {
		maxTags = cfg.MaxTags
	}
	return &Assistant{provider: provider, maxTags: maxTags}
}

// NewProviderFromConfig builds the configured provider. API keys are read
// from the environment, never from the config file.
func NewProviderFromConfig(cfg *config.AIConfig) (Provider, error) {
	switch cfg.Provider {
	case "openai", "":
		return NewOpenAIProvider(os.Getenv("OPENAI_API_KEY"), cfg.OpenAIModel), nil
	case "anthropic":
		return NewAnthropicProvider(os.Getenv("ANTHROPIC_API_KEY"), cfg.AnthropicModel), nil
	case "gemini":
		return NewGeminiProvider(os.Getenv("GEMINI_API_KEY"), cfg.GeminiModel), nil
	default:
		return nil, fmt.Errorf("unknown ai provider %q", cfg.Provider)
	}
}

func (a *Assistant) ImproveWriting(ctx context.Context, content string) (string, error) {
	prompt := "Improve the following text for clarity, flow, and engagement while preserving its meaning and voice. Return only the improved text.\n\n" + content
	return a.provider.Complete(ctx, prompt, CompleteOptions{})
}

func (a *Assistant) MakeConcise(ctx context.Context, content string) (string, error) {
	prompt := "Rewrite the following text to be more concise without losing key information. Return only the rewritten text.\n\n" + content
	return a.provider.Complete(ctx, prompt, CompleteOptions{})
}

func (a *Assistant) FixGrammar(ctx context.Context, content string) (string, error) {
	prompt := "Fix all grammar, spelling, and punctuation errors in the following text. Change nothing else. Return only the corrected text.\n\n" + content
	return a.provider.Complete(ctx, prompt, CompleteOptions{})
}

func (a *Assistant) ChangeTone(ctx context.Context, content, tone string) (string, error) {
	desc, ok := toneDescriptions[tone]
	if !ok {
		desc = toneDescriptions["professional"]
	}
	prompt := fmt.Sprintf("Rewrite the following text in a %s tone while preserving its meaning. Return only the rewritten text.\n\n%s", desc, content)
	return a.provider.Complete(ctx, prompt, CompleteOptions{})
}

func (a *Assistant) Summarize(ctx context.Context, content string) (string, error) {
	prompt := "Write a compelling 2-3 sentence summary of the following post, suitable as a preview blurb. Return only the summary.\n\n" + content
	return a.provider.Complete(ctx, prompt, CompleteOptions{MaxTokens: 300})
}

// GenerateTags asks the model for tag suggestions with confidence scores.
// Results are sorted by confidence and capped at the configured maximum.
func (a *Assistant) GenerateTags(ctx context.Context, title, content string) ([]Tag, error) {
	prompt := fmt.Sprintf(`Suggest up to %d tags for the following blog post. Respond with a JSON array of objects, each with a "tag" string (lowercase, hyphenated) and a "confidence" number between 0 and 1. Respond with the JSON array only.

Title: %s

%s`, a.maxTags, title, truncate(content, analysisContentLimit))

	raw, err := a.provider.Complete(ctx, prompt, CompleteOptions{Temperature: 0.5})
	if err != nil {
		return nil, err
	}

	var tags []Tag
	if err := json.Unmarshal(extractJSON(raw, '[', ']'), &tags); err != nil {
		return nil, fmt.Errorf("error parsing tag suggestions: %w", err)
	}

	sort.SliceStable(tags, func(i, j int) bool { return tags[i].Confidence > tags[j].Confidence })
	if len(tags) > a.maxTags {
		tags = tags[:a.maxTags]
	}
	return tags, nil
}

func (a *Assistant) DetectCategory(ctx context.Context, title, content string) (CategoryResult, error) {
	prompt := fmt.Sprintf(`Classify the following blog post into exactly one of these categories: %s. Respond with a JSON object with keys "category" (string), "confidence" (number 0-1), and "alternativeCategories" (array of up to 2 strings). Respond with the JSON object only.

Title: %s

%s`, strings.Join(categories, ", "), title, truncate(content, analysisContentLimit))

	raw, err := a.provider.Complete(ctx, prompt, CompleteOptions{Temperature: 0.3})
	if err != nil {
		return CategoryResult{}, err
	}

	var result CategoryResult
	if err := json.Unmarshal(extractJSON(raw, '{', '}'), &result); err != nil {
		return CategoryResult{}, fmt.Errorf("error parsing category result: %w", err)
	}
	return result, nil
}

// DetectSpam errs on the side of not-spam: a parse failure yields a clean
// result rather than blocking a legitimate post.
func (a *Assistant) DetectSpam(ctx context.Context, content string) (SpamResult, error) {
	prompt := `Analyze the following content for spam (promotional link farms, scams, keyword stuffing, gibberish). Respond with a JSON object with keys "isSpam" (boolean), "confidence" (number 0-1), and "reason" (short string). Respond with the JSON object only.

` + truncate(content, analysisContentLimit)

	raw, err := a.provider.Complete(ctx, prompt, CompleteOptions{Temperature: 0.2})
	if err != nil {
		return SpamResult{}, err
	}

	var result SpamResult
	if err := json.Unmarshal(extractJSON(raw, '{', '}'), &result); err != nil {
		return SpamResult{Reason: "analysis unavailable"}, nil
	}
	return result, nil
}

func (a *Assistant) DetectToxicity(ctx context.Context, content string) (ToxicityResult, error) {
	prompt := `Analyze the following content for toxicity (harassment, hate speech, threats, explicit content). Respond with a JSON object with keys "isToxic" (boolean), "severity" (one of "none", "low", "medium", "high"), "confidence" (number 0-1), "categories" (array of strings), and "action" (one of "allow", "review", "block"). Respond with the JSON object only.

` + truncate(content, analysisContentLimit)

	raw, err := a.provider.Complete(ctx, prompt, CompleteOptions{Temperature: 0.2})
	if err != nil {
		return ToxicityResult{}, err
	}

	var result ToxicityResult
	if err := json.Unmarshal(extractJSON(raw, '{', '}'), &result); err != nil {
		return ToxicityResult{Severity: "none", Action: "allow"}, nil
	}
	if result.Severity == "" {
		result.Severity = "none"
	}
	if result.Action == "" {
		result.Action = "allow"
	}
	return result, nil
}

// extractJSON pulls the first balanced JSON value delimited by open/close out
// of a model response, tolerating markdown fences and surrounding prose.
func extractJSON(raw string, opener, closer byte) []byte {
	start := strings.IndexByte(raw, opener)
	end := strings.LastIndexByte(raw, closer)
	if start < 0 || end < start {
		return []byte(raw)
	}
	return []byte(raw[start : end+1])
}

func truncate(s string, limit int) string {
	if len(s) <= limit {
		return s
	}
	return s[:limit]
}
