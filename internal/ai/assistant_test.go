package ai

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeProvider struct {
	response string
	err      error
	prompts  []string
	opts     []CompleteOptions
}

func (f *fakeProvider) Name() string { return "fake" }

func (f *fakeProvider) Complete(_ context.Context, prompt string, opts CompleteOptions) (string, error) {
	f.prompts = append(f.prompts, prompt)
	f.opts = append(f.opts, opts)
	if f.err != nil {
		return "", f.err
	}
	return f.response, nil
}

func TestChangeToneUnknownToneFallsBack(t *testing.T) {
	provider := &fakeProvider{response: "rewritten"}
	assistant := NewAssistant(provider, nil)

	result, err := assistant.ChangeTone(context.Background(), "hello", "sarcastic")
	require.NoError(t, err)
	assert.Equal(t, "rewritten", result)
	assert.Contains(t, provider.prompts[0], "formal and professional")
}

func TestSummarizeCapsTokens(t *testing.T) {
	provider := &fakeProvider{response: "a summary"}
	assistant := NewAssistant(provider, nil)

	_, err := assistant.Summarize(context.Background(), "long post body")
	require.NoError(t, err)
	assert.Equal(t, 300, provider.opts[0].MaxTokens)
}

func TestGenerateTagsParsesFencedJSON(t *testing.T) {
	provider := &fakeProvider{response: "```json\n[{\"tag\":\"go\",\"confidence\":0.9},{\"tag\":\"testing\",\"confidence\":0.7}]\n```"}
	assistant := NewAssistant(provider, nil)

	tags, err := assistant.GenerateTags(context.Background(), "Title", "content")
	require.NoError(t, err)
	require.Len(t, tags, 2)
	assert.Equal(t, "go", tags[0].Tag)
	assert.InDelta(t, 0.5, provider.opts[0].Temperature, 0.001)
}

func TestGenerateTagsSortsAndCaps(t *testing.T) {
	provider := &fakeProvider{response: `[
		{"tag":"a","confidence":0.2},
		{"tag":"b","confidence":0.9},
		{"tag":"c","confidence":0.5},
		{"tag":"d","confidence":0.8},
		{"tag":"e","confidence":0.3},
		{"tag":"f","confidence":0.7}
	]`}
	assistant := NewAssistant(provider, nil)

	tags, err := assistant.GenerateTags(context.Background(), "Title", "content")
	require.NoError(t, err)
	require.Len(t, tags, 5)
	assert.Equal(t, "b", tags[0].Tag)
	assert.Equal(t, "d", tags[1].Tag)
}

func TestGenerateTagsTruncatesContent(t *testing.T) {
	provider := &fakeProvider{response: "[]"}
	assistant := NewAssistant(provider, nil)

	long := strings.Repeat("x", 5000)
	_, err := assistant.GenerateTags(context.Background(), "Title", long)
	require.NoError(t, err)
	assert.Less(t, len(provider.prompts[0]), 3000)
}

func TestDetectCategory(t *testing.T) {
	provider := &fakeProvider{response: `Sure! {"category":"Programming","confidence":0.85,"alternativeCategories":["Technology","Tutorial"]}`}
	assistant := NewAssistant(provider, nil)

	result, err := assistant.DetectCategory(context.Background(), "Go generics", "content")
	require.NoError(t, err)
	assert.Equal(t, "Programming", result.Category)
	assert.Equal(t, []string{"Technology", "Tutorial"}, result.AlternativeCategories)
}

func TestDetectSpamParseFailureIsNotSpam(t *testing.T) {
	provider := &fakeProvider{response: "I cannot analyze this."}
	assistant := NewAssistant(provider, nil)

	result, err := assistant.DetectSpam(context.Background(), "content")
	require.NoError(t, err)
	assert.False(t, result.IsSpam)
}

func TestDetectToxicityDefaults(t *testing.T) {
	provider := &fakeProvider{response: `{"isToxic":false,"confidence":0.95}`}
	assistant := NewAssistant(provider, nil)

	result, err := assistant.DetectToxicity(context.Background(), "a friendly post")
	require.NoError(t, err)
	assert.False(t, result.IsToxic)
	assert.Equal(t, "none", result.Severity)
	assert.Equal(t, "allow", result.Action)
}

func TestProviderErrorPropagates(t *testing.T) {
	provider := &fakeProvider{err: errors.New("boom")}
	assistant := NewAssistant(provider, nil)

	_, err := assistant.ImproveWriting(context.Background(), "text")
	assert.Error(t, err)
}
