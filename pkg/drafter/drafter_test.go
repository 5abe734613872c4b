package drafter_test

import (
	"context"
	"errors"
	"math/rand/v2"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tmc/langchaingo/llms"

	"github.com/xhad/polisum/pkg/drafter"
)

const summary = "Agencies must publish datasets. Personal data is excluded. Licenses must be open. Reviews happen yearly."

func seeded(seed uint64) *drafter.Template {
	return drafter.NewTemplate(rand.New(rand.NewPCG(seed, seed)))
}

func TestTemplateLayout(t *testing.T) {
	out, err := seeded(1).Draft(context.Background(), summary, drafter.StartupsTech)
	require.NoError(t, err)

	lines := strings.Split(out, "\n")
	assert.Equal(t, "Scenario Draft: Startups & Tech Companies", lines[0])
	assert.Contains(t, out, "\nPolicy Context:\nAgencies must publish datasets. Personal data is excluded. Licenses must be open.\n")
	assert.NotContains(t, out, "Reviews happen yearly")
	assert.Contains(t, out, "\nRecommendations:\n- ")
	assert.Contains(t, out, "- Build privacy by design into the product development lifecycle.")
	assert.Contains(t, out, "\nInterpretation:\n")
	assert.Contains(t, out, "\nConclusion:\n")

	var bullets int
	for _, l := range lines {
		if strings.HasPrefix(l, "- ") {
			bullets++
		}
	}
	assert.Equal(t, 4, bullets)
}

func TestTemplateDeterministicWithSeed(t *testing.T) {
	for _, scenario := range drafter.Scenarios() {
		a, err := seeded(42).Draft(context.Background(), summary, scenario)
		require.NoError(t, err)
		b, err := seeded(42).Draft(context.Background(), summary, scenario)
		require.NoError(t, err)
		assert.Equal(t, a, b, scenario)
	}
}

func TestTemplateVariesAcrossSeeds(t *testing.T) {
	seen := map[string]bool{}
	for seed := uint64(1); seed <= 50; seed++ {
		out, err := seeded(seed).Draft(context.Background(), summary, drafter.ResearchUniversities)
		require.NoError(t, err)
		seen[out] = true
	}
	assert.Greater(t, len(seen), 1)
}

func TestTemplateUnknownScenario(t *testing.T) {
	out, err := seeded(7).Draft(context.Background(), "", "  Municipal Archives ")
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(out, "Scenario Draft: Municipal Archives\n"))
	assert.Contains(t, out, "This draft adapts the policy summary for Municipal Archives.")
	assert.Contains(t, out, "Policy Context:\nNo summary details were provided.")
	assert.Contains(t, out, "- Align internal data practices with the principles described in the policy.")
	assert.Contains(t, out, "help Municipal Archives manage data")
}

func TestTemplateLabelCaseInsensitive(t *testing.T) {
	out, err := seeded(3).Draft(context.Background(), summary, "research universities")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(out, "Scenario Draft: Research Universities\n"))
	assert.Contains(t, out, "Deposit datasets in an institutional repository")
}

func TestExcerpt(t *testing.T) {
	assert.Equal(t, "One. Two.", drafter.Excerpt("One. Two", 3))
	assert.Equal(t, "One. Two.", drafter.Excerpt(" One.. Two. Three.", 2))
	assert.Equal(t, "No summary details were provided.", drafter.Excerpt(" . . ", 3))
}

func TestNew(t *testing.T) {
	d, err := drafter.New(drafter.Config{}, nil)
	require.NoError(t, err)
	assert.IsType(t, &drafter.Template{}, d)

	_, err = drafter.New(drafter.Config{Mode: drafter.ModeGenerative}, nil)
	assert.Error(t, err)

	d, err = drafter.New(drafter.Config{Mode: "Generative"}, &fakeModel{})
	require.NoError(t, err)
	assert.IsType(t, &drafter.Generative{}, d)

	_, err = drafter.New(drafter.Config{Mode: "poetry"}, nil)
	assert.EqualError(t, err, `unknown drafter mode "poetry"`)
}

type fakeModel struct {
	reply  func(prompt string) string
	err    error
	prompt string
	opts   llms.CallOptions
}

func (m *fakeModel) GenerateContent(ctx context.Context, messages []llms.MessageContent, options ...llms.CallOption) (*llms.ContentResponse, error) {
	for _, opt := range options {
		opt(&m.opts)
	}
	m.prompt = messages[0].Parts[0].(llms.TextContent).Text
	if m.err != nil {
		return nil, m.err
	}
	var reply string
	if m.reply != nil {
		reply = m.reply(m.prompt)
	}
	return &llms.ContentResponse{Choices: []*llms.ContentChoice{{Content: reply}}}, nil
}

func (m *fakeModel) Call(ctx context.Context, prompt string, options ...llms.CallOption) (string, error) {
	return llms.GenerateFromSinglePrompt(ctx, m, prompt, options...)
}

func TestGenerativeDraft(t *testing.T) {
	m := &fakeModel{reply: func(prompt string) string {
		return prompt + " Universities should should should publish data openly."
	}}
	g := drafter.NewGenerative(m, drafter.GenerativeConfig{})

	out, err := g.Draft(context.Background(), summary, drafter.ResearchUniversities)
	require.NoError(t, err)

	assert.Equal(t, "Universities should publish data openly.", out)
	assert.Equal(t, drafter.BuildPrompt(drafter.ResearchUniversities, summary), m.prompt)
	assert.Equal(t, 0.7, m.opts.Temperature)
	assert.Equal(t, 0.9, m.opts.TopP)
	assert.Equal(t, 1.2, m.opts.RepetitionPenalty)
	assert.Equal(t, 300, m.opts.MaxLength)
}

func TestGenerativeTruncatesSummary(t *testing.T) {
	m := &fakeModel{reply: func(string) string { return "ok" }}
	g := drafter.NewGenerative(m, drafter.GenerativeConfig{MaxSummaryChars: 10})

	_, err := g.Draft(context.Background(), strings.Repeat("é", 50), "NGOs")
	require.NoError(t, err)
	assert.Equal(t, "Adapt this Data Governance Framework summary for NGOs: "+strings.Repeat("é", 10), m.prompt)
}

func TestGenerativeErrors(t *testing.T) {
	echo := &fakeModel{reply: func(prompt string) string { return prompt }}
	_, err := drafter.NewGenerative(echo, drafter.GenerativeConfig{}).Draft(context.Background(), summary, "x")
	assert.EqualError(t, err, "empty draft from model")

	boom := errors.New("model offline")
	_, err = drafter.NewGenerative(&fakeModel{err: boom}, drafter.GenerativeConfig{}).Draft(context.Background(), summary, "x")
	assert.ErrorIs(t, err, boom)
}

func TestCollapseRepeats(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"the the the data policy", "the data policy"},
		{"data data policy", "data data policy"},
		{"open open   open open access", "open access"},
		{"no repeats here", "no repeats here"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, drafter.CollapseRepeats(tt.in))
	}
}
