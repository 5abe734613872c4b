package drafter

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/dlclark/regexp2"
	"github.com/tmc/langchaingo/llms"

	"github.com/xhad/polisum/pkg/llm"
)

const promptTemplate = "Adapt this Data Governance Framework summary for %s: %s"

// A word followed by two or more copies of itself.
var repeatedWordRe = regexp2.MustCompile(`\b(\w+)(\s+\1\b){2,}`, regexp2.None)

// GenerativeConfig holds sampling settings. Zero fields take the defaults
// below, so a zero temperature cannot be expressed.
type GenerativeConfig struct {
	MaxSummaryChars   int
	Temperature       float64
	TopP              float64
	RepetitionPenalty float64
	MaxLength         int
}

type Generative struct {
	model  llms.Model
	config GenerativeConfig
}

func NewGenerative(model llms.Model, config GenerativeConfig) *Generative {
	if config.MaxSummaryChars <= 0 {
		config.MaxSummaryChars = 1000
	}
	if config.Temperature <= 0 {
		config.Temperature = 0.7
	}
	if config.TopP <= 0 {
		config.TopP = 0.9
	}
	if config.RepetitionPenalty <= 0 {
		config.RepetitionPenalty = 1.2
	}
	if config.MaxLength <= 0 {
		config.MaxLength = 300
	}

	return &Generative{model: model, config: config}
}

func (g *Generative) Draft(ctx context.Context, summary, scenario string) (string, error) {
	prompt := BuildPrompt(scenario, truncate(strings.TrimSpace(summary), g.config.MaxSummaryChars))

	out, err := llm.Generate(ctx, g.model, prompt,
		llms.WithTemperature(g.config.Temperature),
		llms.WithTopP(g.config.TopP),
		llms.WithRepetitionPenalty(g.config.RepetitionPenalty),
		llms.WithMaxLength(g.config.MaxLength),
		llms.WithMaxTokens(g.config.MaxLength),
	)
	if err != nil {
		return "", err
	}

	// Completion-style models echo the prompt.
	out = strings.TrimPrefix(strings.TrimSpace(out), prompt)
	out = strings.TrimSpace(CollapseRepeats(out))
	if out == "" {
		return "", errors.New("empty draft from model")
	}

	return out, nil
}

func BuildPrompt(scenario, summary string) string {
	return fmt.Sprintf(promptTemplate, strings.TrimSpace(scenario), summary)
}

// CollapseRepeats replaces a word repeated three or more times in a row
// with a single occurrence.
func CollapseRepeats(text string) string {
	out, err := repeatedWordRe.Replace(text, "$1", -1, -1)
	if err != nil {
		return text
	}
	return out
}

func truncate(s string, maxRunes int) string {
	runes := []rune(s)
	if len(runes) <= maxRunes {
		return s
	}
	return string(runes[:maxRunes])
}
