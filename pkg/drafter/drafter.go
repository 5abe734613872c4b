// Package drafter rewrites a policy summary for one organizational scenario.
//
// Template drafts are assembled from canned sentences keyed by scenario,
// with some recommendations picked at random. Generative drafts prompt a
// language model instead.
package drafter

import (
	"context"
	"fmt"
	"math/rand/v2"
	"strings"

	"github.com/tmc/langchaingo/llms"
)

const (
	ModeTemplate   = "template"
	ModeGenerative = "generative"
)

// Scenario labels understood by the template drafter.
const (
	ResearchUniversities = "Research Universities"
	StartupsTech         = "Startups & Tech Companies"
	NGOsSocialImpact     = "NGOs & Social Impact Groups"
)

type Drafter interface {
	Draft(ctx context.Context, summary, scenario string) (string, error)
}

type Config struct {
	Mode       string
	Seed       uint64 // 0 seeds from the clock
	Generative GenerativeConfig
}

// New builds the drafter for the configured mode. The generative mode needs
// a model.
func New(config Config, model llms.Model) (Drafter, error) {
	switch strings.ToLower(config.Mode) {
	case "", ModeTemplate:
		var rng *rand.Rand
		if config.Seed != 0 {
			rng = rand.New(rand.NewPCG(config.Seed, config.Seed))
		}
		return NewTemplate(rng), nil
	case ModeGenerative:
		if model == nil {
			return nil, fmt.Errorf("drafter mode %q requires an llm provider", config.Mode)
		}
		return NewGenerative(model, config.Generative), nil
	default:
		return nil, fmt.Errorf("unknown drafter mode %q", config.Mode)
	}
}

// Scenarios lists the labels with dedicated templates.
func Scenarios() []string {
	return []string{ResearchUniversities, StartupsTech, NGOsSocialImpact}
}
