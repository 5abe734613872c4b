package summarizer

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/tmc/langchaingo/llms"

	"github.com/xhad/polisum/pkg/llm"
)

const promptTemplate = `Summarize the following excerpt of a data governance policy in %d to %d words.
Keep obligations, responsible parties and deadlines. Answer with the summary only.

%s`

// LLM summarizes chunks with a language model, sampling deterministically.
type LLM struct {
	model llms.Model
}

func NewLLM(model llms.Model) *LLM {
	return &LLM{model: model}
}

func (s *LLM) Summarize(ctx context.Context, text string, opts Options) (string, error) {
	prompt := fmt.Sprintf(promptTemplate, opts.MinLength, opts.MaxLength, text)

	out, err := llm.Generate(ctx, s.model, prompt,
		llms.WithTemperature(0),
		llms.WithMinLength(opts.MinLength),
		llms.WithMaxLength(opts.MaxLength),
		// roughly two tokens per word leaves room for the longest summary
		llms.WithMaxTokens(opts.MaxLength*2),
	)
	if err != nil {
		return "", err
	}

	out = strings.TrimSpace(out)
	if out == "" {
		return "", errors.New("empty summary from model")
	}

	return out, nil
}
