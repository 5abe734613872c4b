package drafter

import (
	"context"
	"fmt"
	"math/rand/v2"
	"strings"
	"sync"
	"time"
)

const (
	excerptSentences = 3
	emptyExcerpt     = "No summary details were provided."
)

// slot is one recommendation bullet: a single fixed sentence, or a uniform
// choice among candidates.
type slot []string

type scenarioTemplate struct {
	intro           string
	recommendations []slot
	interpretation  string
	conclusion      string
}

var templates = map[string]scenarioTemplate{
	ResearchUniversities: {
		intro: "This draft adapts the policy summary for Research Universities, where open data underpins reproducible research and academic collaboration.",
		recommendations: []slot{
			{
				"Require a research data management plan for every funded project.",
				"Make data management planning a condition of internal research funding.",
				"Review data management plans at the proposal stage of each research project.",
			},
			{"Deposit datasets in an institutional repository with persistent identifiers."},
			{
				"Train faculty and graduate students on consent, anonymisation and licensing.",
				"Run recurring workshops on data licensing and privacy for research staff.",
			},
			{
				"Appoint departmental data stewards to review sharing requests.",
				"Route sensitive data sharing requests through the research ethics board.",
			},
		},
		interpretation: "For a university, the policy turns data sharing from a courtesy into an obligation of the research lifecycle. Funders, ethics boards and libraries share responsibility, and researchers are expected to plan for openness before any data is collected.",
		conclusion:     "Adopting these measures lets Research Universities meet funder expectations, protect research participants and increase the reuse and citation of their work.",
	},
	StartupsTech: {
		intro: "This draft adapts the policy summary for Startups & Tech Companies, where data is both a product asset and a compliance risk.",
		recommendations: []slot{
			{
				"Map every dataset the product collects and tag it by sensitivity.",
				"Keep a living inventory of collected data with an owner for each source.",
			},
			{"Build privacy by design into the product development lifecycle."},
			{
				"Publish non-sensitive datasets or APIs to build trust with users and partners.",
				"Expose anonymised aggregate data through a documented public API.",
				"Share de-identified usage statistics with the developer community.",
			},
			{
				"Name a data protection lead before the next funding round.",
				"Add data governance checks to the release checklist.",
			},
		},
		interpretation: "For a young technology company, the policy sets the baseline that investors, customers and regulators will measure it against. Early alignment is cheaper than retrofitting controls once the product and the user base have grown.",
		conclusion:     "Following these steps helps Startups & Tech Companies scale responsibly, shorten due diligence and turn good data practice into a competitive advantage.",
	},
	NGOsSocialImpact: {
		intro: "This draft adapts the policy summary for NGOs & Social Impact Groups, where data supports accountability to donors and the communities served.",
		recommendations: []slot{
			{
				"Obtain informed consent in the language of the communities being served.",
				"Explain to beneficiaries, in plain language, how their data will be used.",
			},
			{"Publish programme outcomes as open data to strengthen donor accountability."},
			{
				"Partner with local organisations to validate and share community data.",
				"Share aggregated impact data with peer organisations working in the same region.",
			},
			{
				"Minimise the personal data collected in the field.",
				"Store beneficiary records separately from published datasets.",
			},
		},
		interpretation: "For a mission-driven organisation, the policy balances transparency toward funders against the duty to protect vulnerable people. Openness is encouraged, but never at the expense of the communities whose data is being collected.",
		conclusion:     "With these practices in place, NGOs & Social Impact Groups can demonstrate impact credibly while keeping the trust of the people they serve.",
	},
}

var genericTemplate = scenarioTemplate{
	intro: "This draft adapts the policy summary for %s.",
	recommendations: []slot{
		{"Align internal data practices with the principles described in the policy."},
	},
	interpretation: "The policy sets general expectations for how data is collected, shared and protected. Each organisation should map these expectations onto its own processes and responsibilities.",
	conclusion:     "Applying the policy consistently will help %s manage data responsibly and transparently.",
}

// Template builds drafts from canned text. The random source is only used
// to pick among candidate recommendations.
type Template struct {
	mu  sync.Mutex
	rng *rand.Rand
}

// NewTemplate uses rng for recommendation choices; nil seeds a source from
// the clock.
func NewTemplate(rng *rand.Rand) *Template {
	if rng == nil {
		seed := uint64(time.Now().UnixNano())
		rng = rand.New(rand.NewPCG(seed, seed>>1|1))
	}
	return &Template{rng: rng}
}

func (t *Template) Draft(_ context.Context, summary, scenario string) (string, error) {
	label := strings.TrimSpace(scenario)
	tmpl, known := lookup(label)
	if known != "" {
		label = known
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Scenario Draft: %s\n\n", label)
	if known != "" {
		b.WriteString(tmpl.intro)
	} else {
		fmt.Fprintf(&b, tmpl.intro, label)
	}
	b.WriteString("\n\nPolicy Context:\n")
	b.WriteString(Excerpt(summary, excerptSentences))
	b.WriteString("\n\nRecommendations:\n")
	for _, rec := range t.pick(tmpl.recommendations) {
		b.WriteString("- ")
		b.WriteString(rec)
		b.WriteString("\n")
	}
	b.WriteString("\nInterpretation:\n")
	b.WriteString(tmpl.interpretation)
	b.WriteString("\n\nConclusion:\n")
	if known != "" {
		b.WriteString(tmpl.conclusion)
	} else {
		fmt.Fprintf(&b, tmpl.conclusion, label)
	}

	return b.String(), nil
}

func (t *Template) pick(slots []slot) []string {
	t.mu.Lock()
	defer t.mu.Unlock()

	out := make([]string, len(slots))
	for i, s := range slots {
		if len(s) == 1 {
			out[i] = s[0]
			continue
		}
		out[i] = s[t.rng.IntN(len(s))]
	}
	return out
}

// lookup returns the template for label and its canonical spelling, or the
// generic template and "".
func lookup(label string) (scenarioTemplate, string) {
	for name, tmpl := range templates {
		if strings.EqualFold(name, label) {
			return tmpl, name
		}
	}
	return genericTemplate, ""
}

// Excerpt returns up to n sentences of summary, split on periods.
func Excerpt(summary string, n int) string {
	var sentences []string
	for _, part := range strings.Split(summary, ".") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		sentences = append(sentences, part+".")
		if len(sentences) == n {
			break
		}
	}
	if len(sentences) == 0 {
		return emptyExcerpt
	}
	return strings.Join(sentences, " ")
}
