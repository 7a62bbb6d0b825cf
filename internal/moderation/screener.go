package moderation

import (
	"context"
	"sort"

	"wall/internal/metrics"

	"go.uber.org/zap"
)

// StrictThresholds trip an input when its score for the category is above the value.
var StrictThresholds = map[string]float64{
	"sexual":     0.03,
	"harassment": 0.15,
	"hate":       0.01,
	"violence":   0.05,
	"self-harm":  0.01,
}

type Input struct {
	Label string
	Text  string
}

type Analysis struct {
	Input   string             `json:"input"`
	Flagged bool               `json:"flagged"`
	Tripped []string           `json:"tripped"`
	Scores  map[string]float64 `json:"scores"`
}

type Report struct {
	Flagged    bool               `json:"flagged"`
	Analysis   []Analysis         `json:"analysis"`
	Thresholds map[string]float64 `json:"thresholds"`
}

// Screener applies thresholds to classifier output. Classifier errors fail open.
// A nil Screener, or one without a Client, passes everything.
type Screener struct {
	Client     Client
	Thresholds map[string]float64
	log        *zap.Logger
}

func NewScreener(client Client) *Screener {
	return &Screener{
		Client:     client,
		Thresholds: StrictThresholds,
		log:        zap.L().With(zap.String("component", "moderation.Screener")),
	}
}

func (s *Screener) Screen(ctx context.Context, inputs []Input) Report {
	if s == nil || s.Client == nil || len(inputs) == 0 {
		return Report{}
	}

	texts := make([]string, len(inputs))
	for i, in := range inputs {
		texts[i] = in.Text
	}

	results, err := s.Client.Moderate(ctx, texts)
	if err != nil {
		if s.log != nil {
			s.log.Warn("moderation unavailable, allowing post", zap.Error(err))
		}
		metrics.ModerationTotal.WithLabelValues("error").Inc()
		return Report{}
	}

	report := Report{Thresholds: s.Thresholds}
	for i, r := range results {
		label := ""
		if i < len(inputs) {
			label = inputs[i].Label
		}
		a := Analysis{
			Input:   label,
			Flagged: r.Flagged,
			Tripped: []string{},
			Scores:  r.Categories,
		}
		for cat, th := range s.Thresholds {
			if r.Categories[cat] > th {
				a.Tripped = append(a.Tripped, cat)
			}
		}
		sort.Strings(a.Tripped)
		if a.Flagged || len(a.Tripped) > 0 {
			report.Flagged = true
		}
		report.Analysis = append(report.Analysis, a)
	}

	if report.Flagged {
		metrics.ModerationTotal.WithLabelValues("flagged").Inc()
	} else {
		metrics.ModerationTotal.WithLabelValues("passed").Inc()
	}
	return report
}
