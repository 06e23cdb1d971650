package evaluator

import (
	"context"

	"github.com/noah-isme/essayq-go-api/internal/scoring"
)

// Evaluation is the structured grading outcome for one essay.
type Evaluation struct {
	Raw        float64            `json:"raw"`
	Normalized float64            `json:"normalized"`
	ScaleMin   float64            `json:"scale_min"`
	ScaleMax   float64            `json:"scale_max"`
	Categories map[string]float64 `json:"categories,omitempty"`
	Feedback   string             `json:"feedback,omitempty"`
}

// Evaluator grades an essay described by a scoring request payload.
type Evaluator interface {
	Evaluate(ctx context.Context, payload scoring.Payload) (Evaluation, error)
}
