package evaluator

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/noah-isme/essayq-go-api/internal/scoring"
)

func testRubric() scoring.RubricConfig {
	return scoring.RubricConfig{
		ScaleMin: 0,
		ScaleMax: 100,
		Categories: []scoring.Category{
			{ID: "grammar", Label: "Grammar", Weight: 0.25},
			{ID: "vocabulary", Label: "Vocabulary", Weight: 0.25},
			{ID: "coherence", Label: "Coherence & Cohesion", Weight: 0.25},
			{ID: "task_response", Label: "Task Response", Weight: 0.25},
		},
	}
}

func TestParseEvaluationWeightedSum(t *testing.T) {
	content := `{"categories":{"grammar":80,"vocabulary":60,"coherence":70,"task_response":90},"feedback":"Good structure."}`

	evaluation, err := parseEvaluation(content, testRubric())
	require.NoError(t, err)

	require.Equal(t, 75.0, evaluation.Raw)
	require.Equal(t, 0.75, evaluation.Normalized)
	require.Equal(t, 0.0, evaluation.ScaleMin)
	require.Equal(t, 100.0, evaluation.ScaleMax)
	require.Equal(t, "Good structure.", evaluation.Feedback)
	require.Equal(t, 80.0, evaluation.Categories["grammar"])
}

func TestParseEvaluationClampsOutOfScaleScores(t *testing.T) {
	content := `{"categories":{"grammar":250,"vocabulary":-40,"coherence":100,"task_response":100}}`

	evaluation, err := parseEvaluation(content, testRubric())
	require.NoError(t, err)

	// 100*0.25 + 0*0.25 + 100*0.25 + 100*0.25
	require.Equal(t, 75.0, evaluation.Raw)
	require.Equal(t, 0.75, evaluation.Normalized)
}

func TestParseEvaluationMissingCategoriesScoreZero(t *testing.T) {
	content := `{"categories":{"grammar":100},"feedback":""}`

	evaluation, err := parseEvaluation(content, testRubric())
	require.NoError(t, err)

	require.Equal(t, 25.0, evaluation.Raw)
	require.Equal(t, 0.25, evaluation.Normalized)
}

func TestParseEvaluationZeroSpanNormalizesToZero(t *testing.T) {
	rubric := testRubric()
	rubric.ScaleMin = 50
	rubric.ScaleMax = 50

	evaluation, err := parseEvaluation(`{"categories":{"grammar":50}}`, rubric)
	require.NoError(t, err)
	require.Equal(t, 0.0, evaluation.Normalized)
}

func TestParseEvaluationRejectsInvalidJSON(t *testing.T) {
	_, err := parseEvaluation("I would rate this essay an 8/10.", testRubric())
	require.Error(t, err)
}
