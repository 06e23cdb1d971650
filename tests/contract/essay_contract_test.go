package contract_test

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"
	"github.com/santhosh-tekuri/jsonschema/v5"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/essayq-go-api/internal/dto"
	"github.com/noah-isme/essayq-go-api/internal/handler"
	"github.com/noah-isme/essayq-go-api/internal/scoring"
)

type stubSubmissionService struct {
	result scoring.Result
}

func (s stubSubmissionService) Submit(context.Context, uint, uint, dto.EssaySubmissionRequest) (scoring.Result, error) {
	return s.result, nil
}

func (s stubSubmissionService) State(context.Context, uint, uint) (dto.QuestionStateResponse, error) {
	return dto.QuestionStateResponse{}, nil
}

func compileSchema(t *testing.T, name string) *jsonschema.Schema {
	t.Helper()

	schemaPath, err := filepath.Abs(filepath.Join("..", "contracts", name))
	require.NoError(t, err)

	compiler := jsonschema.NewCompiler()
	schema, err := compiler.Compile("file://" + schemaPath)
	require.NoError(t, err)
	return schema
}

func submitDocument(t *testing.T, result scoring.Result) (int, interface{}) {
	t.Helper()

	essayHandler := handler.NewEssayHandler(stubSubmissionService{result: result}, zerolog.Nop())

	app := fiber.New()
	group := app.Group("/api/v1/questions", func(c *fiber.Ctx) error {
		c.Locals("user_id", uint(1))
		return c.Next()
	})
	essayHandler.Register(group)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/questions/1/submit", strings.NewReader(`{"essay_text":"An essay."}`))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req)
	require.NoError(t, err)

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	require.NoError(t, resp.Body.Close())

	var payload interface{}
	require.NoError(t, json.Unmarshal(body, &payload))
	return resp.StatusCode, payload
}

func TestEssayScoreDocumentContract(t *testing.T) {
	schema := compileSchema(t, "essay_score.schema.json")

	status, payload := submitDocument(t, scoring.Result{
		"status":     scoring.StatusOK,
		"request_id": "8a6f2a9e-7b14-4c14-b0cd-0f6f6f2e9d11",
		"score": map[string]interface{}{
			"raw":        78.0,
			"normalized": 0.78,
			"scale_min":  0.0,
			"scale_max":  100.0,
			"categories": map[string]interface{}{
				"grammar":       80.0,
				"vocabulary":    76.0,
				"coherence":     78.0,
				"task_response": 78.0,
			},
		},
		"feedback":           map[string]interface{}{"overall": "Clear argument."},
		"mode":               "practice",
		"attempts_used":      1,
		"max_attempts":       3,
		"show_score_in_exam": true,
	})

	require.Equal(t, http.StatusOK, status)
	require.NoError(t, schema.Validate(payload))
}

func TestEssayErrorDocumentContract(t *testing.T) {
	schema := compileSchema(t, "essay_error.schema.json")

	result := scoring.ErrorResult(
		scoring.CodeMaxAttemptsReached,
		"You have already used all available attempts for this question.",
		http.StatusForbidden,
		"",
		map[string]interface{}{"attempts_used": 3, "max_attempts": 3},
	)
	result["mode"] = "practice"
	result["attempts_used"] = 3
	result["max_attempts"] = 3

	status, payload := submitDocument(t, result)

	require.Equal(t, http.StatusForbidden, status)
	require.NoError(t, schema.Validate(payload))
}

func TestEssayErrorDocumentContractBackendUnavailable(t *testing.T) {
	schema := compileSchema(t, "essay_error.schema.json")

	result := scoring.ErrorResult(
		scoring.CodeBackendUnavailable,
		"The scoring service is not reachable right now.",
		http.StatusServiceUnavailable,
		"4cbb1f57-9c1e-41da-94fa-0a1e53a4b7cd",
		map[string]interface{}{"url": "http://scoring.test/api/essay-score"},
	)

	status, payload := submitDocument(t, result)

	require.Equal(t, http.StatusServiceUnavailable, status)
	require.NoError(t, schema.Validate(payload))
}
