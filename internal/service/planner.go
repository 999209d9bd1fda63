package service

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"text/template"
	"time"

	"github.com/strengthlab/overload/internal/domain"
)

const (
	openRouterAPIURL = "https://openrouter.ai/api/v1/chat/completions"

	plannerSystemPrompt = `You are an experienced strength coach who designs progressive-overload training programs. You favor compound lifts, sensible weekly volume and rep ranges matched to the trainee's goal. Return only valid JSON.`

	onboardingSystemPrompt = `You are a friendly strength coach running an intake conversation with a new trainee. Across the conversation, learn their fitness goals, training experience, current routine, available training days per week, available equipment, and any injuries or limitations. Ask one question at a time. Once you know enough to design a weekly program, set is_complete to true.

Respond with ONLY valid JSON in this EXACT format:
{
  "message": "your next message to the trainee",
  "is_complete": false,
  "state": {
    "fitness_goals": [],
    "experience_level": "",
    "current_routine": "",
    "days_per_week": 0,
    "equipment_available": [],
    "injuries_limitations": [],
    "preferences": ""
  }
}`

	planPromptTmplStr = `Design a weekly training program for this trainee:

{{.StateJSON}}

Rules:
- Produce one workout template per training day, each with 4-8 exercises.
- Every exercise needs target_sets (2-5), target_rep_min and target_rep_max with min < max.
- The microcycle array has exactly 7 entries, Monday first: an index into templates for a training day, or -1 for a rest day.
- The number of training days must match the trainee's days_per_week.
- Respect listed injuries and available equipment.

Return ONLY valid JSON in this EXACT format:
{
  "description": "one paragraph describing the program",
  "templates": [
    {
      "name": "Day name",
      "description": "what this day trains",
      "exercises": [
        {"name": "Exercise Name", "target_sets": 3, "target_rep_min": 8, "target_rep_max": 12}
      ]
    }
  ],
  "microcycle": [0, -1, 1, -1, 2, -1, -1]
}`
)

// PlannerService generates training plans and runs the onboarding intake
// conversation through the OpenRouter chat-completions API. It also fronts
// plan persistence so handlers only ever talk to one service.
type PlannerService struct {
	apiKey       string
	model        string
	httpClient   *http.Client
	planRepo     domain.TrainingPlanRepository
	templateRepo domain.TemplateRepository
	planTmpl     *template.Template
}

// NewPlannerService creates the planner. timeout bounds each model call.
func NewPlannerService(
	apiKey, model string,
	timeout time.Duration,
	planRepo domain.TrainingPlanRepository,
	templateRepo domain.TemplateRepository,
) *PlannerService {
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	planTmpl, _ := template.New("plan").Parse(planPromptTmplStr)
	return &PlannerService{
		apiKey:       apiKey,
		model:        model,
		httpClient:   &http.Client{Timeout: timeout},
		planRepo:     planRepo,
		templateRepo: templateRepo,
		planTmpl:     planTmpl,
	}
}

// planDraft is the shape the model is asked to return.
type planDraft struct {
	Description string `json:"description"`
	Templates   []struct {
		Name        string                        `json:"name"`
		Description string                        `json:"description"`
		Exercises   []domain.ExercisePrescription `json:"exercises"`
	} `json:"templates"`
	Microcycle []int `json:"microcycle"`
}

// GeneratePlan asks the model for a weekly program matching the onboarding
// state, persists each generated template so workouts can be scheduled from
// them, and stores the plan itself.
func (p *PlannerService) GeneratePlan(ctx context.Context, userID string, state domain.OnboardingState) (*domain.TrainingPlan, error) {
	stateJSON, err := json.MarshalIndent(state, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal onboarding state: %w", err)
	}

	var promptBuf bytes.Buffer
	if err := p.planTmpl.Execute(&promptBuf, map[string]string{"StateJSON": string(stateJSON)}); err != nil {
		return nil, fmt.Errorf("failed to generate plan prompt: %w", err)
	}

	content, err := p.chat(ctx, plannerSystemPrompt, []domain.OnboardingMessage{
		{Role: "user", Content: promptBuf.String()},
	}, 0.4)
	if err != nil {
		return nil, err
	}

	var draft planDraft
	if err := json.Unmarshal([]byte(content), &draft); err != nil {
		if err := extractJSONObject(content, &draft); err != nil {
			return nil, fmt.Errorf("failed to parse AI plan as JSON: %w", err)
		}
	}

	plan := &domain.TrainingPlan{
		UserID:      userID,
		Description: draft.Description,
		Microcycle:  draft.Microcycle,
	}
	for _, t := range draft.Templates {
		tpl := domain.Template{
			UserID:      userID,
			Name:        t.Name,
			Description: t.Description,
			Exercises:   t.Exercises,
		}
		if err := tpl.Validate(); err != nil {
			return nil, fmt.Errorf("AI plan produced an unusable template %q: %w", t.Name, err)
		}
		if err := p.templateRepo.Create(ctx, &tpl); err != nil {
			return nil, err
		}
		plan.Templates = append(plan.Templates, tpl)
	}
	if err := plan.Validate(); err != nil {
		return nil, fmt.Errorf("AI plan failed validation: %w", err)
	}

	if err := p.planRepo.Create(ctx, plan); err != nil {
		return nil, err
	}
	return plan, nil
}

// Onboard advances the intake conversation by one assistant turn. If the
// model replies with prose instead of the requested JSON, the prose is
// passed through as the message rather than failing the conversation.
func (p *PlannerService) Onboard(ctx context.Context, history []domain.OnboardingMessage) (*domain.OnboardingResponse, error) {
	content, err := p.chat(ctx, onboardingSystemPrompt, history, 0.7)
	if err != nil {
		return nil, err
	}

	var response domain.OnboardingResponse
	if err := json.Unmarshal([]byte(content), &response); err != nil {
		if err := extractJSONObject(content, &response); err != nil {
			return &domain.OnboardingResponse{Message: content}, nil
		}
	}
	return &response, nil
}

// GetPlan returns one plan owned by the user.
func (p *PlannerService) GetPlan(ctx context.Context, userID, id string) (*domain.TrainingPlan, error) {
	return p.planRepo.GetByID(ctx, userID, id)
}

// ListPlans returns the user's plans, newest first.
func (p *PlannerService) ListPlans(ctx context.Context, userID string, skip, limit int64) ([]*domain.TrainingPlan, error) {
	return p.planRepo.List(ctx, userID, skip, limit)
}

// DeletePlan removes a plan. Templates it references stay: workouts may
// still point at them.
func (p *PlannerService) DeletePlan(ctx context.Context, userID, id string) error {
	return p.planRepo.Delete(ctx, userID, id)
}

// chat sends one chat-completions request and returns the first choice's
// content.
func (p *PlannerService) chat(ctx context.Context, system string, messages []domain.OnboardingMessage, temperature float64) (string, error) {
	chatMessages := make([]map[string]string, 0, len(messages)+1)
	chatMessages = append(chatMessages, map[string]string{
		"role":    "system",
		"content": system,
	})
	for _, m := range messages {
		chatMessages = append(chatMessages, map[string]string{
			"role":    m.Role,
			"content": m.Content,
		})
	}

	requestBody := map[string]interface{}{
		"model":       p.model,
		"messages":    chatMessages,
		"temperature": temperature,
	}
	payload, err := json.Marshal(requestBody)
	if err != nil {
		return "", fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", openRouterAPIURL, bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+p.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("openrouter api error (status %d): %s", resp.StatusCode, string(body))
	}

	var apiResponse struct {
		Choices []struct {
			Message struct {
				Content string `json:"content"`
			} `json:"message"`
		} `json:"choices"`
		Error *struct {
			Message string `json:"message"`
			Code    int    `json:"code"`
		} `json:"error"`
	}
	if err := json.Unmarshal(body, &apiResponse); err != nil {
		return "", fmt.Errorf("failed to parse response: %w", err)
	}
	if apiResponse.Error != nil {
		return "", fmt.Errorf("openrouter error: %s (code: %d)", apiResponse.Error.Message, apiResponse.Error.Code)
	}
	if len(apiResponse.Choices) == 0 {
		return "", fmt.Errorf("no response from AI model")
	}
	return apiResponse.Choices[0].Message.Content, nil
}

// extractJSONObject finds and parses the outermost JSON object in text that
// may contain surrounding prose or markdown fences.
func extractJSONObject(text string, v interface{}) error {
	start := bytes.IndexByte([]byte(text), '{')
	end := bytes.LastIndexByte([]byte(text), '}')
	if start == -1 || end == -1 || start >= end {
		return fmt.Errorf("no JSON object found in text")
	}
	return json.Unmarshal([]byte(text[start:end+1]), v)
}
