// Package triage drives the conversational intake wizard. Every turn
// produces a next question or a terminal result; crisis language always
// wins over any other branch.
package triage

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/google/uuid"

	"github.com/starford/vetbridge/internal/assess"
	"github.com/starford/vetbridge/internal/crisis"
	"github.com/starford/vetbridge/internal/llm"
	"github.com/starford/vetbridge/internal/metrics"
	"github.com/starford/vetbridge/internal/models"
	"github.com/starford/vetbridge/internal/recommend"
	"github.com/starford/vetbridge/internal/taxonomy"
)

// next is the static step-to-step map. Terminal steps map to themselves.
var next = map[models.Step]models.Step{
	models.StepWelcome:  models.StepCategory,
	models.StepCategory: models.StepSymptoms,
	models.StepSymptoms: models.StepSeverity,
	models.StepSeverity: models.StepContext,
	models.StepContext:  models.StepAssess,
	models.StepAssess:   models.StepComplete,
	models.StepComplete: models.StepComplete,
	models.StepCrisis:   models.StepCrisis,
}

// Next returns the successor of step.
func Next(step models.Step) models.Step {
	if n, ok := next[step]; ok {
		return n
	}
	return models.StepCategory
}

const maxMessageLen = 4000

// Request is one wizard turn as sent by the client.
type Request struct {
	Messages    []models.Message `json:"messages"`
	Step        string           `json:"step"`
	Category    string           `json:"category,omitempty"`
	Symptoms    []string         `json:"symptoms,omitempty"`
	UserMessage string           `json:"userMessage,omitempty"`
	Location    string           `json:"location,omitempty"`
	Session     *models.Session  `json:"session,omitempty"`
}

// Response is the wizard's answer to a turn.
type Response struct {
	AIMessage          string                    `json:"aiMessage"`
	NextStep           models.Step               `json:"nextStep"`
	IsCrisis           bool                      `json:"isCrisis"`
	Severity           models.Severity           `json:"severity,omitempty"`
	Recommendations    *models.RecommendationSet `json:"recommendations,omitempty"`
	SuggestedQuestions []string                  `json:"suggestedQuestions,omitempty"`
	NextSteps          []string                  `json:"nextSteps,omitempty"`
	Session            models.Session            `json:"session"`
}

// Recommender builds the final recommendation set without failing.
type Recommender interface {
	BuildBestEffort(ctx context.Context, in recommend.Input) *models.RecommendationSet
}

// Config tunes collaborator calls.
type Config struct {
	Timeout     time.Duration
	MaxTokens   int
	Temperature float64
}

// Machine runs wizard turns. It keeps no session state between calls and is
// safe for concurrent use; the caller serialises turns of one session.
type Machine struct {
	gen    llm.Generator
	rec    Recommender
	tax    *taxonomy.Taxonomy
	cfg    Config
	logger *slog.Logger
	newID  func() string
}

// New returns a machine. gen may be nil, in which case every step uses its
// static fallback.
func New(gen llm.Generator, rec Recommender, tax *taxonomy.Taxonomy, cfg Config, logger *slog.Logger) *Machine {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 15 * time.Second
	}
	if cfg.MaxTokens <= 0 {
		cfg.MaxTokens = 400
	}
	return &Machine{
		gen:    gen,
		rec:    rec,
		tax:    tax,
		cfg:    cfg,
		logger: logger,
		newID:  uuid.NewString,
	}
}

// Turn advances the wizard by one step. It never fails.
func (m *Machine) Turn(ctx context.Context, req Request) *Response {
	step, known := models.ParseStep(req.Step)
	if !known && req.Step != "" {
		m.logger.Debug("triage: unknown step, restarting", slog.String("step", req.Step))
	}
	session := models.Session{}
	if req.Session != nil {
		session = *req.Session
		session.Answers.Symptoms = append([]string(nil), req.Session.Answers.Symptoms...)
	}
	if session.ID == "" {
		session.ID = m.newID()
	}
	session.Step = step
	if session.Crisis || step == models.StepCrisis || m.detectCrisis(req) {
		metrics.RecordCrisisIntercept("message")
		m.logger.Warn("triage: crisis language detected", slog.String("session", session.ID), slog.String("step", string(step)))
		return crisisResponse(session)
	}

	if step == models.StepComplete {
		return &Response{AIMessage: completeMessage, NextStep: models.StepComplete, Session: session}
	}

	capture(step, req, &session.Answers, m.tax)
	messages := validMessages(req.Messages)

	if step == models.StepAssess {
		return m.assess(ctx, session, messages)
	}

	nextStep := Next(step)
	session.Step = nextStep
	return &Response{
		AIMessage:          m.ask(ctx, step, nextStep, session.Answers, messages, req.UserMessage),
		NextStep:           nextStep,
		SuggestedQuestions: suggestions(nextStep, session.Answers, m.tax),
		Session:            session,
	}
}

// detectCrisis scans the latest answer, any symptom labels and every
// message not authored by the assistant. Messages are scanned as sent:
// length and role validation only applies to what reaches the collaborator.
func (m *Machine) detectCrisis(req Request) bool {
	texts := []string{req.UserMessage, req.Category}
	texts = append(texts, req.Symptoms...)
	for _, msg := range req.Messages {
		if strings.EqualFold(strings.TrimSpace(msg.Role), models.RoleAssistant) {
			continue
		}
		texts = append(texts, msg.Content)
	}
	return crisis.DetectAny(texts...)
}

// ask requests a short follow-up for nextStep, falling back to the static
// question.
func (m *Machine) ask(ctx context.Context, step, nextStep models.Step, answers models.Answers, history []models.Message, latest string) string {
	fallback := fallbackQuestions[nextStep]
	if m.gen == nil {
		metrics.RecordFallback(string(step), "disabled")
		return fallback
	}

	convo := append([]models.Message(nil), history...)
	if latest = strings.TrimSpace(latest); latest != "" {
		convo = append(convo, models.Message{Role: models.RoleUser, Content: truncate(latest, maxMessageLen)})
	}
	if len(convo) == 0 {
		convo = append(convo, models.Message{Role: models.RoleUser, Content: "Hi, I'm looking for support."})
	}
	system := persona + "\n\n" + summarize(answers) + "\nTask: " + stepInstructions[nextStep]

	reply, err := m.generate(ctx, system, convo, llm.Options{MaxTokens: m.cfg.MaxTokens, Temperature: m.cfg.Temperature})
	if err != nil {
		reason := "error"
		if errors.Is(err, llm.ErrEmptyResponse) {
			reason = "empty"
		}
		metrics.RecordFallback(string(step), reason)
		m.logger.Warn("triage: collaborator failed, using fallback",
			slog.String("step", string(step)), slog.String("error", err.Error()))
		return fallback
	}
	return reply
}

// assess runs the terminal assessment and builds the recommendation set.
func (m *Machine) assess(ctx context.Context, session models.Session, history []models.Message) *Response {
	raw := ""
	if m.gen == nil {
		metrics.RecordFallback(string(models.StepAssess), "disabled")
	} else {
		convo := append(append([]models.Message(nil), history...),
			models.Message{Role: models.RoleUser, Content: summarize(session.Answers)})
		reply, err := m.generate(ctx, persona+"\n\n"+assessInstruction, convo,
			llm.Options{MaxTokens: m.cfg.MaxTokens * 2, Temperature: m.cfg.Temperature, JSON: true})
		if err != nil {
			metrics.RecordFallback(string(models.StepAssess), "error")
			m.logger.Warn("triage: assessment failed, using fallback", slog.String("error", err.Error()))
		}
		raw = reply
	}

	outcome := assess.Reconcile(assess.Parse(raw), session.Answers)
	if outcome.Crisis {
		metrics.RecordCrisisIntercept("assessment")
		m.logger.Warn("triage: assessment reported crisis", slog.String("session", session.ID))
		return crisisResponse(session)
	}

	recs := m.rec.BuildBestEffort(ctx, recommend.Input{
		Severity:  outcome.Severity,
		Category:  session.Answers.Category,
		Symptoms:  session.Answers.Symptoms,
		Location:  session.Answers.Location,
		Seed:      session.ID,
		Suggested: outcome.Suggestions,
	})
	session.Step = models.StepComplete
	return &Response{
		AIMessage:       outcome.Message,
		NextStep:        models.StepComplete,
		Severity:        outcome.Severity,
		Recommendations: recs,
		NextSteps:       outcome.NextSteps,
		Session:         session,
	}
}

// generate calls the collaborator under the configured timeout.
func (m *Machine) generate(ctx context.Context, system string, convo []models.Message, opts llm.Options) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, m.cfg.Timeout)
	defer cancel()
	reply, err := m.gen.Chat(ctx, system, convo, opts)
	if err != nil {
		return "", err
	}
	reply = strings.TrimSpace(reply)
	if reply == "" {
		return "", llm.ErrEmptyResponse
	}
	return reply, nil
}

func crisisResponse(session models.Session) *Response {
	b := crisis.NewBundle()
	session.Crisis = true
	session.Step = models.StepCrisis
	return &Response{
		AIMessage:       b.Message,
		NextStep:        models.StepCrisis,
		IsCrisis:        true,
		Severity:        models.SeverityCrisis,
		Recommendations: &b.Recommendations,
		NextSteps:       b.NextSteps,
		Session:         session,
	}
}

// validMessages drops messages that are not user or assistant turns with
// non-empty, bounded content.
func validMessages(in []models.Message) []models.Message {
	out := make([]models.Message, 0, len(in))
	for _, msg := range in {
		msg.Role = strings.ToLower(strings.TrimSpace(msg.Role))
		err := validation.ValidateStruct(&msg,
			validation.Field(&msg.Role, validation.Required, validation.In(models.RoleUser, models.RoleAssistant)),
			validation.Field(&msg.Content, validation.Required, validation.RuneLength(1, maxMessageLen)),
		)
		if err != nil {
			continue
		}
		out = append(out, msg)
	}
	return out
}
