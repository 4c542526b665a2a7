package gateway

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/igorsilveira/faqbot/pkg/chatapi"
	"github.com/igorsilveira/faqbot/pkg/faq"
	"github.com/igorsilveira/faqbot/pkg/store"
	"github.com/igorsilveira/faqbot/pkg/telemetry"
	"go.opentelemetry.io/otel/attribute"
)

const (
	detailUnavailable = "Chatbot service is not available. Please check the FAQ data file."
	transportHTTP     = "http"
	transportWS       = "websocket"
)

var errMissingQuestion = errors.New("question is required")

// chatBody distinguishes an absent question from an empty one.
type chatBody struct {
	Question *string `json:"question"`
}

func decodeQuestion(data []byte) (string, error) {
	var body chatBody
	if err := json.Unmarshal(data, &body); err != nil {
		return "", fmt.Errorf("invalid request body: %w", err)
	}
	if body.Question == nil {
		return "", errMissingQuestion
	}
	return *body.Question, nil
}

func (g *Gateway) handleChat(w http.ResponseWriter, r *http.Request) {
	var raw json.RawMessage
	if err := json.NewDecoder(r.Body).Decode(&raw); err != nil {
		respondError(w, http.StatusUnprocessableEntity, "invalid request body")
		return
	}
	question, err := decodeQuestion(raw)
	if err != nil {
		respondError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}

	engine := g.Engine()
	if engine == nil {
		respondError(w, http.StatusServiceUnavailable, detailUnavailable)
		return
	}

	resp, err := g.answer(r.Context(), engine, question, transportHTTP)
	if err != nil {
		respondError(w, http.StatusInternalServerError, fmt.Sprintf("Error processing question: %s", err))
		return
	}
	respondJSON(w, http.StatusOK, resp)
}

// answer runs the engine for question, records the result and converts it to
// the wire type. A panicking engine is reported as an error.
func (g *Gateway) answer(ctx context.Context, engine Engine, question, transport string) (resp chatapi.ChatResponse, err error) {
	ctx, span := telemetry.StartSpan(ctx, "faq.respond",
		attribute.String("faq.transport", transport),
		attribute.Int("faq.question_length", len(question)),
	)
	defer func() { telemetry.EndSpan(span, err) }()

	var out faq.Response
	func() {
		defer func() {
			if r := recover(); r != nil {
				err = fmt.Errorf("%v", r)
			}
		}()
		out = engine.Respond(question)
	}()
	if err != nil {
		telemetry.Metrics.ErrorsTotal.WithLabelValues("engine").Inc()
		g.logger.Error("faq engine failed",
			slog.String("transport", transport),
			slog.String("err", err.Error()),
		)
		return chatapi.ChatResponse{}, err
	}

	span.SetAttributes(
		attribute.String("faq.outcome", string(out.Outcome)),
		attribute.Float64("faq.confidence", out.Confidence),
	)
	telemetry.Metrics.QuestionsTotal.WithLabelValues(string(out.Outcome)).Inc()
	if out.Outcome == faq.OutcomeMatched || out.Outcome == faq.OutcomeUnmatched {
		telemetry.Metrics.MatchConfidence.Observe(out.Confidence)
	}

	g.record(ctx, question, out, transport)

	return toWire(out), nil
}

func (g *Gateway) record(ctx context.Context, question string, out faq.Response, transport string) {
	if g.queryLog == nil || out.Outcome == faq.OutcomeEmpty {
		return
	}
	err := g.queryLog.Record(ctx, store.Entry{
		Question:        faq.CleanText(question),
		Answer:          out.Answer,
		Confidence:      out.Confidence,
		Category:        out.Category,
		MatchedQuestion: out.MatchedQuestion,
		Matched:         out.Outcome == faq.OutcomeMatched,
		Transport:       transport,
	})
	if err != nil {
		telemetry.Metrics.ErrorsTotal.WithLabelValues("query_log").Inc()
		g.logger.Warn("failed to record question",
			slog.String("transport", transport),
			slog.String("err", err.Error()),
		)
	}
}

func toWire(out faq.Response) chatapi.ChatResponse {
	resp := chatapi.ChatResponse{
		Answer:     out.Answer,
		Confidence: chatapi.Float(out.Confidence),
	}
	if out.MatchedQuestion != "" {
		resp.MatchedQuestion = chatapi.String(out.MatchedQuestion)
	}
	if out.Category != "" {
		resp.Category = chatapi.String(out.Category)
	}
	return resp
}

func (g *Gateway) handleFAQs(w http.ResponseWriter, r *http.Request) {
	engine := g.Engine()
	if engine == nil {
		respondError(w, http.StatusServiceUnavailable, "Chatbot service is not available.")
		return
	}

	faqs := engine.FAQs()
	out := make([]chatapi.FAQ, 0, len(faqs))
	for _, f := range faqs {
		item := chatapi.FAQ{ID: f.ID, Question: f.Question, Answer: f.Answer}
		if strings.TrimSpace(f.Category) != "" {
			item.Category = chatapi.String(f.Category)
		}
		out = append(out, item)
	}
	respondJSON(w, http.StatusOK, out)
}

func (g *Gateway) handleHealth(w http.ResponseWriter, r *http.Request) {
	h := chatapi.Health{Status: "healthy"}
	if engine := g.Engine(); engine != nil {
		h.ChatbotInitialized = true
		h.FAQCount = len(engine.FAQs())
	}
	respondJSON(w, http.StatusOK, h)
}
