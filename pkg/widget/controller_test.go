package widget

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/igorsilveira/faqbot/pkg/chatapi"
)

type fakeAsker struct {
	mu        sync.Mutex
	questions []string
	respond   func(question string) (*chatapi.ChatResponse, error)
}

func (f *fakeAsker) Ask(ctx context.Context, question string) (*chatapi.ChatResponse, error) {
	f.mu.Lock()
	f.questions = append(f.questions, question)
	f.mu.Unlock()
	return f.respond(question)
}

func (f *fakeAsker) calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.questions)
}

func fixedClock() time.Time {
	return time.Date(2024, 5, 1, 15, 4, 0, 0, time.UTC)
}

func newTestController(asker Asker, opts ...Option) *Controller {
	base := []Option{
		WithClock(fixedClock),
		WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))),
	}
	return New(asker, append(base, opts...)...)
}

func assertSettled(t *testing.T, c *Controller) {
	t.Helper()
	if !c.InputEnabled() {
		t.Error("input still disabled after send")
	}
	if c.Typing() {
		t.Error("typing indicator still shown after send")
	}
	if c.State() != StateIdle {
		t.Errorf("State = %s, want idle", c.State())
	}
}

func TestSubmitBlankIsNoOp(t *testing.T) {
	asker := &fakeAsker{respond: func(string) (*chatapi.ChatResponse, error) {
		t.Fatal("blank input issued a request")
		return nil, nil
	}}
	c := newTestController(asker)

	for _, in := range []string{"", "   ", "\t\n "} {
		if got := c.Submit(context.Background(), in); got != StateIdle {
			t.Errorf("Submit(%q) = %s, want idle", in, got)
		}
	}
	if c.Len() != 0 {
		t.Errorf("transcript len = %d, want 0", c.Len())
	}
	if asker.calls() != 0 {
		t.Errorf("requests = %d, want 0", asker.calls())
	}
	assertSettled(t, c)
}

func TestBeginAppendsUserMessageBeforeResponse(t *testing.T) {
	c := newTestController(nil)

	q, ok := c.Begin("  Hello  ")
	if !ok {
		t.Fatal("Begin returned false")
	}
	if q != "Hello" {
		t.Errorf("question = %q, want Hello", q)
	}

	msgs := c.Messages()
	if len(msgs) != 1 {
		t.Fatalf("len = %d, want 1", len(msgs))
	}
	if msgs[0].Text != "Hello" || msgs[0].Sender != SenderUser {
		t.Errorf("message = %+v", msgs[0])
	}
	if msgs[0].Timestamp != "03:04 PM" {
		t.Errorf("Timestamp = %q, want 03:04 PM", msgs[0].Timestamp)
	}
	if c.InputEnabled() {
		t.Error("input enabled while sending")
	}
	if !c.Typing() {
		t.Error("typing indicator hidden while sending")
	}
	if c.State() != StateSending {
		t.Errorf("State = %s, want sending", c.State())
	}

	if _, ok := c.Begin("again"); ok {
		t.Error("Begin succeeded while input disabled")
	}
	if c.Len() != 1 {
		t.Errorf("len = %d after rejected Begin, want 1", c.Len())
	}
}

func TestSubmitSuccessWithConfidence(t *testing.T) {
	asker := &fakeAsker{respond: func(string) (*chatapi.ChatResponse, error) {
		return &chatapi.ChatResponse{Answer: "Hi there", Confidence: chatapi.Float(0.87)}, nil
	}}
	c := newTestController(asker)

	if got := c.Submit(context.Background(), "Hello"); got != StateSucceeded {
		t.Fatalf("Submit = %s, want succeeded", got)
	}

	msgs := c.Messages()
	if len(msgs) != 2 {
		t.Fatalf("len = %d, want 2", len(msgs))
	}
	bot := msgs[1]
	if bot.Sender != SenderBot || bot.Text != "Hi there" {
		t.Errorf("bot message = %+v", bot)
	}
	if bot.Badge() != "Confidence: 87.0%" {
		t.Errorf("Badge = %q, want %q", bot.Badge(), "Confidence: 87.0%")
	}
	if bot.Failed {
		t.Error("success marked as failed")
	}
	assertSettled(t, c)
}

func TestSubmitSuccessWithoutBadge(t *testing.T) {
	tests := []struct {
		name string
		conf *float64
	}{
		{"zero", chatapi.Float(0)},
		{"absent", nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			asker := &fakeAsker{respond: func(string) (*chatapi.ChatResponse, error) {
				return &chatapi.ChatResponse{Answer: "ok", Confidence: tt.conf}, nil
			}}
			c := newTestController(asker)
			c.Submit(context.Background(), "q")

			msgs := c.Messages()
			if got := msgs[len(msgs)-1].Badge(); got != "" {
				t.Errorf("Badge = %q, want none", got)
			}
		})
	}
}

func TestSubmitFailureShowsError(t *testing.T) {
	asker := &fakeAsker{respond: func(string) (*chatapi.ChatResponse, error) {
		return nil, errors.New("connection refused")
	}}
	c := newTestController(asker)

	if got := c.Submit(context.Background(), "Hello"); got != StateFailed {
		t.Fatalf("Submit = %s, want failed", got)
	}

	msgs := c.Messages()
	if len(msgs) != 2 {
		t.Fatalf("len = %d, want 2", len(msgs))
	}
	last := msgs[1]
	if last.Sender != SenderBot || !last.Failed {
		t.Errorf("error message = %+v", last)
	}
	want := "Sorry, I encountered an error: connection refused. Please try again."
	if last.Text != want {
		t.Errorf("Text = %q, want %q", last.Text, want)
	}
	if last.Badge() != "" {
		t.Error("error message carries a badge")
	}
	assertSettled(t, c)
}

func TestSubmitPanickingAskerSettles(t *testing.T) {
	asker := &fakeAsker{respond: func(string) (*chatapi.ChatResponse, error) {
		panic("boom")
	}}
	c := newTestController(asker)

	if got := c.Submit(context.Background(), "Hello"); got != StateFailed {
		t.Fatalf("Submit = %s, want failed", got)
	}
	msgs := c.Messages()
	if !strings.Contains(msgs[len(msgs)-1].Text, "boom") {
		t.Errorf("Text = %q", msgs[len(msgs)-1].Text)
	}
	assertSettled(t, c)
}

func TestFinishNilResponseIsFailure(t *testing.T) {
	c := newTestController(nil)
	c.Begin("q")
	if got := c.Finish(nil, nil); got != StateFailed {
		t.Errorf("Finish = %s, want failed", got)
	}
	assertSettled(t, c)
}

func TestSubmitWithoutAskerFails(t *testing.T) {
	c := newTestController(nil)
	if got := c.Submit(context.Background(), "q"); got != StateFailed {
		t.Errorf("Submit = %s, want failed", got)
	}
	assertSettled(t, c)
}

func TestSequentialSendsPreserveOrder(t *testing.T) {
	asker := &fakeAsker{respond: func(q string) (*chatapi.ChatResponse, error) {
		if q == "two" {
			return nil, errors.New("down")
		}
		return &chatapi.ChatResponse{Answer: "re: " + q}, nil
	}}
	c := newTestController(asker)

	for _, q := range []string{"one", "two", "three"} {
		c.Submit(context.Background(), q)
	}

	msgs := c.Messages()
	want := []struct {
		sender Sender
		prefix string
	}{
		{SenderUser, "one"},
		{SenderBot, "re: one"},
		{SenderUser, "two"},
		{SenderBot, "Sorry, I encountered an error: down"},
		{SenderUser, "three"},
		{SenderBot, "re: three"},
	}
	if len(msgs) != len(want) {
		t.Fatalf("len = %d, want %d", len(msgs), len(want))
	}
	for i, w := range want {
		if msgs[i].Sender != w.sender || !strings.HasPrefix(msgs[i].Text, w.prefix) {
			t.Errorf("msgs[%d] = %s %q, want %s %q", i, msgs[i].Sender, msgs[i].Text, w.sender, w.prefix)
		}
	}
}

func TestEventSequence(t *testing.T) {
	var events []EventKind
	asker := &fakeAsker{respond: func(string) (*chatapi.ChatResponse, error) {
		return &chatapi.ChatResponse{Answer: "a"}, nil
	}}
	c := newTestController(asker, WithObserver(func(ev Event) {
		events = append(events, ev.Kind)
	}))

	c.Submit(context.Background(), "q")

	want := []EventKind{
		EventMessageAppended,
		EventInputCleared,
		EventInputDisabled,
		EventTypingShown,
		EventMessageAppended,
		EventTypingHidden,
		EventInputEnabled,
	}
	if len(events) != len(want) {
		t.Fatalf("events = %v, want %v", events, want)
	}
	for i := range want {
		if events[i] != want[i] {
			t.Errorf("events[%d] = %d, want %d", i, events[i], want[i])
		}
	}
}

func TestSubmitAgainstHTTPServer(t *testing.T) {
	inFlight := make(chan struct{})
	proceed := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		close(inFlight)
		<-proceed
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusInternalServerError)
		io.WriteString(w, `{"detail":"server overloaded"}`)
	}))
	defer srv.Close()

	c := newTestController(chatapi.NewClient(srv.URL + "/api"))

	done := make(chan State, 1)
	go func() { done <- c.Submit(context.Background(), "Hello") }()

	select {
	case <-inFlight:
	case <-time.After(2 * time.Second):
		t.Fatal("request never reached the server")
	}

	msgs := c.Messages()
	if len(msgs) != 1 || msgs[0].Text != "Hello" {
		t.Fatalf("transcript while in flight = %+v", msgs)
	}
	if c.InputEnabled() || !c.Typing() {
		t.Error("expected disabled input and visible indicator while in flight")
	}
	close(proceed)

	select {
	case got := <-done:
		if got != StateFailed {
			t.Errorf("Submit = %s, want failed", got)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Submit did not return")
	}

	msgs = c.Messages()
	if !strings.Contains(msgs[len(msgs)-1].Text, "server overloaded") {
		t.Errorf("error text = %q", msgs[len(msgs)-1].Text)
	}
	assertSettled(t, c)
}
