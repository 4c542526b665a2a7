// Package widget implements the chat widget controller: the transcript, the
// input and typing-indicator state, and the send lifecycle around a single
// in-flight request. Rendering layers (the terminal UI, the ask command)
// read its state and subscribe to its events.
package widget

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/igorsilveira/faqbot/pkg/chatapi"
)

type Asker interface {
	Ask(ctx context.Context, question string) (*chatapi.ChatResponse, error)
}

type EventKind int

const (
	EventMessageAppended EventKind = iota
	EventInputCleared
	EventInputEnabled
	EventInputDisabled
	EventTypingShown
	EventTypingHidden
)

type Event struct {
	Kind    EventKind
	Message Message
}

type Option func(*Controller)

func WithClock(now func() time.Time) Option {
	return func(c *Controller) { c.now = now }
}

func WithLogger(logger *slog.Logger) Option {
	return func(c *Controller) { c.logger = logger }
}

// WithObserver registers fn to receive every UI event. fn is called without
// the controller lock held and may read controller state.
func WithObserver(fn func(Event)) Option {
	return func(c *Controller) { c.observer = fn }
}

type Controller struct {
	asker    Asker
	now      func() time.Time
	logger   *slog.Logger
	observer func(Event)

	mu           sync.RWMutex
	transcript   Transcript
	state        State
	inputEnabled bool
	typing       bool
}

func New(asker Asker, opts ...Option) *Controller {
	c := &Controller{
		asker:        asker,
		now:          time.Now,
		logger:       slog.Default(),
		state:        StateIdle,
		inputEnabled: true,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Submit runs one full send: Begin, the request, then OnResponse or
// OnFailure. It returns StateIdle when text was blank or input was disabled,
// otherwise the outcome of the send.
func (c *Controller) Submit(ctx context.Context, text string) State {
	question, ok := c.Begin(text)
	if !ok {
		return StateIdle
	}
	resp, err := c.Request(ctx, question)
	return c.Finish(resp, err)
}

// Begin starts a send for text. Blank text, or a send while input is
// disabled, is a no-op and returns false.
func (c *Controller) Begin(text string) (string, bool) {
	question := strings.TrimSpace(text)
	if question == "" {
		return "", false
	}

	c.mu.Lock()
	if !c.inputEnabled || c.state != StateIdle {
		c.mu.Unlock()
		return "", false
	}
	msg := Message{
		Text:      question,
		Sender:    SenderUser,
		Timestamp: c.now().Format(TimeLayout),
	}
	c.transcript.Append(msg)
	c.state = StateSending
	c.mu.Unlock()

	c.emit(Event{Kind: EventMessageAppended, Message: msg})
	c.emit(Event{Kind: EventInputCleared})
	c.SetInputEnabled(false)
	c.setTyping(true)
	return question, true
}

// Request performs the outbound exchange. A panicking Asker is reported as
// an error so the send still settles.
func (c *Controller) Request(ctx context.Context, question string) (resp *chatapi.ChatResponse, err error) {
	defer func() {
		if r := recover(); r != nil {
			resp, err = nil, fmt.Errorf("unexpected failure: %v", r)
		}
	}()
	if c.asker == nil {
		return nil, errors.New("no chat endpoint configured")
	}
	return c.asker.Ask(ctx, question)
}

// Finish dispatches the result of Request and returns the outcome.
func (c *Controller) Finish(resp *chatapi.ChatResponse, err error) State {
	if err != nil {
		c.OnFailure(err)
		return StateFailed
	}
	if resp == nil {
		c.OnFailure(errors.New("empty response from server"))
		return StateFailed
	}
	c.OnResponse(*resp)
	return StateSucceeded
}

func (c *Controller) OnResponse(resp chatapi.ChatResponse) {
	defer c.settle(StateSucceeded)

	msg := Message{
		Text:       resp.Answer,
		Sender:     SenderBot,
		Timestamp:  c.now().Format(TimeLayout),
		Confidence: resp.Confidence,
	}
	c.append(msg)
}

func (c *Controller) OnFailure(err error) {
	defer c.settle(StateFailed)

	c.logger.Error("chat request failed", slog.String("err", err.Error()))

	msg := Message{
		Text:      fmt.Sprintf("Sorry, I encountered an error: %s. Please try again.", err.Error()),
		Sender:    SenderBot,
		Timestamp: c.now().Format(TimeLayout),
		Failed:    true,
	}
	c.append(msg)
}

// SetInputEnabled toggles the input field and send control. Renderers move
// keyboard focus back to the field on EventInputEnabled.
func (c *Controller) SetInputEnabled(enabled bool) {
	c.mu.Lock()
	c.inputEnabled = enabled
	c.mu.Unlock()

	if enabled {
		c.emit(Event{Kind: EventInputEnabled})
	} else {
		c.emit(Event{Kind: EventInputDisabled})
	}
}

func (c *Controller) settle(outcome State) {
	c.mu.Lock()
	if c.state.canTransition(outcome) {
		c.state = outcome
	}
	c.mu.Unlock()

	c.setTyping(false)
	c.SetInputEnabled(true)

	c.mu.Lock()
	c.state = StateIdle
	c.mu.Unlock()
}

func (c *Controller) append(msg Message) {
	c.mu.Lock()
	c.transcript.Append(msg)
	c.mu.Unlock()
	c.emit(Event{Kind: EventMessageAppended, Message: msg})
}

func (c *Controller) setTyping(visible bool) {
	c.mu.Lock()
	c.typing = visible
	c.mu.Unlock()

	if visible {
		c.emit(Event{Kind: EventTypingShown})
	} else {
		c.emit(Event{Kind: EventTypingHidden})
	}
}

func (c *Controller) emit(ev Event) {
	if c.observer != nil {
		c.observer(ev)
	}
}

func (c *Controller) Messages() []Message {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.transcript.Messages()
}

func (c *Controller) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.transcript.Len()
}

func (c *Controller) State() State {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.state
}

func (c *Controller) InputEnabled() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.inputEnabled
}

func (c *Controller) Typing() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.typing
}
