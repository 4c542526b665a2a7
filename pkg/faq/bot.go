package faq

import (
	"math"
	"regexp"
	"strings"
)

const (
	DefaultGreeting  = "Hello! How can I help you today?"
	DefaultGoodbye   = "Goodbye! If you need anything else, just ask. Have a great day!"
	DefaultFallback  = "I'm sorry, I couldn't find a relevant answer to your question. Please try rephrasing it or contact support for assistance."
	DefaultThreshold = 0.1

	emptyQuestionAnswer = "Please ask a question."

	CategoryGreeting = "smalltalk:greeting"
	CategoryGoodbye  = "smalltalk:goodbye"
)

var (
	greetingPattern = regexp.MustCompile(`(?i)\b(hi|hello|hey|greetings|good morning|good afternoon|good evening)\b`)
	goodbyePattern  = regexp.MustCompile(`(?i)\b(bye|goodbye|see you|see ya|take care|farewell)\b`)
)

type Outcome string

const (
	OutcomeEmpty     Outcome = "empty"
	OutcomeSmalltalk Outcome = "smalltalk"
	OutcomeMatched   Outcome = "matched"
	OutcomeUnmatched Outcome = "unmatched"
)

type Response struct {
	Answer          string
	Confidence      float64
	MatchedQuestion string
	Category        string
	Outcome         Outcome
}

type Options struct {
	Threshold float64
	Greeting  string
	Goodbye   string
	Fallback  string
}

type Bot struct {
	faqs  []FAQ
	index *Index
	opts  Options
}

func NewBot(faqs []FAQ, opts Options) (*Bot, error) {
	if len(faqs) == 0 {
		return nil, ErrNoFAQs
	}
	if opts.Threshold <= 0 {
		opts.Threshold = DefaultThreshold
	}
	if opts.Greeting == "" {
		opts.Greeting = DefaultGreeting
	}
	if opts.Goodbye == "" {
		opts.Goodbye = DefaultGoodbye
	}
	if opts.Fallback == "" {
		opts.Fallback = DefaultFallback
	}

	docs := make([][]string, len(faqs))
	for i, f := range faqs {
		docs[i] = Tokens(f.Question)
	}

	return &Bot{
		faqs:  faqs,
		index: NewIndex(docs),
		opts:  opts,
	}, nil
}

func LoadBot(path string, opts Options) (*Bot, error) {
	faqs, err := LoadFile(path)
	if err != nil {
		return nil, err
	}
	return NewBot(faqs, opts)
}

// FAQs returns a copy of the loaded entries.
func (b *Bot) FAQs() []FAQ {
	out := make([]FAQ, len(b.faqs))
	copy(out, b.faqs)
	return out
}

func (b *Bot) Threshold() float64 { return b.opts.Threshold }

// Match returns the best FAQ for question and its score, or nil when the
// score is below the threshold.
func (b *Bot) Match(question string) (*FAQ, float64) {
	i, score := b.index.Best(Tokens(question))
	if i < 0 || score < b.opts.Threshold {
		return nil, score
	}
	f := b.faqs[i]
	return &f, score
}

func (b *Bot) Respond(question string) Response {
	if strings.TrimSpace(question) == "" {
		return Response{Answer: emptyQuestionAnswer, Outcome: OutcomeEmpty}
	}

	if greetingPattern.MatchString(question) {
		return Response{
			Answer:     b.opts.Greeting,
			Confidence: 1,
			Category:   CategoryGreeting,
			Outcome:    OutcomeSmalltalk,
		}
	}
	if goodbyePattern.MatchString(question) {
		return Response{
			Answer:     b.opts.Goodbye,
			Confidence: 1,
			Category:   CategoryGoodbye,
			Outcome:    OutcomeSmalltalk,
		}
	}

	match, score := b.Match(question)
	if match == nil {
		return Response{
			Answer:     b.opts.Fallback,
			Confidence: round3(score),
			Outcome:    OutcomeUnmatched,
		}
	}
	return Response{
		Answer:          match.Answer,
		Confidence:      round3(score),
		MatchedQuestion: match.Question,
		Category:        match.Category,
		Outcome:         OutcomeMatched,
	}
}

func round3(v float64) float64 {
	return math.Round(v*1000) / 1000
}
