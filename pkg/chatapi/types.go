// Package chatapi holds the JSON wire types of the chat endpoint and an HTTP
// client for it.
package chatapi

type ChatRequest struct {
	Question string `json:"question"`
}

type ChatResponse struct {
	Answer string `json:"answer"`
	// Confidence is optional on the wire; nil means the server sent none.
	Confidence      *float64 `json:"confidence,omitempty"`
	MatchedQuestion *string  `json:"matched_question"`
	Category        *string  `json:"category"`
}

type ErrorResponse struct {
	Detail string `json:"detail"`
}

type FAQ struct {
	ID       int     `json:"id"`
	Question string  `json:"question"`
	Answer   string  `json:"answer"`
	Category *string `json:"category"`
}

type Health struct {
	Status             string `json:"status"`
	ChatbotInitialized bool   `json:"chatbot_initialized"`
	FAQCount           int    `json:"faq_count"`
}

func Float(v float64) *float64 { return &v }

func String(v string) *string { return &v }
