package faq

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
)

type FAQ struct {
	ID       int    `json:"id"`
	Question string `json:"question"`
	Answer   string `json:"answer"`
	Category string `json:"category,omitempty"`
}

type file struct {
	FAQs []FAQ `json:"faqs"`
}

var ErrNoFAQs = errors.New("faq: no FAQs found in the file")

// LoadFile reads a {"faqs": [...]} document.
func LoadFile(path string) ([]FAQ, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("faq: FAQ file not found: %s", path)
		}
		return nil, fmt.Errorf("faq: reading %s: %w", path, err)
	}
	return Parse(data)
}

func Parse(data []byte) ([]FAQ, error) {
	var f file
	if err := json.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("faq: parsing FAQ file: %w", err)
	}
	if len(f.FAQs) == 0 {
		return nil, ErrNoFAQs
	}
	return f.FAQs, nil
}
