package config

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// RolePlaceholder is replaced with the interview role in fallback texts.
const RolePlaceholder = "{role}"

// Slot describes one question position of the interview.
type Slot struct {
	Number           int      `yaml:"number"`
	Focus            string   `yaml:"focus"`
	FallbackQuestion string   `yaml:"fallback_question"`
	FallbackFeedback []string `yaml:"fallback_feedback"`
}

// InterviewPlan is the static slot table the sequencer walks through.
type InterviewPlan struct {
	Slots []Slot `yaml:"slots"`
}

func DefaultInterviewPlan() *InterviewPlan {
	return &InterviewPlan{Slots: []Slot{
		{
			Number:           1,
			Focus:            "introduction and background",
			FallbackQuestion: "Tell me about yourself and what interests you about this {role} position.",
			FallbackFeedback: []string{
				"Good introduction, but try to be more specific about your relevant experience.",
				"Connect your background more directly to the {role} requirements.",
			},
		},
		{
			Number:           2,
			Focus:            "technical skills and experience",
			FallbackQuestion: "What technical skills and experience do you have that make you suitable for this {role} role?",
			FallbackFeedback: []string{
				"Provide more concrete examples of your technical skills in action.",
				"Quantify your experience with specific projects or achievements.",
			},
		},
		{
			Number:           3,
			Focus:            "problem-solving scenario",
			FallbackQuestion: "Describe a challenging problem you've solved in your previous work. How did you approach it?",
			FallbackFeedback: []string{
				"Great problem-solving example! Consider adding more detail about your thought process.",
				"Explain the impact or results of your solution.",
			},
		},
		{
			Number:           4,
			Focus:            "behavioral situation",
			FallbackQuestion: "Tell me about a time when you had to work under pressure or meet a tight deadline.",
			FallbackFeedback: []string{
				"Good example of working under pressure. Add more details about time management strategies.",
				"Describe what you learned from this experience.",
			},
		},
		{
			Number:           5,
			Focus:            "future goals and company fit",
			FallbackQuestion: "Where do you see yourself in 5 years, and how does this {role} position fit your career goals?",
			FallbackFeedback: []string{
				"Clear career goals. Better align them with this specific {role} opportunity.",
				"Show more research about the company and role.",
			},
		},
	}}
}

// LoadInterviewPlan reads a slot table from a YAML file. An empty path
// yields the built-in table.
func LoadInterviewPlan(filename string, totalSlots int) (*InterviewPlan, error) {
	if filename == "" {
		return DefaultInterviewPlan(), nil
	}

	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("read interview config %s: %w", filename, err)
	}

	var plan InterviewPlan
	if err := yaml.Unmarshal(data, &plan); err != nil {
		return nil, fmt.Errorf("parse interview config %s: %w", filename, err)
	}

	if err := plan.Validate(totalSlots); err != nil {
		return nil, fmt.Errorf("invalid interview config %s: %w", filename, err)
	}
	return &plan, nil
}

func (p *InterviewPlan) Validate(totalSlots int) error {
	if len(p.Slots) != totalSlots {
		return fmt.Errorf("expected %d slots, got %d", totalSlots, len(p.Slots))
	}
	for i, slot := range p.Slots {
		if slot.Number != i+1 {
			return fmt.Errorf("slot %d has number %d, expected %d", i, slot.Number, i+1)
		}
		if strings.TrimSpace(slot.Focus) == "" {
			return fmt.Errorf("slot %d must have a focus", slot.Number)
		}
		if strings.TrimSpace(slot.FallbackQuestion) == "" {
			return fmt.Errorf("slot %d must have a fallback_question", slot.Number)
		}
		if len(slot.FallbackFeedback) == 0 {
			return fmt.Errorf("slot %d must have at least one fallback_feedback entry", slot.Number)
		}
	}
	return nil
}

// Slot returns the slot with the given 1-based number.
func (p *InterviewPlan) Slot(number int) (Slot, bool) {
	if number < 1 || number > len(p.Slots) {
		return Slot{}, false
	}
	return p.Slots[number-1], true
}

// WithRole substitutes the role placeholder.
func WithRole(text, role string) string {
	return strings.ReplaceAll(text, RolePlaceholder, role)
}
