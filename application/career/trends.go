package career

import (
	"context"
	"fmt"
	"strings"

	"career-coach/application/llmjson"
	"career-coach/domain"
)

func trendsPrompt(topic string) string {
	return fmt.Sprintf(`You are a senior industry analyst and career advisor. Provide a comprehensive, detailed analysis for: %q.

CRITICAL: Respond ONLY with valid JSON. No markdown, no code blocks, no explanations.

Return this exact JSON structure:
{
  "overview": "4-5 sentence overview of %s",
  "roadmap": "step-by-step learning path",
  "certifications": ["cert1", "cert2"],
  "skills": [
    {"name": "Skill 1", "demand": 90},
    {"name": "Skill 2", "demand": 80}
  ],
  "jobs": "roles with salary ranges",
  "news": ["news1", "news2"],
  "advice": "career advice",
  "marketSize": "market size info",
  "growth": "growth rate",
  "jobGrowth": "job growth outlook",
  "keyTakeaways": ["point1", "point2"]
}`, topic, topic)
}

// fallbackTrends is the templated report used for missing fields and when
// the capability fails.
func fallbackTrends(topic string) domain.TrendsReport {
	return domain.TrendsReport{
		Overview: fmt.Sprintf("The %s industry is growing rapidly with strong adoption across multiple sectors. "+
			"Demand for skilled professionals continues to rise as businesses seek innovation in %s.", topic, topic),
		Roadmap: "1. Foundations → 2. Intermediate Tools → 3. Advanced Projects → 4. Specialization",
		Certifications: []string{
			topic + " Professional Certificate",
			"Advanced " + topic + " Specialist",
			"Cloud " + topic + " Certification",
		},
		Skills: []domain.SkillDemand{
			{Name: topic + " Fundamentals", Demand: 90},
			{Name: "System Design", Demand: 85},
			{Name: "Data Analysis", Demand: 80},
			{Name: "Problem Solving", Demand: 75},
		},
		Jobs: fmt.Sprintf("Entry: %s Developer ($65k–$90k), Mid: %s Engineer ($90k–$130k), Senior: %s Architect ($120k–$180k)",
			topic, topic, topic),
		News: []string{
			topic + " adoption is accelerating globally",
			"Investments in " + topic + " startups reached record highs",
		},
		Advice:     fmt.Sprintf("Build strong fundamentals in %s, work on real projects, and stay updated with new frameworks.", topic),
		MarketSize: "$40+ billion, CAGR ~20%",
		Growth:     "20% annual growth",
		JobGrowth:  "Projected 30% job growth over 5 years",
		KeyTakeaways: []string{
			topic + " skills are in high demand",
			"Practical projects matter more than theory",
			"Certifications help but portfolios win jobs",
		},
	}
}

type rawTrends struct {
	Overview       any `json:"overview"`
	Roadmap        any `json:"roadmap"`
	Certifications any `json:"certifications"`
	Skills         any `json:"skills"`
	Jobs           any `json:"jobs"`
	News           any `json:"news"`
	Advice         any `json:"advice"`
	MarketSize     any `json:"marketSize"`
	Growth         any `json:"growth"`
	JobGrowth      any `json:"jobGrowth"`
	KeyTakeaways   any `json:"keyTakeaways"`
}

// Trends reports on an industry topic. Fields the model leaves out or gets
// wrong are taken from the templated report; a failing capability yields the
// whole template with Fallback set.
func (s *Service) Trends(ctx context.Context, topic string) (domain.TrendsReport, error) {
	topic = strings.TrimSpace(topic)
	if topic == "" {
		return domain.TrendsReport{}, &domain.ValidationError{Field: "topic", Reason: "missing or invalid topic/technology"}
	}
	logger := s.log.WithField("topic", topic)

	reply, err := s.trends.Complete(ctx, domain.CompletionRequest{
		Prompt:          trendsPrompt(topic),
		Temperature:     0.2,
		MaxOutputTokens: 2000,
		JSON:            true,
	})
	if err != nil {
		logger.WithError(err).Warn("trends generation failed, using fallback")
		s.metrics.IncrementFallbacks()
		report := fallbackTrends(topic)
		report.Fallback = true
		report.Error = fmt.Sprintf("Gemini API failed → fallback mode: %v", err)
		return report, nil
	}

	raw, _, err := llmjson.Decode[rawTrends](reply)
	if err != nil {
		logger.WithError(err).Warn("trends reply unusable, using fallback")
		s.metrics.IncrementFallbacks()
		report := fallbackTrends(topic)
		report.Fallback = true
		return report, nil
	}
	return mergeTrends(fallbackTrends(topic), raw), nil
}

func mergeTrends(base domain.TrendsReport, raw rawTrends) domain.TrendsReport {
	text(&base.Overview, raw.Overview)
	text(&base.Roadmap, raw.Roadmap)
	list(&base.Certifications, raw.Certifications)
	if skills := skillDemands(raw.Skills); len(skills) > 0 {
		base.Skills = skills
	}
	text(&base.Jobs, raw.Jobs)
	list(&base.News, raw.News)
	text(&base.Advice, raw.Advice)
	text(&base.MarketSize, raw.MarketSize)
	text(&base.Growth, raw.Growth)
	text(&base.JobGrowth, raw.JobGrowth)
	list(&base.KeyTakeaways, raw.KeyTakeaways)
	return base
}

func skillDemands(v any) []domain.SkillDemand {
	items, ok := v.([]any)
	if !ok {
		return nil
	}
	var out []domain.SkillDemand
	for _, item := range items {
		obj, ok := item.(map[string]any)
		if !ok {
			continue
		}
		name := strings.TrimSpace(llmjson.String(obj["name"]))
		if name == "" {
			continue
		}
		demand, _ := llmjson.Int(obj["demand"])
		out = append(out, domain.SkillDemand{Name: name, Demand: llmjson.Clamp(demand, 0, 100)})
	}
	return out
}

// text overwrites dst with a non-blank scalar from v. Arrays are joined so a
// roadmap given as steps still reads as one string.
func text(dst *string, v any) {
	if items, ok := v.([]any); ok {
		if joined := strings.Join(llmjson.Strings(items), "\n"); joined != "" {
			*dst = joined
		}
		return
	}
	if _, ok := v.(map[string]any); ok {
		return
	}
	if s := strings.TrimSpace(llmjson.String(v)); s != "" {
		*dst = s
	}
}

// list overwrites dst with v when v is a non-empty array of strings.
func list(dst *[]string, v any) {
	if items, ok := llmjson.StringList(v); ok && len(items) > 0 {
		*dst = items
	}
}
