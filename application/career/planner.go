package career

import (
	"context"
	"fmt"
	"strings"

	"career-coach/application/llmjson"
	"career-coach/domain"
)

func plannerPrompt(req domain.ProjectRequest) string {
	return fmt.Sprintf(`You are an expert project manager and technical architect. Create a comprehensive project plan:

Project Idea: %q
Domain: %s
Duration: %s
Team Size: %s
Complexity: %s

CRITICAL: Respond ONLY with valid JSON. No markdown, no code blocks, no explanations.

Return this JSON:
{
  "overview": "2-3 sentence project overview",
  "requirements": [
    "List all functional requirements",
    "Include recommended technologies, frameworks, programming languages, and tools (e.g., React, Node.js, MongoDB, AWS, etc.)"
  ],
  "roadmap": ["step1","step2","step3","step4","step5","step6","step7","step8"],
  "roles": [
    {"role":"Role Name", "responsibilities":["resp1","resp2","resp3"]}
  ],
  "timeline": [
    {"milestone":"Milestone Name","time":"X weeks"}
  ],
  "deliverables": ["deliverable1","deliverable2"],
  "risks": ["risk1","risk2"],
  "suggestions": "Detailed suggestions with specific tech stack and best practices"
}

Focus especially on including the full recommended technology stack (front-end, back-end, database, deployment tools) in the "requirements".`,
		req.Idea, req.Domain, req.Duration, req.TeamSize, req.Complexity)
}

func fallbackPlan(req domain.ProjectRequest) domain.ProjectPlan {
	return domain.ProjectPlan{
		Overview:     fmt.Sprintf("A %s %s project: %s", req.Complexity, req.Domain, req.Idea),
		Requirements: []string{"Requirement 1", "Requirement 2", "Requirement 3"},
		Roadmap: []string{
			"Define scope",
			"Set up environment",
			"Develop core features",
			"Testing & QA",
			"Deployment",
			"Documentation",
		},
		Roles: []domain.ProjectRole{
			{Role: "Developer", Responsibilities: []string{"Code", "Test", "Deploy"}},
		},
		Timeline: []domain.Milestone{
			{Milestone: "Planning", Time: "1 week"},
			{Milestone: "Development", Time: "3 weeks"},
		},
		Deliverables: []string{"Source code", "Documentation"},
		Risks:        []string{"Risk 1", "Risk 2", "Risk 3"},
		Suggestions:  "Recommended tools: Git, Docker, Node.js",
	}
}

type rawPlan struct {
	Overview     any `json:"overview"`
	Requirements any `json:"requirements"`
	Roadmap      any `json:"roadmap"`
	Roles        any `json:"roles"`
	Timeline     any `json:"timeline"`
	Deliverables any `json:"deliverables"`
	Risks        any `json:"risks"`
	Suggestions  any `json:"suggestions"`
}

// PlanProject drafts a project plan, filling gaps from a templated plan.
func (s *Service) PlanProject(ctx context.Context, req domain.ProjectRequest) (domain.ProjectPlan, error) {
	for _, f := range []struct{ name, value string }{
		{"idea", req.Idea},
		{"domain", req.Domain},
		{"duration", req.Duration},
		{"teamSize", req.TeamSize},
		{"complexity", req.Complexity},
	} {
		if err := domain.Required(f.name, f.value); err != nil {
			return domain.ProjectPlan{}, err
		}
	}
	logger := s.log.WithField("domain", req.Domain)

	reply, err := s.planner.Complete(ctx, domain.CompletionRequest{
		Prompt:      plannerPrompt(req),
		Temperature: 0.4,
		JSON:        true,
	})
	if err != nil {
		logger.WithError(err).Warn("project plan generation failed, using fallback")
		s.metrics.IncrementFallbacks()
		plan := fallbackPlan(req)
		plan.Fallback = true
		plan.Error = fmt.Sprintf("Gemini API failed → fallback mode: %v", err)
		return plan, nil
	}

	raw, _, err := llmjson.Decode[rawPlan](reply)
	if err != nil {
		logger.WithError(err).Warn("project plan reply unusable, using fallback")
		s.metrics.IncrementFallbacks()
		plan := fallbackPlan(req)
		plan.Fallback = true
		return plan, nil
	}
	return mergePlan(fallbackPlan(req), raw), nil
}

func mergePlan(base domain.ProjectPlan, raw rawPlan) domain.ProjectPlan {
	text(&base.Overview, raw.Overview)
	list(&base.Requirements, raw.Requirements)
	list(&base.Roadmap, raw.Roadmap)
	if roles := projectRoles(raw.Roles); len(roles) > 0 {
		base.Roles = roles
	}
	if timeline := milestones(raw.Timeline); len(timeline) > 0 {
		base.Timeline = timeline
	}
	list(&base.Deliverables, raw.Deliverables)
	list(&base.Risks, raw.Risks)
	text(&base.Suggestions, raw.Suggestions)
	return base
}

func projectRoles(v any) []domain.ProjectRole {
	items, ok := v.([]any)
	if !ok {
		return nil
	}
	var out []domain.ProjectRole
	for _, item := range items {
		obj, ok := item.(map[string]any)
		if !ok {
			continue
		}
		role := strings.TrimSpace(llmjson.String(obj["role"]))
		if role == "" {
			continue
		}
		resp := llmjson.Strings(obj["responsibilities"])
		if resp == nil {
			resp = []string{}
		}
		out = append(out, domain.ProjectRole{Role: role, Responsibilities: resp})
	}
	return out
}

func milestones(v any) []domain.Milestone {
	items, ok := v.([]any)
	if !ok {
		return nil
	}
	var out []domain.Milestone
	for _, item := range items {
		obj, ok := item.(map[string]any)
		if !ok {
			continue
		}
		name := strings.TrimSpace(llmjson.String(obj["milestone"]))
		if name == "" {
			continue
		}
		out = append(out, domain.Milestone{Milestone: name, Time: strings.TrimSpace(llmjson.String(obj["time"]))})
	}
	return out
}
