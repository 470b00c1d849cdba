package career

import (
	"context"
	"fmt"
	"strings"

	"career-coach/application/llmjson"
	"career-coach/domain"
)

const parseFailed = "parse_failed"

func resumePrompt(text string) string {
	return fmt.Sprintf(`You are an expert resume parser.
Convert the following RESUME TEXT into a strict JSON object only (no explanation).
Output MUST be valid JSON and nothing else. Use this schema:
{
  "personal": { "name": "", "email": "", "phone": "", "location": "" },
  "summary": "<one-line profile summary>",
  "education": [
    { "degree":"", "institution":"", "start":"", "end":"", "details":"" }
  ],
  "skills": ["skill1","skill2"],
  "experience": [
    { "title":"", "company":"", "start":"", "end":"", "bullets":["..."] }
  ],
  "projects": [
    { "name":"", "description":"", "tech":["..."], "link":"" }
  ]
}
Resume text:
"""%s"""`, text)
}

// ParseResume asks the resume completer for a structured resume. A reply that
// cannot be decoded is reported in the result, not as an error.
func (s *Service) ParseResume(ctx context.Context, text string) (domain.ResumeParseResult, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return domain.ResumeParseResult{}, &domain.ValidationError{Field: "text", Reason: "no resume text provided"}
	}

	reply, err := s.resume.Complete(ctx, domain.CompletionRequest{
		Prompt:          resumePrompt(text),
		Temperature:     0,
		MaxOutputTokens: 800,
		JSON:            true,
	})
	if err != nil {
		return domain.ResumeParseResult{}, err
	}
	reply = strings.TrimSpace(reply)

	resume, stage, err := llmjson.Decode[domain.Resume](reply)
	if err != nil {
		s.log.WithError(err).Warn("resume reply could not be decoded")
		return domain.ResumeParseResult{Error: parseFailed, Raw: reply}, nil
	}
	s.log.WithField("stage", stage).Debug("resume decoded")
	return domain.ResumeParseResult{Parsed: &resume}, nil
}

// UploadResult is the outcome of parsing an uploaded resume file.
type UploadResult struct {
	Text string `json:"text"`
	domain.ResumeParseResult
}

// ParseResumeFile extracts text from an uploaded document and parses it.
func (s *Service) ParseResumeFile(ctx context.Context, filename, mime string, data []byte) (UploadResult, error) {
	if s.extractor == nil {
		return UploadResult{}, fmt.Errorf("document extraction is not configured")
	}
	text, err := s.extractor.Extract(filename, mime, data)
	if err != nil {
		return UploadResult{}, err
	}
	res, err := s.ParseResume(ctx, text)
	if err != nil {
		return UploadResult{}, err
	}
	return UploadResult{Text: text, ResumeParseResult: res}, nil
}
