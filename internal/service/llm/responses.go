package llm

import (
	"fmt"
	"strings"

	domainllm "dharmabot/internal/domain/services/llm"
)

// responseTexts are the user-facing messages for each way a response can
// fail. blocked and interrupted take the provider's reason.
type responseTexts struct {
	blocked      string
	interrupted  string
	noCandidates string
	empty        string

	// safetyHint appends a follow-up sentence to interrupted messages.
	safetyHint bool
}

var (
	chatTexts = responseTexts{
		blocked:      "AI response was blocked. Reason: %s. Please revise your query or uploaded content.",
		interrupted:  "AI response generation was interrupted or flagged. Reason: %s.",
		noCandidates: "AI returned no actionable response or candidates. Please try rephrasing or check the uploaded content and API logs.",
		empty:        "AI returned a response, but the content is empty.",
		safetyHint:   true,
	}
	draftTexts = responseTexts{
		blocked:      "Error: AI document generation was blocked. Reason: %s. Please revise your instructions.",
		interrupted:  "Error: AI document generation was interrupted or flagged. Reason: %s.",
		noCandidates: "Error: AI returned no actionable response or candidates for the document draft. Please try rephrasing your instructions.",
		empty:        "Error: AI returned a response, but the document content is empty.",
	}
	transcribeTexts = responseTexts{
		blocked:      "Error: Audio transcription was blocked. Reason: %s.",
		interrupted:  "Error: Audio transcription was interrupted. Reason: %s.",
		noCandidates: "Error: AI returned no actionable response or candidates for the transcription.",
		empty:        "Error: AI returned a response, but the transcribed text is empty.",
	}
	polishTexts = responseTexts{
		blocked:      "Error: Legal note polishing was blocked. Reason: %s.",
		interrupted:  "Error: Note polishing was interrupted. Reason: %s.",
		noCandidates: "Error: AI returned no actionable response or candidates for note polishing.",
		empty:        "Error: AI returned a response, but the polished note is empty.",
	}
	researchTexts = responseTexts{
		blocked:      "Error: Research was blocked. Reason: %s.",
		interrupted:  "Error: Research was interrupted. Reason: %s.",
		noCandidates: "Error: AI returned no actionable response or candidates for the research.",
		empty:        "Error: AI returned a response, but the research content is empty.",
	}
	analyzeTexts = responseTexts{
		blocked:      "Error: Consultation analysis was blocked. Reason: %s.",
		interrupted:  "Error: Consultation analysis was interrupted. Reason: %s.",
		noCandidates: "Error: AI returned no actionable response or candidates for the consultation analysis.",
		empty:        "Error: AI returned a response, but the consultation analysis content is empty.",
	}
)

// mapResponse turns a provider response into a task result. Checks run in
// order: blocked prompt, missing candidate, abnormal finish, empty text.
// MAX_TOKENS counts as a normal finish.
func mapResponse(resp *domainllm.GenerateResponse, texts responseTexts) *domainllm.Result {
	if resp.BlockReason != "" {
		return &domainllm.Result{Text: fmt.Sprintf(texts.blocked, resp.BlockReason)}
	}

	hasText := strings.TrimSpace(resp.Text) != ""

	switch resp.FinishReason {
	case "":
		if !hasText {
			return &domainllm.Result{Text: texts.noCandidates}
		}
	case domainllm.FinishStop, domainllm.FinishMaxTokens:
	default:
		text := fmt.Sprintf(texts.interrupted, resp.FinishReason)
		if texts.safetyHint {
			if resp.FinishReason == domainllm.FinishSafety {
				text += " No specific safety details provided."
			} else {
				text += " Please review your input."
			}
		}
		return &domainllm.Result{Text: text}
	}

	if !hasText {
		return &domainllm.Result{Text: texts.empty}
	}

	return &domainllm.Result{Text: resp.Text, Sources: resp.Sources}
}
