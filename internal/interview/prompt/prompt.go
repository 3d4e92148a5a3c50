// Package prompt builds the per-turn system prompt from the participant
// profile and the conductor state. The pipeline is stateless; the prompt is
// recomputed every turn and never persisted.
package prompt

import (
	"fmt"
	"strings"

	"beliefshift/internal/interview/entity"
)

// CompletionMarker is the exact literal the model emits at the end of a recap
// reply once the participant confirms the bullet themes. It is stripped
// before storage or client delivery.
const CompletionMarker = "##INTERVIEW_COMPLETE##"

// OpeningTemplates are the three opening lines keyed by (views_changed,
// has_description). %s receives the one-sentence paraphrase.
type OpeningTemplates struct {
	ChangedWithDescription string
	ChangedNoDescription   string
	Unchanged              string
}

// DefaultOpeningTemplates returns the stock opening lines.
func DefaultOpeningTemplates() OpeningTemplates {
	return OpeningTemplates{
		ChangedWithDescription: "Here's what you shared about how your views on climate change developed: %s. Did I capture that correctly?",
		ChangedNoDescription:   "You mentioned that your views on climate change have changed. Could you describe what changed for you?",
		Unchanged:              "I'd love to hear about your perspective on climate change. Could you share how you currently see it?",
	}
}

// OpeningLine renders the first assistant message per the anchor rule.
func OpeningLine(tpl OpeningTemplates, p entity.Profile) string {
	d := DefaultOpeningTemplates()
	changed := strings.EqualFold(strings.TrimSpace(p.ViewsChanged), "yes")
	desc := strings.TrimSpace(p.ChangeDescription)
	switch {
	case changed && desc != "":
		t := tpl.ChangedWithDescription
		if strings.TrimSpace(t) == "" {
			t = d.ChangedWithDescription
		}
		return fmt.Sprintf(t, Paraphrase(desc))
	case changed:
		if strings.TrimSpace(tpl.ChangedNoDescription) != "" {
			return tpl.ChangedNoDescription
		}
		return d.ChangedNoDescription
	default:
		if strings.TrimSpace(tpl.Unchanged) != "" {
			return tpl.Unchanged
		}
		return d.Unchanged
	}
}

const paraphraseMax = 160

// Paraphrase reduces a change description to a single anchor sentence: first
// sentence, lowercase lead-in, bounded length.
func Paraphrase(desc string) string {
	s := strings.TrimSpace(desc)
	if s == "" {
		return ""
	}
	if i := strings.IndexAny(s, ".!?"); i > 0 {
		s = s[:i]
	}
	s = strings.TrimSpace(s)
	if len(s) > paraphraseMax {
		s = strings.TrimSpace(s[:paraphraseMax]) + "..."
	}
	if s != "" {
		r := []rune(s)
		r[0] = []rune(strings.ToLower(string(r[0])))[0]
		s = string(r)
	}
	return "you said " + s
}

// Input collects everything the assembler needs for one turn.
type Input struct {
	Profile          entity.Profile
	State            entity.ConductorState
	IsSummaryRequest bool
	MaxBullets       int
}

// Assemble renders the full system prompt, sections in fixed order: role,
// participant anchors, response rules, stage guidance, warnings, narrative
// facts, completion contract.
func Assemble(in Input) string {
	var b strings.Builder

	b.WriteString("You are a friendly, curious, non-judgmental interviewer conducting a short research conversation about how the participant's views on climate change changed over time. You are not a therapist, an expert, or an advocate. Your only job is to help them tell their story.\n\n")

	writeAnchors(&b, in.Profile)
	writeRules(&b)
	writeStageGuidance(&b, in.State.Stage)
	writeWarnings(&b, in.State)
	writeNarrative(&b, in.State.Narrative)

	b.WriteString("COMPLETION: Only while recapping, once the participant confirms your bulleted themes, end your reply with the exact marker " + CompletionMarker + " on its own.\n")

	if in.IsSummaryRequest {
		max := in.MaxBullets
		if max <= 0 {
			max = 5
		}
		fmt.Fprintf(&b, "\nNOW: Summarize the key themes of the conversation as up to %d bullet points. Start each bullet with \"• \" and leave a blank line between bullets. Then ask whether anything important is missing.\n", max)
	}
	return b.String()
}

func writeAnchors(b *strings.Builder, p entity.Profile) {
	b.WriteString("PARTICIPANT:\n")
	views := strings.TrimSpace(p.ViewsChanged)
	if views == "" {
		views = "unspecified"
	}
	fmt.Fprintf(b, "- views_changed: %s\n", views)
	desc := strings.TrimSpace(p.ChangeDescription)
	if desc == "" {
		fmt.Fprintf(b, "- change_description: (none)\n")
	} else {
		fmt.Fprintf(b, "- change_description: %s\n", desc)
		fmt.Fprintf(b, "- In one sentence: %s.\n", Paraphrase(desc))
	}
	if p.ChangeConfidence > 0 {
		fmt.Fprintf(b, "- change_confidence: %d\n", p.ChangeConfidence)
	} else {
		fmt.Fprintf(b, "- change_confidence: (none)\n")
	}
	b.WriteString("\n")
}

func writeRules(b *strings.Builder) {
	b.WriteString("RULES:\n")
	b.WriteString("- Ask exactly one question per turn.\n")
	b.WriteString("- Never reuse more than 8 consecutive words from any example phrasing.\n")
	b.WriteString("- Vary how you open each reply; do not start consecutive replies the same way.\n")
	b.WriteString("- Stay on the participant's belief-change story at all times.\n")
	b.WriteString("- Never assume the opposite of what the participant stated about their views.\n\n")
}

func writeStageGuidance(b *strings.Builder, s entity.Stage) {
	b.WriteString("STAGE: ")
	switch s {
	case entity.StageElaboration:
		b.WriteString("elaboration. Probe what stands out: pick the most vivid or emotionally weighted thing they said and go deeper on it.\n\n")
	case entity.StageRecap:
		b.WriteString("recap. Present up to five bulleted themes from the conversation. Start each bullet with \"• \" and leave a blank line between bullets, then ask the participant to confirm you captured their story correctly.\n\n")
	case entity.StageComplete:
		b.WriteString("complete. Thank the participant and close warmly.\n\n")
	default:
		b.WriteString("exploration. Prioritize breadth: touch different themes of their story (events, people, information, feelings) rather than drilling into one.\n\n")
	}
}

func writeWarnings(b *strings.Builder, s entity.ConductorState) {
	var warnings []string
	if s.TopicTurnCount >= 3 && s.LastTopic != "" {
		warnings = append(warnings, fmt.Sprintf("You have been on the topic %q for %d turns; change angle.", s.LastTopic, s.TopicTurnCount))
	}
	if s.ResponsePatterns.ConsecutiveSimilarResponses >= 2 {
		warnings = append(warnings, fmt.Sprintf("Vary your opening; your last opening was %q.", s.ResponsePatterns.LastOpeningPhrase))
	}
	if s.MinimalResponseCount >= 2 {
		warnings = append(warnings, "The participant is giving very short answers; consider advancing rather than probing further.")
	}
	if s.ExhaustionSignals >= 2 {
		warnings = append(warnings, "The participant sounds finished; prepare to summarize.")
	}
	if len(warnings) == 0 {
		return
	}
	b.WriteString("WARNINGS:\n")
	for _, w := range warnings {
		fmt.Fprintf(b, "- %s\n", w)
	}
	b.WriteString("\n")
}

const mainStoryPromptMax = 200

func writeNarrative(b *strings.Builder, n entity.Narrative) {
	if len(n.Influences) == 0 && n.MainStory == "" {
		return
	}
	b.WriteString("KNOWN SO FAR:\n")
	for _, inf := range n.Influences {
		fmt.Fprintf(b, "- Influence: %s (%s)\n", inf.Person, inf.Direction)
	}
	if n.MainStory != "" {
		story := n.MainStory
		if len(story) > mainStoryPromptMax {
			story = strings.TrimSpace(story[:mainStoryPromptMax]) + "..."
		}
		fmt.Fprintf(b, "- Their core story so far: %q\n", story)
	}
	b.WriteString("\n")
}

// StripCompletionMarker removes the marker and tidies the whitespace around
// it, leaving the rest of the reply byte-for-byte intact.
func StripCompletionMarker(s string) (string, bool) {
	if !strings.Contains(s, CompletionMarker) {
		return s, false
	}
	for {
		i := strings.Index(s, CompletionMarker)
		if i < 0 {
			break
		}
		before := strings.TrimRight(s[:i], " \t")
		after := strings.TrimLeft(s[i+len(CompletionMarker):], " \t")
		if before != "" && after != "" && !strings.HasSuffix(before, "\n") && !strings.HasPrefix(after, "\n") {
			before += " "
		}
		s = before + after
	}
	return strings.TrimSpace(s), true
}
