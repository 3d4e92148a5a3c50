package classify

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"beliefshift/internal/interview/entity"
)

func TestIsMinimal(t *testing.T) {
	cases := []struct {
		in   string
		want bool
	}{
		{"", false},
		{"ok", true},
		{"yeah", true},
		{"sure", true},
		{"dunno", true},
		{"that's all", true},
		{"nothing else", true},
		{"no", false},
		{"yes", false},
		{"No", false},
		{"I saw the bushfires up close and it changed everything", false},
	}
	for _, c := range cases {
		assert.Equal(t, c.want, IsMinimal(c.in), "IsMinimal(%q)", c.in)
	}
}

func TestIsExhaustion(t *testing.T) {
	cases := []struct {
		in   string
		want bool
	}{
		{"", false},
		{"that's all I've got", true},
		{"nothing more to say", true},
		{"can't think of anything", true},
		{"done", true},
		{"Done.", true},
		{"Finished!", true},
		{"I think the evidence was key", false},
		{"I've done a lot of reading about the science since then", false},
		{"they abandoned the coal project", false},
		{"once the report was finished I read it cover to cover", false},
	}
	for _, c := range cases {
		assert.Equal(t, c.want, IsExhaustion(c.in), "IsExhaustion(%q)", c.in)
	}
}

func TestIsTermination(t *testing.T) {
	cases := []struct {
		in   string
		want bool
	}{
		{"end the chat", true},
		{"please wrap up now", true},
		{"I'm done", true},
		{"can we stop", true},
		{"the fires never seemed to end", false},
		{"", false},
	}
	for _, c := range cases {
		assert.Equal(t, c.want, IsTermination(c.in), "IsTermination(%q)", c.in)
	}
}

func TestIsRepeatedNegative(t *testing.T) {
	if IsRepeatedNegative("no", "no") != true {
		t.Fatalf("two consecutive no should be a repeated negative")
	}
	if IsRepeatedNegative("nah", "No") != true {
		t.Fatalf("nah after no should be a repeated negative")
	}
	if IsRepeatedNegative("no", "yes") {
		t.Fatalf("single no is not a repeated negative")
	}
	if IsRepeatedNegative("no", "") {
		t.Fatalf("first no is not a repeated negative")
	}
}

func TestExtractTopic(t *testing.T) {
	cases := []struct {
		in   string
		want entity.Topic
	}{
		{"the bushfires near our town were terrifying", entity.TopicBushfires},
		{"I read an article about it", entity.TopicNews},
		{"the scientific evidence convinced me", entity.TopicEvidence},
		{"my uncle kept going on about it", entity.TopicSocial},
		{"it just happened over time", entity.TopicGeneral},
		{"", entity.TopicGeneral},
	}
	for _, c := range cases {
		assert.Equal(t, c.want, ExtractTopic(c.in), "ExtractTopic(%q)", c.in)
	}
}

func TestExtractInfluence(t *testing.T) {
	inf := ExtractInfluence("my uncle convinced me the science was real")
	if inf == nil {
		t.Fatalf("expected an influence")
	}
	if inf.Person != "uncle" || inf.Direction != entity.InfluenceToward {
		t.Fatalf("got %+v, want uncle/toward", inf)
	}

	inf = ExtractInfluence("I got sick of my dad lecturing me about it")
	if inf == nil || inf.Direction != entity.InfluenceAwayFrom {
		t.Fatalf("got %+v, want away_from", inf)
	}

	inf = ExtractInfluence("my friend mentioned it once")
	if inf == nil || inf.Direction != entity.InfluenceUnknown {
		t.Fatalf("got %+v, want unknown direction", inf)
	}

	if ExtractInfluence("the weather kept getting hotter") != nil {
		t.Fatalf("no relational actor should yield nil")
	}
	if ExtractInfluence("") != nil {
		t.Fatalf("empty input should yield nil")
	}
}

func TestExtractCauseEffect(t *testing.T) {
	if got := ExtractCauseEffect("I changed my mind because the fires got worse"); got == "" {
		t.Fatalf("expected a causal fragment")
	}
	if got := ExtractCauseEffect("it was a hot summer"); got != "" {
		t.Fatalf("got %q, want empty", got)
	}
	frag := ExtractCauseEffect("because the smoke blotted out the sun for weeks and the whole town smelled like ash, I started paying attention to what the scientists were saying about all of it")
	if len(frag) > causeFragmentMax+3 {
		t.Fatalf("fragment not truncated: %d chars", len(frag))
	}
}

func TestIsMainStoryCandidate(t *testing.T) {
	story := "I used to think it was all exaggerated, but after the black summer fires I changed my mind completely and started to believe the scientists"
	if !IsMainStoryCandidate(story) {
		t.Fatalf("long belief-change narrative should be a candidate")
	}
	if IsMainStoryCandidate("I changed my mind") {
		t.Fatalf("short text should not be a candidate")
	}
}

func TestDetectBeliefDrift(t *testing.T) {
	if !DetectBeliefDrift("can we talk about something else") {
		t.Fatalf("expected drift")
	}
	if DetectBeliefDrift("the evidence changed my view") {
		t.Fatalf("on-topic text is not drift")
	}
}
