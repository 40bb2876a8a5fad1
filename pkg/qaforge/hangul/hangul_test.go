package hangul

import "testing"

func TestHasBatchim(t *testing.T) {
	cases := []struct {
		r    rune
		want bool
	}{
		{'강', true},
		{'일', true},
		{'가', false},
		{'교', false},
		{'과', false},
		{'상', true},
		{'a', false},
		{'1', false},
	}
	for _, c := range cases {
		if got := HasBatchim(c.r); got != c.want {
			t.Errorf("HasBatchim(%q) = %v, want %v", c.r, got, c.want)
		}
	}
}

func TestEndsWithBatchim(t *testing.T) {
	if !EndsWithBatchim("대상") {
		t.Error("대상 ends in 받침")
	}
	if EndsWithBatchim("학교") {
		t.Error("학교 has no 받침")
	}
	if EndsWithBatchim("") {
		t.Error("empty string has no 받침")
	}
	if !EndsWithBatchim("면직 ") {
		t.Error("trailing space should be ignored")
	}
}

func TestFillParticles(t *testing.T) {
	cases := []struct {
		template string
		topic    string
		want     string
	}{
		{"{t}{은는} 무엇인가요?", "휴직", "{t}은 무엇인가요?"},
		{"{t}{은는} 무엇인가요?", "연가", "{t}는 무엇인가요?"},
		{"{t}{을를} 하려면?", "복직", "{t}을 하려면?"},
		{"{t}{을를} 하려면?", "전보", "{t}를 하려면?"},
		{"{t}{이가} 가능한가요?", "승진", "{t}이 가능한가요?"},
		{"{t}{이가} 가능한가요?", "교사", "{t}가 가능한가요?"},
		{"no slots", "휴직", "no slots"},
	}
	for _, c := range cases {
		if got := FillParticles(c.template, c.topic); got != c.want {
			t.Errorf("FillParticles(%q, %q) = %q, want %q", c.template, c.topic, got, c.want)
		}
	}
}

func TestFillParticlesEmptyTopic(t *testing.T) {
	if got := FillParticles("{은는}", ""); got != "{은는}" {
		t.Errorf("empty topic should leave slots untouched, got %q", got)
	}
}
