package layout

import (
	"math/rand"
	"strings"
	"testing"
)

func TestMeasureBasics(t *testing.T) {
	f := Measure("", 10, 8)
	if f.LineCount() != 1 || f.Height != 10 {
		t.Fatalf("empty text should measure as one line of 10pt, got %d lines %gpt", f.LineCount(), f.Height)
	}

	f = Measure("aaa bbb ccc", 7, 10)
	if strings.Join(f.Lines, "|") != "aaa bbb|ccc" {
		t.Fatalf("unexpected wrap: %q", f.Lines)
	}
	if f.Height != 2*(10+LineSpacing) {
		t.Fatalf("unexpected height %g", f.Height)
	}

	f = Measure("short averyveryverylongword tail", 6, 8)
	if strings.Join(f.Lines, "|") != "short|averyveryverylongword|tail" {
		t.Fatalf("long word should sit alone unsplit: %q", f.Lines)
	}

	f = Measure("one\ntwo   three", 0, 8)
	if strings.Join(f.Lines, "|") != "one|two three" {
		t.Fatalf("newlines kept and whitespace collapsed without limit: %q", f.Lines)
	}
}

// TestMeasureGreedyProperty 随机文本上验证：每行不超过上限（单个超长词除外），
// 且下一行的首词放不进上一行（贪心折行的行数即最少行数）。
func TestMeasureGreedyProperty(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	letters := []rune("abcdefghijklmnopqrstuvwxyzäöü")
	for round := 0; round < 200; round++ {
		words := make([]string, 1+rng.Intn(30))
		for i := range words {
			n := 1 + rng.Intn(14)
			w := make([]rune, n)
			for j := range w {
				w[j] = letters[rng.Intn(len(letters))]
			}
			words[i] = string(w)
		}
		limit := 1 + rng.Intn(20)
		f := Measure(strings.Join(words, " "), limit, 9)

		if got := strings.Fields(strings.Join(f.Lines, " ")); strings.Join(got, " ") != strings.Join(words, " ") {
			t.Fatalf("wrap must keep every word in order")
		}
		for i, line := range f.Lines {
			n := len([]rune(line))
			if n > limit && len(strings.Fields(line)) != 1 {
				t.Fatalf("line %q exceeds limit %d", line, limit)
			}
			if i+1 < len(f.Lines) {
				next := strings.Fields(f.Lines[i+1])[0]
				if n+1+len([]rune(next)) <= limit {
					t.Fatalf("greedy wrap should have kept %q on line %q (limit %d)", next, line, limit)
				}
			}
		}
		if f.Height != float64(len(f.Lines))*(9+LineSpacing) {
			t.Fatalf("height must follow line count")
		}
	}
}

func TestCharLimit(t *testing.T) {
	if got := CharLimit(100, 10); got != 20 {
		t.Fatalf("expected 20 chars, got %d", got)
	}
	if got := CharLimit(1, 10); got != 1 {
		t.Fatalf("limit should never drop below 1, got %d", got)
	}
	if got := CharLimit(100, 0); got != 0 {
		t.Fatalf("zero font size disables wrapping, got %d", got)
	}
}

func TestStateIsAValue(t *testing.T) {
	s := State{X: 10, Y: 10, Top: 10, MaxX: 100, MaxY: 100}
	moved := s.Advance(50)
	if s.Y != 10 || moved.Y != 60 {
		t.Fatalf("Advance must not mutate the receiver")
	}
	if !s.AtTop() || moved.AtTop() {
		t.Fatalf("AtTop mismatch")
	}
	if !moved.Fits(40) || moved.Fits(40.5) {
		t.Fatalf("Fits should be inclusive of MaxY")
	}
	if moved.Reset().Y != 10 {
		t.Fatalf("Reset should return to Top")
	}
}
