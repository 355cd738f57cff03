package rubric

import "testing"

func TestQuestionsIsFixedAndCopied(t *testing.T) {
	qs := Questions()
	if len(qs) != 10 || Len != 10 {
		t.Fatalf("expected 10 questions, got %d (Len %d)", len(qs), Len)
	}
	if qs[9] != "Construct event narrative." {
		t.Fatalf("unexpected last question %q", qs[9])
	}
	qs[0] = "mutated"
	if Questions()[0] == "mutated" {
		t.Fatalf("expected Questions to return a copy")
	}
}
