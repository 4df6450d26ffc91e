package utils

import "testing"

func TestHasLetterAndNumber(t *testing.T) {
	cases := []struct {
		in             string
		letter, number bool
	}{
		{"", false, false},
		{"abc", true, false},
		{"123", false, true},
		{"pa55word", true, true},
		{"ąę12", false, true},
	}
	for _, c := range cases {
		if got := HasLetter(c.in); got != c.letter {
			t.Fatalf("HasLetter(%q) = %v, want %v", c.in, got, c.letter)
		}
		if got := HasNumber(c.in); got != c.number {
			t.Fatalf("HasNumber(%q) = %v, want %v", c.in, got, c.number)
		}
	}
}

func TestIsStrongPassword(t *testing.T) {
	if IsStrongPassword("letters") || IsStrongPassword("1234") {
		t.Fatalf("expected single-class passwords to be rejected")
	}
	if !IsStrongPassword("s3cret") {
		t.Fatalf("expected s3cret to be accepted")
	}
}
