package knowledge

import "testing"

func TestClassifierIsInDomain(t *testing.T) {
	c := NewDefaultClassifier()

	cases := []struct {
		query string
		want  bool
	}{
		{query: "Do you have storage in Kolkata?", want: true},
		{query: "CRYSTAL pricing", want: true},
		{query: "tell me about Real Estate", want: true},
		{query: "What's the weather today?", want: false},
		{query: "", want: false},
	}

	for _, tc := range cases {
		if got := c.IsInDomain(tc.query); got != tc.want {
			t.Errorf("IsInDomain(%q) = %v, want %v", tc.query, got, tc.want)
		}
	}
}

func TestClassifierIgnoresBlankKeywords(t *testing.T) {
	c := NewClassifier([]string{"", "  ", "Fleet"})
	if c.IsInDomain("anything") {
		t.Fatal("blank keywords must not match every query")
	}
	if !c.IsInDomain("our fleet") {
		t.Fatal("expected fleet to be in domain")
	}
}
