package textfold

import (
	"reflect"
	"testing"
)

func TestFold_Table(t *testing.T) {
	tests := []struct {
		name string
		in   string
		out  string
	}{
		{"empty", "", ""},
		{"identity ascii", "running shoes", "running shoes"},
		{"case fold", "ACME Shoes", "acme shoes"},
		{"precomposed accent", "Café Nero", "cafe nero"},
		{"combining accent", "café", "cafe"},
		{"zero width", "ac\u200Bme", "acme"},
		{"fullwidth", "ＡＣＭＥ store", "acme store"},
		{"ligature", "oﬃce chairs", "office chairs"},
		{"whitespace", "  acme \t  store\n", "acme store"},
		{"invalid utf8", string([]byte{0xff, 'a', 'c', 'm', 'e'}), "acme"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := Fold(tc.in); got != tc.out {
				t.Fatalf("Fold(%q) = %q, want %q", tc.in, got, tc.out)
			}
		})
	}
}

func TestFold_Idempotent(t *testing.T) {
	for _, s := range []string{"Café Nero", "ＡＣＭＥ", "a  b"} {
		once := Fold(s)
		if twice := Fold(once); twice != once {
			t.Fatalf("Fold not idempotent: %q -> %q -> %q", s, once, twice)
		}
	}
}

func TestTerms_DropsEmptyAndDuplicates(t *testing.T) {
	got := Terms([]string{"Acme", " ", "", "ACME", "acme co"})
	want := []string{"acme", "acme co"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("Terms = %v, want %v", got, want)
	}
}

func TestMatcher(t *testing.T) {
	m := NewMatcher([]string{"Acme", "  "})
	if m.Len() != 1 {
		t.Fatalf("Len = %d", m.Len())
	}
	cases := map[string]bool{
		"acme running shoes": true,
		"ＡＣＭＥ login":        true,
		"best running shoes": false,
		"":                   false,
	}
	for q, want := range cases {
		if got := m.Match(q); got != want {
			t.Fatalf("Match(%q) = %v, want %v", q, got, want)
		}
	}

	var nilM *Matcher
	if nilM.Match("acme") {
		t.Fatalf("nil matcher must not match")
	}
	if NewMatcher(nil).Match("acme") {
		t.Fatalf("empty matcher must not match")
	}
}
