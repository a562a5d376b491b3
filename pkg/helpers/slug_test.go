package helpers

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeSlug(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"My Team!", "my-team-"},
		{"demo-team", "demo-team"},
		{"Demo  Team", "demo-team"},
		{"HELLO", "hello"},
		{"a__b", "a-b"},
		{"--", "-"},
		{"", ""},
		{"123", "123"},
		{"Ünïcode", "-n-code"},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, NormalizeSlug(tc.in), "input %q", tc.in)
	}
}

func TestNormalizeSlugIdempotent(t *testing.T) {
	inputs := []string{"My Team!", "demo-team", "A B C", "!!!", "Mixed_Case 99"}
	for _, in := range inputs {
		once := NormalizeSlug(in)
		assert.Equal(t, once, NormalizeSlug(once), "normalize(normalize(%q))", in)
	}
}
