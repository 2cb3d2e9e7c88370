package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEscapeLike(t *testing.T) {
	cases := []struct {
		name string
		in   string
		want string
	}{
		{"plain", "alice", "alice"},
		{"percent wildcard", "%", `\%`},
		{"underscore wildcard", "a_b", `a\_b`},
		{"backslash", `a\b`, `a\\b`},
		{"mixed", `50%_off\`, `50\%\_off\\`},
		{"empty", "", ""},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, escapeLike(tc.in))
		})
	}
}
