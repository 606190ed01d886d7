package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLike(t *testing.T) {
	tests := []struct {
		s, pattern string
		expected   bool
	}{
		{"PAID", "PAID", true},
		{"PAID", "paid", true},
		{"PAID", "PAI", false},
		{"PAID", "PAID%", true},
		{"PAID_PARTIAL", "PAID%", true},
		{"PAID", "%", true},
		{"", "%", true},
		{"", "", true},
		{"", "_", false},
		{"PAID", "P_ID", true},
		{"PAID", "P__D", true},
		{"PAID", "P_D", false},
		{"refund 100%", "%100%", true},
		{"abcabd", "%abd", true},
		{"abcabc", "%abd", false},
		{"a%b", "a%%b", true},
		{"ÉTÉ", "été", false},
		{"été", "_t_", true},
		{"mississippi", "m%iss%ppi", true},
	}

	for _, tt := range tests {
		t.Run(tt.s+"~"+tt.pattern, func(t *testing.T) {
			assert.Equal(t, tt.expected, Like(tt.s, tt.pattern))
		})
	}
}
