package predicate

import (
	"slices"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/roach88/specq/internal/testutil"
)

func TestLint_Clean(t *testing.T) {
	must := mustP(t)
	p := must(AllOf(
		must(Equal(testutil.OrderStatus, "PAID")),
		must(Like(testutil.OrderStatus, "PA%")),
		must(Between(testutil.OrderTotal, 10, 100)),
		must(IsNull(testutil.OrderNote)),
		must(FetchOf[order](testutil.OrderItems)),
		must(FetchOf[order](testutil.OrderCustomer)),
	))

	result := Lint(p)
	assert.True(t, result.Clean)
	assert.Empty(t, result.Warnings)
}

func TestLint_FetchOnlyTreeIsClean(t *testing.T) {
	must := mustP(t)
	p := must(AllOf(
		must(FetchOf[order](testutil.OrderItems)),
		must(FetchOf[order](testutil.OrderCustomer)),
	))

	assert.True(t, Lint(p).Clean)
}

func TestLint_Warnings(t *testing.T) {
	must := mustP(t)

	tests := []struct {
		name     string
		pred     Predicate[order]
		contains string
	}{
		{"nil", nil, "nil predicate"},
		{"empty in", must(In(testutil.OrderStatus)), "Empty IN on 'status'"},
		{"leading percent", must(Like(testutil.OrderStatus, "%PAID")), "starts with a wildcard"},
		{"leading underscore", must(NotLike(testutil.OrderStatus, "_AID")), "starts with a wildcard"},
		{"plain fetch", must(FetchOf[order](testutil.OrderStatus)), "not an association"},
		{"duplicate fetch", must(AllOf(
			must(FetchOf[order](testutil.OrderItems)),
			must(FetchOf[order](testutil.OrderItems)),
		)), "Duplicate fetch of 'items'"},
		{"empty and", &And[order]{}, "AND with no restricting operand"},
		{"empty or", Or[order]{}, "OR with no restricting operand"},
		{"nil operand", &And[order]{Predicates: []Predicate[order]{nil}}, "nil operand"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := Lint(tt.pred)
			assert.False(t, result.Clean)
			found := slices.ContainsFunc(result.Warnings, func(w string) bool {
				return strings.Contains(w, tt.contains)
			})
			assert.True(t, found, "warnings %v should mention %q", result.Warnings, tt.contains)
		})
	}
}
