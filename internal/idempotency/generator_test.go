package idempotency

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGenerateKeyIsDeterministic(t *testing.T) {
	g := NewGenerator()

	params := map[string]interface{}{
		"subscription_id": "psub_1",
		"billing_period":  "ANNUAL",
	}

	first := g.GenerateKey(ScopePriceChange, params)
	second := g.GenerateKey(ScopePriceChange, params)
	assert.Equal(t, first, second)
	assert.True(t, strings.HasPrefix(first, string(ScopePriceChange)+"-"))
}

func TestGenerateKeyIgnoresParamOrder(t *testing.T) {
	g := NewGenerator()

	a := g.GenerateKey(ScopeAccountCredit, map[string]interface{}{
		"subscription_id": "psub_1",
		"amount":          "148.50",
		"cycle_end":       "2026-03-16T00:00:00Z",
	})
	b := g.GenerateKey(ScopeAccountCredit, map[string]interface{}{
		"cycle_end":       "2026-03-16T00:00:00Z",
		"amount":          "148.50",
		"subscription_id": "psub_1",
	})
	assert.Equal(t, a, b)
}

func TestGenerateKeyVariesWithInput(t *testing.T) {
	g := NewGenerator()

	base := g.GenerateKey(ScopePriceChange, map[string]interface{}{
		"subscription_id": "psub_1",
		"billing_period":  "ANNUAL",
	})

	differentParam := g.GenerateKey(ScopePriceChange, map[string]interface{}{
		"subscription_id": "psub_2",
		"billing_period":  "ANNUAL",
	})
	assert.NotEqual(t, base, differentParam)

	differentScope := g.GenerateKey(ScopeAccountCredit, map[string]interface{}{
		"subscription_id": "psub_1",
		"billing_period":  "ANNUAL",
	})
	assert.NotEqual(t, base, differentScope)
}
