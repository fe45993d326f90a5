package accounts

import (
	"testing"

	"github.com/snapwatch/tiktok-monitor/internal/domain"
	"github.com/stretchr/testify/assert"
)

func TestFallbackEnvList(t *testing.T) {
	got := Fallback(" alice, bob ,,carol", "default")

	assert.Equal(t, []domain.Account{
		{Username: "alice", Enabled: true},
		{Username: "bob", Enabled: true},
		{Username: "carol", Enabled: true},
	}, got)
}

func TestFallbackDefaultAccount(t *testing.T) {
	got := Fallback("", "danieljensen")

	assert.Len(t, got, 1)
	assert.Equal(t, "danieljensen", got[0].Username)
	assert.True(t, got[0].Enabled)
}
