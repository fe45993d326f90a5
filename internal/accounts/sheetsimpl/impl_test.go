package sheetsimpl

import (
	"testing"

	"github.com/snapwatch/tiktok-monitor/internal/domain"
	"github.com/stretchr/testify/assert"
)

func TestParseRows(t *testing.T) {
	rows := [][]interface{}{
		{"Username", "Notes", "Enabled"},
		{"alice", "brand account", "TRUE"},
		{"bob", "", "false"},
		{"", "ghost row", "TRUE"},
		{"carol"},
	}

	got := parseRows(rows)

	assert.Equal(t, []domain.Account{
		{Username: "alice", Enabled: true, Notes: "brand account"},
		{Username: "bob", Enabled: false},
		{Username: "carol", Enabled: true},
	}, got)
}

func TestParseRowsReorderedColumns(t *testing.T) {
	rows := [][]interface{}{
		{"Enabled", "Username", "Notes"},
		{"TRUE", "alice", "note"},
	}

	got := parseRows(rows)

	assert.Len(t, got, 1)
	assert.Equal(t, "alice", got[0].Username)
	assert.True(t, got[0].Enabled)
	assert.Equal(t, "note", got[0].Notes)
}

func TestParseRowsHeaderOnly(t *testing.T) {
	assert.Nil(t, parseRows([][]interface{}{{"Username", "Notes", "Enabled"}}))
	assert.Nil(t, parseRows(nil))
}
