package cmd

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/dreamwise/dreamwise/internal/model"
)

func TestPrintAccount(t *testing.T) {
	now := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	a := model.NewAccount("acc-1", "dreamer", "dreamer@example.com", now)

	var buf bytes.Buffer
	printAccount(&buf, a)

	out := buf.String()
	assert.Contains(t, out, "acc-1")
	assert.Contains(t, out, "dreamer@example.com")
	assert.Contains(t, out, "role:        user")
	assert.Contains(t, out, "active:      true")
	assert.Contains(t, out, "2025-03-01T12:00:00Z")
}

func TestAccountCmd_Subcommands(t *testing.T) {
	names := map[string]bool{}
	for _, c := range AccountCmd().Commands() {
		names[c.Name()] = true
	}
	assert.True(t, names["show"])
	assert.True(t, names["deactivate"])
	assert.True(t, names["reactivate"])
	assert.True(t, names["role"])
}
