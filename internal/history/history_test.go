package history

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupTestHistory(t *testing.T, messages ...string) *HistoryManager {
	t.Helper()
	historyManager, err := NewHistoryManager(":memory:")
	require.NoError(t, err, "Failed to create history manager")
	t.Cleanup(func() { _ = historyManager.Close() })

	for _, text := range messages {
		_, err := historyManager.RecordMessage(text)
		require.NoError(t, err)
	}
	return historyManager
}

func TestBasicOperations(t *testing.T) {
	historyManager := setupTestHistory(t)

	entry, err := historyManager.RecordMessage("hello <@42|ada>")
	require.NoError(t, err)
	assert.NotZero(t, entry.ID)
	assert.False(t, entry.CreatedAt.IsZero(), "Expected CreatedAt to be set")

	_, err = historyManager.RecordMessage("great :fire:")
	require.NoError(t, err)

	entries, err := historyManager.GetRecentEntries(3)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, "great :fire:", entries[0].Text, "Expected newest message first")
	assert.Equal(t, "hello <@42|ada>", entries[1].Text)
}

func TestGetRecentMessages(t *testing.T) {
	historyManager := setupTestHistory(t, "one", "two", "three")

	messages, err := historyManager.GetRecentMessages(2)
	require.NoError(t, err)
	assert.Equal(t, []string{"three", "two"}, messages)
}

func TestSearchEntries(t *testing.T) {
	historyManager := setupTestHistory(t,
		"hi <@42|ada>",
		"lunch?",
		"ping <@42|ada> and <@7|bo>",
		"100% sure",
	)

	entries, err := historyManager.SearchEntries("<@42|", 10)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, "ping <@42|ada> and <@7|bo>", entries[0].Text)
	assert.Equal(t, "hi <@42|ada>", entries[1].Text)

	entries, err = historyManager.SearchEntries("%", 10)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "100% sure", entries[0].Text)
}

func TestDeleteEntry(t *testing.T) {
	historyManager := setupTestHistory(t, "message1", "message2", "message3")

	entries, err := historyManager.GetRecentEntries(10)
	require.NoError(t, err)
	target := entries[1].ID

	tests := []struct {
		name          string
		idToDelete    uint
		expectedError bool
	}{
		{name: "Delete existing entry", idToDelete: target, expectedError: false},
		{name: "Delete non-existent entry", idToDelete: 99999, expectedError: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := historyManager.DeleteEntry(tt.idToDelete)
			if tt.expectedError {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}

			entries, err := historyManager.GetRecentEntries(10)
			assert.NoError(t, err)
			assert.Len(t, entries, 2)
			for _, e := range entries {
				assert.NotEqual(t, target, e.ID)
			}
		})
	}
}

func TestResetHistory(t *testing.T) {
	historyManager := setupTestHistory(t, "a", "b")

	require.NoError(t, historyManager.ResetHistory())

	entries, err := historyManager.GetRecentEntries(10)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestPrintEntries(t *testing.T) {
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	entries := []MessageEntry{
		{ID: 2, CreatedAt: now.Add(-2 * time.Minute), Text: "newer :tada:"},
		{ID: 1, CreatedAt: now.Add(-3 * time.Hour), Text: "older"},
	}

	var out strings.Builder
	require.NoError(t, PrintEntries(&out, entries, now))

	lines := strings.Split(strings.TrimRight(out.String(), "\n"), "\n")
	require.Len(t, lines, 2)
	assert.Contains(t, lines[0], "3 hours ago")
	assert.Contains(t, lines[0], "older")
	assert.Contains(t, lines[1], "2 minutes ago")
	assert.Contains(t, lines[1], "newer :tada:")
}
