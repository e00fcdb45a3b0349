package history

import (
	"fmt"
	"io"
	"time"

	"github.com/dustin/go-humanize"
)

// PrintEntries writes entries oldest first, one per line, with their age
// relative to now.
func PrintEntries(w io.Writer, entries []MessageEntry, now time.Time) error {
	for i := len(entries) - 1; i >= 0; i-- {
		entry := entries[i]
		age := humanize.RelTime(entry.CreatedAt, now, "ago", "from now")
		if _, err := fmt.Fprintf(w, "%5d  %-16s %s\n", entry.ID, age, entry.Text); err != nil {
			return err
		}
	}
	return nil
}
