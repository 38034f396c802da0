package etl

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// cursorPrefix marks a week-start cursor. The payload is the unix second
// of the next unprocessed week's start.
const cursorPrefix = "w:"

// FormatCursor encodes a week start as a resumable cursor.
func FormatCursor(weekStart int64) string {
	return cursorPrefix + strconv.FormatInt(weekStart, 10)
}

// ParseCursor decodes a cursor back into a week start. Returns an error
// for anything that is not a well-formed cursor.
func ParseCursor(cursor string) (time.Time, error) {
	raw, ok := strings.CutPrefix(cursor, cursorPrefix)
	if !ok {
		return time.Time{}, fmt.Errorf("malformed cursor %q", cursor)
	}
	unix, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return time.Time{}, fmt.Errorf("malformed cursor %q: %w", cursor, err)
	}
	return time.Unix(unix, 0).UTC(), nil
}
