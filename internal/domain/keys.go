package domain

import (
	"fmt"
	"strings"
	"time"

	"venuebooking/internal/timefmt"
)

// EventKey derives the event identifier from its date and 24-hour start time:
// "2024-05-01" + "19:00" -> "2024-05-01_1900". Two slots at the same instant
// share a key, so a second create is rejected with ErrEventExists.
func EventKey(date, startTime string) string {
	return date + "_" + timefmt.Compact(startTime)
}

var contactReplacer = strings.NewReplacer("@", "_", ".", "_")

// InvitationKey derives the invitation document id from the performer contact
// and the issuance instant in unix milliseconds:
// "band@example.com" at 1714590000123 -> "band_example_com_1714590000123".
// The key only spreads writes; two issues for one contact in the same
// millisecond collide on the primary key and the second insert fails.
func InvitationKey(contact string, issuedAt time.Time) string {
	return fmt.Sprintf("%s_%d", contactReplacer.Replace(contact), issuedAt.UnixMilli())
}
