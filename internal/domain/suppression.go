package domain

import "time"

// SuppressionEntry flags an instance key the generator must never recreate.
// Written when a user deletes a block or when a mirrored block disappears
// from the external calendar.
type SuppressionEntry struct {
	Instance     string
	SuppressedAt time.Time
	Reason       *string
}
