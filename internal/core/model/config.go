package model

// TrackerConfig contains runtime settings for the loop tracker.
type TrackerConfig struct {
	// ConfirmRequired gates every finished loop behind an explicit confirmation.
	// When false, an expired loop advances on the next evaluation.
	ConfirmRequired bool
}
