package logging

// Canonical attribute keys shared across components so log lines stay
// greppable regardless of which package emitted them.
const (
	FieldComponent     = "component"
	FieldCorrelationID = "correlation_id"
	FieldGamePK        = "game_pk"
	FieldVideoID       = "video_id"
	FieldStrategy      = "strategy"
	FieldScore         = "score"
)
