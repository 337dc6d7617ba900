package domain

// RemovedFromViewEvent fires when log entries are hidden from the working
// set. The upstream keeps the rows; a reload brings them back.
type RemovedFromViewEvent struct {
	IDs []string
}
