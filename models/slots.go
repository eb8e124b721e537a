package models

// OpenSlot is one candidate appointment start time for a mentor's window,
// joined with current booking state.
type OpenSlot struct {
	Start    int    `json:"start"`    // minutes from midnight
	End      int    `json:"end"`      // minutes from midnight
	Label    string `json:"label"`    // e.g., "09:00"
	Duration int    `json:"duration"` // minutes
	Taken    bool   `json:"taken"`
}
