package domain

// IntentGeneralFollowup is the sentinel intent returned when no pattern matches.
const IntentGeneralFollowup = "general_followup"

// GeneralFollowupConfidence is the floor confidence attached to the sentinel intent.
const GeneralFollowupConfidence = 0.5

// DetectedIntent is the result of follow-up intent detection. It is ephemeral
// routing input and is never persisted.
type DetectedIntent struct {
	Name       string
	Confidence float64
}
