package domain

// Label is the coarse routing category for an inbound message.
type Label string

const (
	LabelPositiveFeedback Label = "positive_feedback"
	LabelNegativeFeedback Label = "negative_feedback"
	LabelQuery            Label = "query"
)

// Valid reports whether l is one of the three canonical labels.
func (l Label) Valid() bool {
	switch l {
	case LabelPositiveFeedback, LabelNegativeFeedback, LabelQuery:
		return true
	}
	return false
}
