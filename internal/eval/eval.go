// Package eval is a compact classifier benchmark over labelled support messages.
package eval

import (
	"context"

	"github.com/spec-kit/support-router/internal/classify"
	"github.com/spec-kit/support-router/internal/domain"
)

// Case is one labelled benchmark message.
type Case struct {
	Text     string
	Expected domain.Label
}

// Cases covers positive feedback, complaints, status queries, and mixed-tone
// edge phrasing.
var Cases = []Case{
	{"Thanks for resolving my credit card issue!", domain.LabelPositiveFeedback},
	{"Appreciate the quick help on my loan question.", domain.LabelPositiveFeedback},
	{"Great support today, really happy!", domain.LabelPositiveFeedback},

	{"My debit card replacement still hasn't arrived.", domain.LabelNegativeFeedback},
	{"I'm frustrated, charges are incorrect and no one responded.", domain.LabelNegativeFeedback},
	{"Terrible experience with net banking again.", domain.LabelNegativeFeedback},

	{"Could you check the status of ticket 650932?", domain.LabelQuery},
	{"What's the balance on my savings account?", domain.LabelQuery},
	{"How long does a wire transfer take?", domain.LabelQuery},

	{"Thanks, but the dispute still shows as pending. Can you update me?", domain.LabelQuery},
	{"Not cool, card is locked again. Why?", domain.LabelNegativeFeedback},
	{"Great agent last time, can you also tell me my ticket status 123456?", domain.LabelQuery},
}

// Row is one benchmark outcome.
type Row struct {
	Text      string
	Expected  domain.Label
	Predicted domain.Label
	Correct   bool
}

// Run executes the benchmark. limit <= 0 runs every case.
func Run(ctx context.Context, classifier *classify.Classifier, preferCapability bool, limit int) (correct, total int, rows []Row) {
	cases := Cases
	if limit > 0 && limit < len(cases) {
		cases = cases[:limit]
	}

	rows = make([]Row, 0, len(cases))
	for _, c := range cases {
		predicted := classifier.Classify(ctx, c.Text, preferCapability)
		ok := predicted == c.Expected
		if ok {
			correct++
		}
		rows = append(rows, Row{
			Text:      c.Text,
			Expected:  c.Expected,
			Predicted: predicted,
			Correct:   ok,
		})
	}
	return correct, len(cases), rows
}
