package eval

import (
	"context"
	"testing"

	"go.uber.org/zap"

	"github.com/spec-kit/support-router/internal/classify"
)

func ruleOnlyClassifier() *classify.Classifier {
	return classify.New(nil, 0, nil, zap.NewNop())
}

func TestRunRuleOnly(t *testing.T) {
	correct, total, rows := Run(context.Background(), ruleOnlyClassifier(), false, 0)

	if total != len(Cases) {
		t.Errorf("total = %d, want %d", total, len(Cases))
	}
	if len(rows) != total {
		t.Errorf("rows = %d, want %d", len(rows), total)
	}
	// the rule-based path is known to miss a couple of sarcastic complaints
	if correct < 9 {
		t.Errorf("accuracy = %d/%d, below the rule-based floor", correct, total)
	}

	recount := 0
	for i, row := range rows {
		if !row.Predicted.Valid() {
			t.Errorf("rows[%d]: predicted label %q not canonical", i, row.Predicted)
		}
		if row.Correct != (row.Predicted == row.Expected) {
			t.Errorf("rows[%d]: Correct flag inconsistent with labels", i)
		}
		if row.Correct {
			recount++
		}
	}
	if recount != correct {
		t.Errorf("correct = %d, rows say %d", correct, recount)
	}
}

func TestRunLimit(t *testing.T) {
	_, total, rows := Run(context.Background(), ruleOnlyClassifier(), false, 3)
	if total != 3 || len(rows) != 3 {
		t.Errorf("total = %d, rows = %d, want 3 each", total, len(rows))
	}
	for i, row := range rows {
		if row.Text != Cases[i].Text {
			t.Errorf("rows[%d] ran %q, want case order preserved", i, row.Text)
		}
	}
}

func TestRunLimitBeyondCases(t *testing.T) {
	_, total, _ := Run(context.Background(), ruleOnlyClassifier(), false, len(Cases)+10)
	if total != len(Cases) {
		t.Errorf("total = %d, want %d", total, len(Cases))
	}
}
