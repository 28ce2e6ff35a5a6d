package classify

import (
	"context"
	"errors"
	"testing"

	"go.uber.org/zap"

	"github.com/spec-kit/support-router/internal/domain"
)

func TestRuleBased(t *testing.T) {
	tests := []struct {
		name string
		text string
		want domain.Label
	}{
		{"thanks", "Thanks for resolving my credit card issue!", domain.LabelPositiveFeedback},
		{"appreciate", "Appreciate the quick help on my loan question.", domain.LabelPositiveFeedback},
		{"great", "Great support today, really happy!", domain.LabelPositiveFeedback},
		{"uppercase positive", "THANK YOU SO MUCH", domain.LabelPositiveFeedback},
		{"still pending", "My debit card replacement still hasn't arrived.", domain.LabelNegativeFeedback},
		{"frustrated", "I'm frustrated, charges are incorrect and no one responded.", domain.LabelNegativeFeedback},
		{"declined", "My payment was declined twice today.", domain.LabelNegativeFeedback},
		{"ticket reference", "Could you tell me about ticket 650932?", domain.LabelQuery},
		{"status word", "What is the current delivery window?", domain.LabelQuery},
		{"balance question", "What's the balance on my savings account?", domain.LabelQuery},
		{"query beats positive", "Thanks, but the dispute still shows as pending. Can you update me?", domain.LabelQuery},
		{"query beats negative", "This is a problem, check my account now.", domain.LabelQuery},
		{"empty", "", domain.LabelQuery},
		{"whitespace only", "   \n\t ", domain.LabelQuery},
		{"neutral fallback", "Hello there.", domain.LabelQuery},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := RuleBased(tt.text); got != tt.want {
				t.Errorf("RuleBased(%q) = %q, want %q", tt.text, got, tt.want)
			}
		})
	}
}

func TestRuleBasedDeterministic(t *testing.T) {
	text := "Great agent last time, can you also tell me my ticket status 123456?"
	first := RuleBased(text)
	for i := 0; i < 5; i++ {
		if got := RuleBased(text); got != first {
			t.Fatalf("run %d: RuleBased(%q) = %q, want %q", i, text, got, first)
		}
	}
}

type fakeCapability struct {
	out   string
	err   error
	calls int
}

func (f *fakeCapability) Chat(ctx context.Context, system, user string) (string, error) {
	f.calls++
	return f.out, f.err
}

func TestClassifyUsesCapability(t *testing.T) {
	fake := &fakeCapability{out: "  Negative_Feedback \n"}
	c := New(fake, 0, nil, zap.NewNop())

	got := c.Classify(context.Background(), "Thanks for everything!", true)
	if got != domain.LabelNegativeFeedback {
		t.Errorf("Classify() = %q, want %q", got, domain.LabelNegativeFeedback)
	}
	if fake.calls != 1 {
		t.Errorf("capability calls = %d, want 1", fake.calls)
	}
}

func TestClassifyFallsBackOnNoisyOutput(t *testing.T) {
	fake := &fakeCapability{out: "I think this one is positive!"}
	c := New(fake, 0, nil, zap.NewNop())

	got := c.Classify(context.Background(), "Thanks for resolving my credit card issue!", true)
	if got != domain.LabelPositiveFeedback {
		t.Errorf("Classify() = %q, want rule-based %q", got, domain.LabelPositiveFeedback)
	}
}

func TestClassifyFallsBackOnError(t *testing.T) {
	fake := &fakeCapability{err: errors.New("model unavailable")}
	c := New(fake, 0, nil, zap.NewNop())

	got := c.Classify(context.Background(), "My debit card replacement still hasn't arrived.", true)
	if got != domain.LabelNegativeFeedback {
		t.Errorf("Classify() = %q, want rule-based %q", got, domain.LabelNegativeFeedback)
	}
}

func TestClassifySkipsCapabilityWhenNotPreferred(t *testing.T) {
	fake := &fakeCapability{out: string(domain.LabelPositiveFeedback)}
	c := New(fake, 0, nil, zap.NewNop())

	got := c.Classify(context.Background(), "My debit card replacement still hasn't arrived.", false)
	if got != domain.LabelNegativeFeedback {
		t.Errorf("Classify() = %q, want %q", got, domain.LabelNegativeFeedback)
	}
	if fake.calls != 0 {
		t.Errorf("capability calls = %d, want 0", fake.calls)
	}
}

func TestClassifyNilCapability(t *testing.T) {
	c := New(nil, 0, nil, zap.NewNop())
	if got := c.Classify(context.Background(), "Great support today!", true); got != domain.LabelPositiveFeedback {
		t.Errorf("Classify() = %q, want %q", got, domain.LabelPositiveFeedback)
	}
}
