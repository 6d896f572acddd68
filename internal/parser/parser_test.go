package parser

import (
	"reflect"
	"testing"

	"github.com/af-corp/content-assistant/internal/types"
)

func TestParse_Passthrough(t *testing.T) {
	for _, kind := range []types.Kind{types.KindPost, types.KindThread, types.KindNewsletter} {
		got := Parse(kind, "\n  Remote work is here.  #future \n\n")
		if !got.Success {
			t.Errorf("%s: expected success", kind)
		}
		if got.Content != "Remote work is here.  #future" {
			t.Errorf("%s: content = %q", kind, got.Content)
		}
		if got.Question != "" || got.Options != nil {
			t.Errorf("%s: passthrough should not fill poll fields", kind)
		}
	}
}

func TestParse_PollSixLines(t *testing.T) {
	raw := "1. Q\n2. A\n3. B\n4. C\n5. D\n6. E"

	got := Parse(types.KindPoll, raw)

	if got.Question != "Q" {
		t.Errorf("question = %q, want Q", got.Question)
	}
	if want := []string{"A", "B", "C"}; !reflect.DeepEqual(got.Options, want) {
		t.Errorf("options = %v, want %v", got.Options, want)
	}
	if got.Content != raw {
		t.Errorf("content should carry the raw reply, got %q", got.Content)
	}
	if Degraded(got) {
		t.Error("six-line reply should not be degraded")
	}
}

func TestParse_RemoteWorkScenario(t *testing.T) {
	raw := "1. Is remote work here to stay?\n2. Yes\n3. No\n4. Depends\n5. Sparks workplace debate"

	got := Parse(types.KindPoll, raw)

	if got.Question != "Is remote work here to stay?" {
		t.Errorf("question = %q", got.Question)
	}
	if want := []string{"Yes", "No", "Depends"}; !reflect.DeepEqual(got.Options, want) {
		t.Errorf("options = %v, want %v", got.Options, want)
	}
}

func TestParse_PollDegraded(t *testing.T) {
	tests := []struct {
		name         string
		raw          string
		wantQuestion string
		wantOptions  []string
	}{
		{"two lines", "1. Q\n2. A", "Q", []string{"A"}},
		{"question only", "What now?", "What now?", []string{}},
		{"empty", "", "", []string{}},
		{"whitespace", "  \n\n \t", "", []string{}},
		{"unnumbered", "Pick one\nRed\nBlue\nGreen", "Pick one", []string{"Red", "Blue", "Green"}},
		{"blank lines between", "1. Q\n\n2. A\n\n\n3. B", "Q", []string{"A", "B"}},
		{"marker without space", "1.Q\n2.A", "Q", []string{"A"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Parse(types.KindPoll, tt.raw)
			if !got.Success {
				t.Error("parse degradation must not fail the result")
			}
			if got.Question != tt.wantQuestion {
				t.Errorf("question = %q, want %q", got.Question, tt.wantQuestion)
			}
			if !reflect.DeepEqual(got.Options, tt.wantOptions) {
				t.Errorf("options = %#v, want %#v", got.Options, tt.wantOptions)
			}
		})
	}
}

func TestDegraded(t *testing.T) {
	if !Degraded(Parse(types.KindPoll, "1. Q\n2. A")) {
		t.Error("two-line poll should be degraded")
	}
	if !Degraded(Parse(types.KindPoll, "")) {
		t.Error("empty poll should be degraded")
	}
	if Degraded(Parse(types.KindPoll, "Q\nA\nB\nC")) {
		t.Error("complete poll should not be degraded")
	}
}
