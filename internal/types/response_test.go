package types

import (
	"encoding/json"
	"reflect"
	"strings"
	"testing"
)

func TestGeneratedResult_EmptyPollOptionsSurvive(t *testing.T) {
	in := GeneratedResult{Success: true, Content: "Remote work?", Question: "Remote work?", Options: []string{}}

	data, err := json.Marshal(in)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), `"options":[]`) {
		t.Errorf("expected empty options array in %s", data)
	}

	var out GeneratedResult
	if err := json.Unmarshal(data, &out); err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(in, out) {
		t.Errorf("decoded %+v, want %+v", out, in)
	}
}

func TestGeneratedResult_NonPollOmitsOptions(t *testing.T) {
	data, err := json.Marshal(GeneratedResult{Success: true, Content: "Remote work is here to stay."})
	if err != nil {
		t.Fatal(err)
	}
	if strings.Contains(string(data), "options") {
		t.Errorf("unexpected options in %s", data)
	}

	data, err = json.Marshal(&GeneratedResult{Success: true, Options: []string{"A", "B"}})
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), `"options":["A","B"]`) {
		t.Errorf("pointer encoding lost options: %s", data)
	}
}
