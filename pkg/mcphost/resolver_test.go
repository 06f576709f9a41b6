package mcphost

import "testing"

func TestResolveResourceServerExactWins(t *testing.T) {
	resources := []AggregatedResource{
		{ServerID: "A", URI: "file:///x.txt"},
		{ServerID: "B", URI: "file:///x.txt"},
	}
	got := resolveResourceServer("file:///x.txt", resources, nil)
	if len(got) != 2 {
		t.Fatalf("expected 2 suggestions, got %d", len(got))
	}
	for _, s := range got {
		if s.MatchType != MatchExact || s.Confidence != 1.0 {
			t.Errorf("expected exact match at confidence 1.0, got %+v", s)
		}
	}
	if got[0].ServerID != "A" || got[1].ServerID != "B" {
		t.Errorf("expected insertion order A, B; got %q, %q", got[0].ServerID, got[1].ServerID)
	}
}

func TestResolveResourceServerTemplate(t *testing.T) {
	templates := []AggregatedResourceTemplate{
		{ServerID: "T", URITemplate: "file:///dynamic/{id}.txt"},
	}
	got := resolveResourceServer("file:///dynamic/42.txt", nil, templates)
	want := []Suggestion{{ServerID: "T", MatchType: MatchTemplate, Confidence: 0.8}}
	if len(got) != 1 || got[0] != want[0] {
		t.Fatalf("got %+v, want %+v", got, want)
	}
}

func TestResolveResourceServerSchemeFallback(t *testing.T) {
	resources := []AggregatedResource{{ServerID: "W", URI: "http://api/x"}}

	got := resolveResourceServer("http://other/y", resources, nil)
	want := Suggestion{ServerID: "W", MatchType: MatchScheme, Confidence: 0.5}
	if len(got) != 1 || got[0] != want {
		t.Fatalf("got %+v, want [%+v]", got, want)
	}

	none := resolveResourceServer("ftp://host/f", resources, nil)
	if len(none) != 0 {
		t.Fatalf("expected no suggestions for unmatched scheme, got %+v", none)
	}
}

func TestResolveResourceServerSchemeDedupesPerServer(t *testing.T) {
	resources := []AggregatedResource{
		{ServerID: "W", URI: "http://api/a"},
		{ServerID: "W", URI: "http://api/b"},
	}
	got := resolveResourceServer("http://other/y", resources, nil)
	if len(got) != 1 {
		t.Fatalf("expected server W listed once, got %d entries: %+v", len(got), got)
	}
}

func TestResolveToolServerExactName(t *testing.T) {
	tools := []AggregatedTool{{ServerID: "A", Name: "read_file"}, {ServerID: "B", Name: "write_file"}}
	got := resolveToolServer("read_file", tools)
	if len(got) != 1 || got[0].ServerID != "A" || got[0].MatchType != MatchName || got[0].Confidence != 1.0 {
		t.Fatalf("got %+v", got)
	}
}

func TestResolvePromptServerNoMatch(t *testing.T) {
	got := resolvePromptServer("missing", []AggregatedPrompt{{ServerID: "A", Name: "greeting"}})
	if len(got) != 0 {
		t.Fatalf("expected no matches, got %+v", got)
	}
}

func TestSortByConfidenceStable(t *testing.T) {
	in := []Suggestion{
		{ServerID: "A", Confidence: 0.5},
		{ServerID: "B", Confidence: 0.8},
		{ServerID: "C", Confidence: 0.8},
	}
	sortByConfidence(in)
	if in[0].ServerID != "B" || in[1].ServerID != "C" || in[2].ServerID != "A" {
		t.Fatalf("unexpected order: %+v", in)
	}
}
