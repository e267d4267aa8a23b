package notion

import (
	"slices"
	"testing"
)

func TestRichTextPlain(t *testing.T) {
	tests := []struct {
		name string
		runs string
		want string
	}{
		{"empty array", `[]`, ""},
		{"single run", `[{"plain_text": "Hello"}]`, "Hello"},
		{"runs concatenated in order", `[{"plain_text": "Hel"}, {"plain_text": "lo"}]`, "Hello"},
		{"run without plain_text skipped", `[{"plain_text": "a"}, {"type": "text"}, {"plain_text": "b"}]`, "ab"},
		{"non-string plain_text skipped", `[{"plain_text": 42}, {"plain_text": "x"}]`, "x"},
		{"non-object element skipped", `["loose", {"plain_text": "y"}]`, "y"},
		{"escapes decoded", `[{"plain_text": "line \"quoted\" é"}]`, `line "quoted" é`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := richTextPlain([]byte(tt.runs))
			if got != tt.want {
				t.Errorf("richTextPlain(%s) = %q, want %q", tt.runs, got, tt.want)
			}
			if again := richTextPlain([]byte(tt.runs)); again != got {
				t.Errorf("second extraction = %q, first = %q", again, got)
			}
		})
	}
}

func TestPageTitle(t *testing.T) {
	tests := []struct {
		name string
		page string
		want string
	}{
		{"no properties", `{"id": "p"}`, ""},
		{"properties not an object", `{"properties": []}`, ""},
		{"title property", `{"properties": {"Name": {"type": "title", "title": [{"plain_text": "Plan"}]}}}`, "Plan"},
		{
			"first title property wins",
			`{"properties": {
				"A": {"type": "title", "title": [{"plain_text": "first"}]},
				"B": {"type": "title", "title": [{"plain_text": "second"}]}
			}}`,
			"first",
		},
		{"title property with empty array", `{"properties": {"Name": {"type": "title", "title": []}}}`, ""},
		{"title array missing", `{"properties": {"Name": {"type": "title"}}}`, ""},
		{"nested title key ignored", `{"properties": {"Tags": {"type": "multi_select", "title": [{"plain_text": "no"}]}}}`, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := pageTitle([]byte(tt.page)); got != tt.want {
				t.Errorf("pageTitle() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestParseDatabases_TitleSentinel(t *testing.T) {
	body := `{"results": [
		{"id": "a"},
		{"id": "b", "title": null},
		{"id": "c", "title": "not an array"},
		{"id": "d", "title": [{"type": "text"}]},
		{"id": "e", "title": [{"plain_text": "Tasks"}]}
	]}`

	got, err := parseDatabases([]byte(body))
	if err != nil {
		t.Fatalf("parseDatabases() error = %v", err)
	}

	wantTitles := []string{UntitledDatabase, UntitledDatabase, UntitledDatabase, UntitledDatabase, "Tasks"}
	var titles []string
	for _, db := range got {
		titles = append(titles, db.Title)
	}
	if !slices.Equal(titles, wantTitles) {
		t.Errorf("titles = %q, want %q", titles, wantTitles)
	}
}

func TestParseBlockText(t *testing.T) {
	tests := []struct {
		name string
		body string
		want string
	}{
		{"no results field", `{"object": "list"}`, ""},
		{"null results", `{"results": null}`, ""},
		{"empty results", `{"results": []}`, ""},
		{
			"paragraphs in order",
			`{"results": [
				{"type": "paragraph", "paragraph": {"rich_text": [{"plain_text": "one"}]}},
				{"type": "paragraph", "paragraph": {"rich_text": [{"plain_text": "two"}]}}
			]}`,
			"one\ntwo\n",
		},
		{
			"empty paragraph keeps its line",
			`{"results": [{"type": "paragraph", "paragraph": {"rich_text": []}}]}`,
			"\n",
		},
		{
			"paragraph without rich_text skipped",
			`{"results": [{"type": "paragraph", "paragraph": {}}]}`,
			"",
		},
		{
			"other block types skipped",
			`{"results": [
				{"type": "heading_1", "heading_1": {"rich_text": [{"plain_text": "H"}]}},
				{"type": "paragraph", "paragraph": {"rich_text": [{"plain_text": "Hi "}, {"plain_text": "there"}]}},
				{"type": "bulleted_list_item", "bulleted_list_item": {"rich_text": [{"plain_text": "b"}]}}
			]}`,
			"Hi there\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parseBlockText([]byte(tt.body))
			if err != nil {
				t.Fatalf("parseBlockText() error = %v", err)
			}
			if got != tt.want {
				t.Errorf("parseBlockText() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestParseBlockIDs(t *testing.T) {
	body := `{"results": [{"id": "b-1"}, {"type": "divider"}, {"id": "b-3"}]}`
	got, err := parseBlockIDs([]byte(body))
	if err != nil {
		t.Fatalf("parseBlockIDs() error = %v", err)
	}
	if want := []string{"b-1", "b-3"}; !slices.Equal(got, want) {
		t.Errorf("parseBlockIDs() = %q, want %q", got, want)
	}
}

func TestEachResult_Malformed(t *testing.T) {
	bodies := []string{
		``,
		`not json`,
		`{"results": [`,
		`"just a string"`,
		`[]`,
		`{"results": "nope"}`,
		`{"results": 3}`,
	}
	for _, body := range bodies {
		if err := eachResult([]byte(body), func([]byte) {}); err == nil {
			t.Errorf("eachResult(%q) returned nil error", body)
		}
	}
}
