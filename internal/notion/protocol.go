package notion

import (
	"strings"

	"github.com/jomei/notionapi"
)

const (
	// DefaultBaseURL is the versioned Notion API endpoint.
	DefaultBaseURL = "https://api.notion.com/v1"

	// DefaultVersion is sent in the Notion-Version header.
	DefaultVersion = "2022-06-28"

	// UntitledDatabase is used when a database has no readable title.
	UntitledDatabase = "Untitled Database"

	// UntitledPage is used when a page has no readable title property.
	UntitledPage = "Untitled Page"
)

// DatabaseSummary identifies a database shared with the integration.
type DatabaseSummary struct {
	ID    string
	Title string
}

// PageSummary identifies a page inside a database.
type PageSummary struct {
	ID    string
	Title string
}

func searchPath() string { return "/search" }
func queryDatabasePath(id string) string { return "/databases/" + id + "/query" }
func blockChildrenPath(id string) string { return "/blocks/" + id + "/children" }
func blockPath(id string) string { return "/blocks/" + id }
func currentUserPath() string { return "/users/me" }

// searchDatabasesRequest restricts search results to databases.
func searchDatabasesRequest() *notionapi.SearchRequest {
	return &notionapi.SearchRequest{
		Filter: notionapi.SearchFilter{
			Value:    "database",
			Property: "object",
		},
	}
}

// queryDatabaseRequest is the empty query: no filter, no sorts, first page.
type queryDatabaseRequest struct{}

// archiveBlockRequest marks a single block as archived.
type archiveBlockRequest struct {
	Archived bool `json:"archived"`
}

// appendParagraphsRequest builds the append-children body with one plain
// paragraph block per entry of paragraphs.
func appendParagraphsRequest(paragraphs []string) *notionapi.AppendBlockChildrenRequest {
	children := make([]notionapi.Block, 0, len(paragraphs))
	for _, p := range paragraphs {
		children = append(children, paragraphBlock(p))
	}
	return &notionapi.AppendBlockChildrenRequest{Children: children}
}

func paragraphBlock(text string) *notionapi.ParagraphBlock {
	return &notionapi.ParagraphBlock{
		BasicBlock: notionapi.BasicBlock{
			Object: "block",
			Type:   notionapi.BlockTypeParagraph,
		},
		Paragraph: notionapi.Paragraph{
			RichText: []notionapi.RichText{
				{
					Type: "text",
					Text: &notionapi.Text{Content: text},
				},
			},
		},
	}
}

// SplitParagraphs turns document content into the paragraphs that will be
// written to a page. Lines are split on "\n", a trailing "\r" is dropped and
// blank lines never produce a paragraph.
func SplitParagraphs(content string) []string {
	var paragraphs []string
	for _, line := range strings.Split(content, "\n") {
		line = strings.TrimSuffix(line, "\r")
		if line == "" {
			continue
		}
		paragraphs = append(paragraphs, line)
	}
	return paragraphs
}

// JoinParagraphs renders paragraphs as document content, each one followed
// by a line break. It is the inverse of SplitParagraphs for content
// without blank lines.
func JoinParagraphs(paragraphs []string) string {
	var sb strings.Builder
	for _, p := range paragraphs {
		sb.WriteString(p)
		sb.WriteByte('\n')
	}
	return sb.String()
}
