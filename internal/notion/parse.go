package notion

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/buger/jsonparser"
)

// Responses are walked as a generic JSON tree rather than decoded into
// fixed structs: only the paths needed are read, and optional fields that
// are absent fall back to empty values or sentinel titles.

var errNotObject = errors.New("top-level value is not an object")

// eachResult calls fn for every element of the top-level "results" array.
// A missing or null results field is treated as an empty list.
func eachResult(body []byte, fn func(item []byte)) error {
	if !json.Valid(body) {
		return errors.New("body is not valid JSON")
	}
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 || trimmed[0] != '{' {
		return errNotObject
	}

	results, dataType, _, err := jsonparser.Get(trimmed, "results")
	switch {
	case dataType == jsonparser.NotExist || dataType == jsonparser.Null:
		return nil
	case err != nil:
		return fmt.Errorf("reading results: %w", err)
	case dataType != jsonparser.Array:
		return fmt.Errorf("results is %v, not an array", dataType)
	}

	_, err = jsonparser.ArrayEach(results, func(item []byte, itemType jsonparser.ValueType, _ int, _ error) {
		if itemType == jsonparser.Object {
			fn(item)
		}
	})
	if err != nil {
		return fmt.Errorf("reading results: %w", err)
	}
	return nil
}

// parseDatabases extracts database summaries from a search response.
func parseDatabases(body []byte) ([]DatabaseSummary, error) {
	databases := []DatabaseSummary{}
	err := eachResult(body, func(item []byte) {
		id, err := jsonparser.GetString(item, "id")
		if err != nil || id == "" {
			return
		}
		title := UntitledDatabase
		if text := richTextAt(item, "title"); text != "" {
			title = text
		}
		databases = append(databases, DatabaseSummary{ID: id, Title: title})
	})
	if err != nil {
		return nil, err
	}
	return databases, nil
}

// parsePages extracts page summaries from a database query response.
func parsePages(body []byte) ([]PageSummary, error) {
	pages := []PageSummary{}
	err := eachResult(body, func(item []byte) {
		id, err := jsonparser.GetString(item, "id")
		if err != nil || id == "" {
			return
		}
		title := pageTitle(item)
		if title == "" {
			title = UntitledPage
		}
		pages = append(pages, PageSummary{ID: id, Title: title})
	})
	if err != nil {
		return nil, err
	}
	return pages, nil
}

// parseBlockText renders the paragraph blocks of a block-children response
// as document content. Every other block type is skipped.
func parseBlockText(body []byte) (string, error) {
	var sb strings.Builder
	err := eachResult(body, func(item []byte) {
		blockType, _ := jsonparser.GetString(item, "type")
		if blockType != "paragraph" {
			return
		}
		runs, dataType, _, err := jsonparser.Get(item, "paragraph", "rich_text")
		if err != nil || dataType != jsonparser.Array {
			return
		}
		sb.WriteString(richTextPlain(runs))
		sb.WriteByte('\n')
	})
	if err != nil {
		return "", err
	}
	return sb.String(), nil
}

// parseBlockIDs lists the ids of every block in a block-children response,
// in response order.
func parseBlockIDs(body []byte) ([]string, error) {
	var ids []string
	err := eachResult(body, func(item []byte) {
		if id, err := jsonparser.GetString(item, "id"); err == nil && id != "" {
			ids = append(ids, id)
		}
	})
	if err != nil {
		return nil, err
	}
	return ids, nil
}

// pageTitle returns the text of the first property declared as type
// "title", in the order the properties appear in the response.
func pageTitle(page []byte) string {
	var (
		title string
		found bool
	)
	_ = jsonparser.ObjectEach(page, func(_ []byte, prop []byte, dataType jsonparser.ValueType, _ int) error {
		if found || dataType != jsonparser.Object {
			return nil
		}
		if propType, _ := jsonparser.GetString(prop, "type"); propType != "title" {
			return nil
		}
		found = true
		title = richTextAt(prop, "title")
		return nil
	}, "properties")
	return title
}

// richTextAt reads the rich text array stored under key, returning "" when
// the key is absent or not an array.
func richTextAt(data []byte, key string) string {
	runs, dataType, _, err := jsonparser.Get(data, key)
	if err != nil || dataType != jsonparser.Array {
		return ""
	}
	return richTextPlain(runs)
}

// richTextPlain concatenates the plain_text of every run in array order.
// Runs without a string plain_text contribute nothing.
func richTextPlain(runs []byte) string {
	var sb strings.Builder
	_, _ = jsonparser.ArrayEach(runs, func(run []byte, dataType jsonparser.ValueType, _ int, _ error) {
		if dataType != jsonparser.Object {
			return
		}
		if text, err := jsonparser.GetString(run, "plain_text"); err == nil {
			sb.WriteString(text)
		}
	})
	return sb.String()
}
