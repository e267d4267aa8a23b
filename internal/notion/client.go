// Package notion is the synchronization client for Notion pages and
// databases. It holds the API token and the selected page, builds the
// requests for the handful of remote operations the editor needs, and
// converts between page blocks and plain-text document content.
package notion

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/jomei/notionapi"
)

// Client is the stateful entry point to the Notion API. All methods are
// safe for concurrent use; each one holds the client lock for its whole
// duration, so operations never interleave.
type Client struct {
	mu            sync.Mutex
	token         string
	currentPageID string

	baseURL         string
	version         string
	httpClient      *http.Client
	timeout         time.Duration
	failFastArchive bool
	logger          *slog.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithBaseURL overrides the API endpoint, e.g. to point at a test server.
func WithBaseURL(baseURL string) Option {
	return func(c *Client) {
		c.baseURL = strings.TrimSuffix(baseURL, "/")
	}
}

// WithVersion sets the Notion-Version header value.
func WithVersion(version string) Option {
	return func(c *Client) {
		c.version = version
	}
}

// WithHTTPClient sets the HTTP client used for every request.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// WithTimeout sets a per-request timeout. Zero keeps the transport default.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		c.timeout = d
	}
}

// WithFailFastArchive makes UpdatePageContent stop at the first block that
// cannot be archived instead of logging it and carrying on.
func WithFailFastArchive(enabled bool) Option {
	return func(c *Client) {
		c.failFastArchive = enabled
	}
}

// NewClient creates a client for the given token. An empty token is
// allowed; remote operations fail with ErrUnauthenticated until SetToken
// is called.
func NewClient(token string, logger *slog.Logger, opts ...Option) *Client {
	if logger == nil {
		logger = slog.Default()
	}

	c := &Client{
		token:      token,
		baseURL:    DefaultBaseURL,
		version:    DefaultVersion,
		httpClient: &http.Client{},
		logger:     logger,
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.timeout > 0 {
		hc := *c.httpClient
		hc.Timeout = c.timeout
		c.httpClient = &hc
	}
	return c
}

// SetToken replaces the API token. No request is made.
func (c *Client) SetToken(token string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.token = token
}

// Token returns the current API token so callers can persist it.
func (c *Client) Token() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.token
}

// Authenticated reports whether a token is set.
func (c *Client) Authenticated() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.token != ""
}

// SelectPage records pageID as the page being edited. The page is not
// checked for existence.
func (c *Client) SelectPage(pageID string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.currentPageID = pageID
}

// CurrentPage returns the selected page id, or "" when none is selected.
func (c *Client) CurrentPage() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.currentPageID
}

// ListDatabases returns every database shared with the integration, in the
// order Notion returns them.
func (c *Client) ListDatabases(ctx context.Context) ([]DatabaseSummary, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	const op = "list databases"
	if c.token == "" {
		return nil, ErrUnauthenticated
	}

	body, err := c.do(ctx, op, http.MethodPost, searchPath(), searchDatabasesRequest())
	if err != nil {
		return nil, err
	}
	databases, err := parseDatabases(body)
	if err != nil {
		return nil, &ProtocolError{Op: op, Err: err}
	}

	c.logger.Debug("listed databases", "count", len(databases))
	return databases, nil
}

// QueryDatabase returns the first page of entries of a database, unfiltered
// and unsorted, in the order Notion returns them.
func (c *Client) QueryDatabase(ctx context.Context, databaseID string) ([]PageSummary, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	const op = "query database"
	if c.token == "" {
		return nil, ErrUnauthenticated
	}

	body, err := c.do(ctx, op, http.MethodPost, queryDatabasePath(databaseID), queryDatabaseRequest{})
	if err != nil {
		return nil, err
	}
	pages, err := parsePages(body)
	if err != nil {
		return nil, &ProtocolError{Op: op, Err: err}
	}

	c.logger.Debug("queried database", "database_id", databaseID, "count", len(pages))
	return pages, nil
}

// GetPageContent returns the plain text of a page's paragraph blocks, one
// line per paragraph.
func (c *Client) GetPageContent(ctx context.Context, pageID string) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.getPageContent(ctx, pageID)
}

func (c *Client) getPageContent(ctx context.Context, pageID string) (string, error) {
	const op = "get page content"
	if c.token == "" {
		return "", ErrUnauthenticated
	}

	body, err := c.do(ctx, op, http.MethodGet, blockChildrenPath(pageID), nil)
	if err != nil {
		return "", err
	}
	content, err := parseBlockText(body)
	if err != nil {
		return "", &ProtocolError{Op: op, Err: err}
	}
	return content, nil
}

// UpdatePageContent replaces the content of a page with one paragraph per
// non-blank line of content.
//
// Notion has no "replace children" call, so the update runs in two phases:
// every existing child block is archived one request at a time, then the
// new paragraphs are appended in a single request. The update is not
// atomic. If the append fails after the archive phase, the page is left
// empty.
//
// By default a block that fails to archive is logged and skipped; with
// WithFailFastArchive the first such failure is returned and nothing is
// appended.
//
// Content with no non-blank lines only archives: no append request is sent,
// since Notion rejects an append with no children.
func (c *Client) UpdatePageContent(ctx context.Context, pageID, content string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.updatePageContent(ctx, pageID, content)
}

func (c *Client) updatePageContent(ctx context.Context, pageID, content string) error {
	if c.token == "" {
		return ErrUnauthenticated
	}
	if pageID == "" {
		return errors.New("update page content: empty page id")
	}

	body, err := c.do(ctx, "list page blocks", http.MethodGet, blockChildrenPath(pageID), nil)
	if err != nil {
		return err
	}
	blockIDs, err := parseBlockIDs(body)
	if err != nil {
		return &ProtocolError{Op: "list page blocks", Err: err}
	}

	var failed int
	for _, id := range blockIDs {
		if _, err := c.do(ctx, "archive block", http.MethodPatch, blockPath(id), archiveBlockRequest{Archived: true}); err != nil {
			if c.failFastArchive {
				return fmt.Errorf("archiving block %s: %w", id, err)
			}
			failed++
			c.logger.Warn("failed to archive block, continuing", "page_id", pageID, "block_id", id, "error", err)
		}
	}

	paragraphs := SplitParagraphs(content)
	c.logger.Debug("replacing page content",
		"page_id", pageID,
		"archived", len(blockIDs)-failed,
		"archive_failures", failed,
		"paragraphs", len(paragraphs),
	)
	if len(paragraphs) == 0 {
		return nil
	}

	if _, err := c.do(ctx, "append blocks", http.MethodPatch, blockChildrenPath(pageID), appendParagraphsRequest(paragraphs)); err != nil {
		return err
	}
	return nil
}

// OpenPage selects pageID and fetches its content. The selection sticks
// even when the fetch fails.
func (c *Client) OpenPage(ctx context.Context, pageID string) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.currentPageID = pageID
	return c.getPageContent(ctx, pageID)
}

// SaveCurrentPage writes content to the selected page.
func (c *Client) SaveCurrentPage(ctx context.Context, content string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.currentPageID == "" {
		return ErrNoPageSelected
	}
	return c.updatePageContent(ctx, c.currentPageID, content)
}

// Me returns the bot user the token belongs to. Useful for validating the token.
func (c *Client) Me(ctx context.Context) (*notionapi.User, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	const op = "get current user"
	if c.token == "" {
		return nil, ErrUnauthenticated
	}

	body, err := c.do(ctx, op, http.MethodGet, currentUserPath(), nil)
	if err != nil {
		return nil, err
	}
	var user notionapi.User
	if err := json.Unmarshal(body, &user); err != nil {
		return nil, &ProtocolError{Op: op, Err: err}
	}
	return &user, nil
}
