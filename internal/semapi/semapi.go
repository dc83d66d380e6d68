// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package semapi fetches paper metadata and citation neighbors from the
// Semantic Scholar Graph API. One Fetch is one API call: the paper's own
// record plus its reference (and optionally citation) stubs, which is the
// unit the response cache stores.
// Implements: prd002-metadata (R1-R5);
//
//	docs/ARCHITECTURE § Metadata Provider.
package semapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/pdiddy/citegraph/internal/httputil"
	"github.com/pdiddy/citegraph/pkg/types"
)

// paperAPIBase is the Semantic Scholar paper detail endpoint. Declared as a
// var so tests can substitute an httptest server.
var paperAPIBase = "https://api.semanticscholar.org/graph/v1/paper"

// paperPageBase is the human-facing paper page on the provider's site.
const paperPageBase = "https://www.semanticscholar.org/paper"

// PaperURL returns the provider's paper page for id. Exporters attach it to
// nodes so rendered graphs link back to the source record.
func PaperURL(id types.PaperID) string {
	return paperPageBase + "/" + url.PathEscape(string(id))
}

// ErrNotFound reports an identifier the provider does not know. Callers
// record it as a negative cache entry rather than retrying every run.
var ErrNotFound = errors.New("paper not found")

const (
	paperFields = "paperId,title,year,venue,authors,externalIds,citationCount,referenceCount"
	stubFields  = "paperId,title,year,venue,authors,externalIds,citationCount"

	defaultNeighborLimit = 500
	maxNeighborLimit     = 1000
)

// Client calls the Semantic Scholar Graph API. The zero value is not
// usable; construct with New.
type Client struct {
	http *http.Client
	cfg  types.ProviderConfig
}

// New returns a Client using cfg. A zero Timeout falls back to the HTTP
// client default of no timeout; per-request deadlines come from the
// caller's context.
func New(cfg types.ProviderConfig) *Client {
	return &Client{
		http: &http.Client{Timeout: cfg.Timeout},
		cfg:  cfg,
	}
}

// Fetch returns the paper's record and neighbor stubs for the direction.
// The record's ID is the normalized requested id; stub ids prefer external
// identifiers (arXiv, then DOI) over provider hashes so bibliography ids
// match discovered neighbors. A 404 maps to ErrNotFound.
// Per prd002-metadata R2.1-R2.4.
func (c *Client) Fetch(ctx context.Context, id types.PaperID, dir types.Direction) (*types.PaperRefs, error) {
	id = types.ParseID(string(id))
	if id == "" {
		return nil, fmt.Errorf("empty paper id")
	}

	params := url.Values{"fields": {fieldsFor(dir)}}
	reqURL := paperAPIBase + "/" + url.PathEscape(string(id)) + "?" + params.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("User-Agent", c.cfg.UserAgent)
	if c.cfg.APIKey != "" {
		req.Header.Set("x-api-key", c.cfg.APIKey)
	}

	resp, err := httputil.DoWithRetry(ctx, c.http, req, 0)
	if err != nil {
		return nil, fmt.Errorf("Semantic Scholar API request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, fmt.Errorf("paper %s: %w", id, ErrNotFound)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("Semantic Scholar API returned HTTP %d", resp.StatusCode)
	}

	var ap apiPaper
	if err := json.NewDecoder(resp.Body).Decode(&ap); err != nil {
		return nil, fmt.Errorf("parsing Semantic Scholar response: %w", err)
	}

	out := &types.PaperRefs{Paper: toPaper(ap, id)}
	limit := c.neighborLimit()
	for _, r := range ap.References {
		if len(out.References) >= limit {
			break
		}
		if p, ok := toStub(r); ok {
			out.References = append(out.References, p)
		}
	}
	for _, r := range ap.Citations {
		if len(out.Citations) >= limit {
			break
		}
		if p, ok := toStub(r); ok {
			out.Citations = append(out.Citations, p)
		}
	}
	return out, nil
}

func (c *Client) neighborLimit() int {
	limit := c.cfg.NeighborLimit
	if limit <= 0 {
		limit = defaultNeighborLimit
	}
	if limit > maxNeighborLimit {
		limit = maxNeighborLimit
	}
	return limit
}

// fieldsFor builds the fields parameter for the direction: the paper's own
// fields plus nested stub fields for each requested neighbor list.
func fieldsFor(dir types.Direction) string {
	fields := []string{paperFields}
	for _, f := range strings.Split(stubFields, ",") {
		fields = append(fields, "references."+f)
	}
	if dir == types.DirBoth {
		for _, f := range strings.Split(stubFields, ",") {
			fields = append(fields, "citations."+f)
		}
	}
	return strings.Join(fields, ",")
}

// toPaper maps an API record onto id, keeping the caller's identity.
func toPaper(ap apiPaper, id types.PaperID) types.Paper {
	p := types.Paper{
		ID:             id,
		Title:          ap.Title,
		Year:           ap.Year,
		Venue:          ap.Venue,
		CitationCount:  ap.CitationCount,
		ReferenceCount: ap.ReferenceCount,
	}
	for _, a := range ap.Authors {
		p.Authors = append(p.Authors, splitName(a.Name))
	}
	return p
}

// toStub maps a neighbor record, deriving its id by external-id preference.
// Unmatched references come back from the API with a null paperId; those
// are unusable and skipped. Per prd002-metadata R3.2.
func toStub(ap apiPaper) (types.Paper, bool) {
	id := stubID(ap)
	if id == "" {
		return types.Paper{}, false
	}
	return toPaper(ap, id), true
}

func stubID(ap apiPaper) types.PaperID {
	switch {
	case ap.ExternalIDs.ArXiv != "":
		return types.ParseID("arXiv:" + ap.ExternalIDs.ArXiv)
	case ap.ExternalIDs.DOI != "":
		return types.ParseID("DOI:" + ap.ExternalIDs.DOI)
	default:
		return types.ParseID(ap.PaperID)
	}
}

// splitName splits a full name on the last space: everything before is
// given, the last token is family. Single-token names are all family.
func splitName(name string) types.Author {
	name = strings.TrimSpace(name)
	if name == "" {
		return types.Author{}
	}
	idx := strings.LastIndex(name, " ")
	if idx < 0 {
		return types.Author{Family: name}
	}
	return types.Author{Given: name[:idx], Family: name[idx+1:]}
}

// Semantic Scholar API JSON structures.
type apiPaper struct {
	PaperID        string         `json:"paperId"`
	Title          string         `json:"title"`
	Year           int            `json:"year"`
	Venue          string         `json:"venue"`
	Authors        []apiAuthor    `json:"authors"`
	ExternalIDs    apiExternalIDs `json:"externalIds"`
	CitationCount  int            `json:"citationCount"`
	ReferenceCount int            `json:"referenceCount"`
	References     []apiPaper     `json:"references"`
	Citations      []apiPaper     `json:"citations"`
}

type apiAuthor struct {
	AuthorID string `json:"authorId"`
	Name     string `json:"name"`
}

type apiExternalIDs struct {
	DOI      string `json:"DOI"`
	ArXiv    string `json:"ArXiv"`
	CorpusID int    `json:"CorpusId"`
}
