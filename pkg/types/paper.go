// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import (
	"regexp"
	"strings"
)

// PaperID is a normalized paper identifier in the metadata provider's
// namespace: a 40-char Semantic Scholar hash, or a prefixed external id
// such as "arXiv:1705.10311" or "DOI:10.1038/nature14539".
// Per prd002-metadata R1.1.
type PaperID string

// Direction selects which neighbor lists a metadata fetch returns. It is
// part of the cache query key, so the two values cache independently.
// Per prd001-exploration R2.4, prd003-cache R2.2.
type Direction string

const (
	// DirReferences fetches the outgoing reference list only.
	DirReferences Direction = "refs"

	// DirBoth fetches references and incoming citations.
	DirBoth Direction = "refs+cits"
)

var (
	// paperURL unwraps a Semantic Scholar paper page URL to its hash.
	paperURL = regexp.MustCompile(`^https?://(?:www\.)?semanticscholar\.org/paper/(?:.+/)?([0-9a-f]{40})/?$`)

	arxivBare    = regexp.MustCompile(`^\d{4}\.\d{4,5}(v\d+)?$`)
	doiBare      = regexp.MustCompile(`^10\.\d{4,9}/\S+$`)
	arxivVersion = regexp.MustCompile(`v\d+$`)
)

// schemes maps lower-cased identifier prefixes to their canonical spelling.
var schemes = map[string]string{
	"arxiv":    "arXiv",
	"doi":      "DOI",
	"corpusid": "CorpusID",
	"pmid":     "PMID",
	"pmcid":    "PMCID",
	"mag":      "MAG",
	"acl":      "ACL",
	"url":      "URL",
}

// ParseID normalizes a raw identifier: whitespace is trimmed, a Semantic
// Scholar paper URL is unwrapped to its hash, bare arXiv ids and DOIs gain
// their scheme prefix, and known prefixes are canonicalized. arXiv version
// suffixes are dropped so every version of a preprint shares one id.
// Returns "" when the input cannot name a paper.
// Per prd002-metadata R1.2-R1.4.
func ParseID(raw string) PaperID {
	s := strings.TrimSpace(raw)
	if s == "" {
		return ""
	}
	if m := paperURL.FindStringSubmatch(s); m != nil {
		return PaperID(m[1])
	}
	if arxivBare.MatchString(s) {
		return PaperID("arXiv:" + arxivVersion.ReplaceAllString(s, ""))
	}
	if doiBare.MatchString(s) {
		return PaperID("DOI:" + s)
	}
	if i := strings.Index(s, ":"); i > 0 {
		if canon, ok := schemes[strings.ToLower(s[:i])]; ok {
			rest := strings.TrimSpace(s[i+1:])
			if rest == "" {
				return ""
			}
			if canon == "arXiv" {
				rest = arxivVersion.ReplaceAllString(rest, "")
			}
			return PaperID(canon + ":" + rest)
		}
	}
	return PaperID(s)
}

// Author is one paper author, name split per CSL conventions.
type Author struct {
	// Family is the family (last) name, used for similarity and labels.
	Family string `json:"family" yaml:"family"`

	// Given is the given name or initials, possibly empty.
	Given string `json:"given,omitempty" yaml:"given,omitempty"`
}

// Paper holds the metadata kept per graph node. Provider fetches fill the
// bibliographic fields; Extra carries free-form bibliography fields so tag
// predicates can see user annotations. Per prd001-exploration R3.2.
type Paper struct {
	// ID is the normalized paper identifier.
	ID PaperID `json:"id" yaml:"id"`

	// Title is the paper title as reported by the provider or bibliography.
	Title string `json:"title" yaml:"title"`

	// Year is the publication year, 0 when unknown.
	Year int `json:"year,omitempty" yaml:"year,omitempty"`

	// Venue is the journal or proceedings name.
	Venue string `json:"venue,omitempty" yaml:"venue,omitempty"`

	// Authors lists the authors in source order.
	Authors []Author `json:"authors,omitempty" yaml:"authors,omitempty"`

	// CitationCount is the provider's incoming-citation total.
	CitationCount int `json:"citation_count,omitempty" yaml:"citation_count,omitempty"`

	// ReferenceCount is the provider's outgoing-reference total.
	ReferenceCount int `json:"reference_count,omitempty" yaml:"reference_count,omitempty"`

	// Extra holds free-form fields merged from a matching bibliography
	// entry (e.g. read: "true", topic: "attention"). Tag predicates can
	// reference these by name. Per prd004-tags R2.3.
	Extra map[string]string `json:"extra,omitempty" yaml:"extra,omitempty"`
}

// PaperRefs is one provider response: a paper's record plus neighbor stubs
// in the requested direction(s). Stubs carry enough metadata to score and
// label boundary nodes without fetching them.
type PaperRefs struct {
	Paper Paper `json:"paper" yaml:"paper"`

	// References are papers this paper cites (outgoing edges).
	References []Paper `json:"references,omitempty" yaml:"references,omitempty"`

	// Citations are papers citing this paper (incoming edges).
	Citations []Paper `json:"citations,omitempty" yaml:"citations,omitempty"`
}
