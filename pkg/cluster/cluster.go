// Package cluster deduplicates raw items into canonical story clusters via
// content fingerprinting.
package cluster

import (
	"crypto/md5"
	"encoding/hex"
	"strings"
	"time"

	"github.com/pautalab/newsradar/pkg/feed"
	"github.com/pautalab/newsradar/pkg/normalize"
)

// titleTruncate bounds the title portion of the fingerprint: long enough to
// merge near-duplicate headlines, short enough to avoid false merges on
// generic URLs.
const titleTruncate = 140

// Cluster is a set of raw items judged to be the same underlying story.
// Immutable once built for a batch run.
type Cluster struct {
	ID          string    `json:"id"` // fingerprint
	Headline    string    `json:"headline"`
	PublishedAt time.Time `json:"published_at"`
	URLs        []string  `json:"urls"` // ordered, duplicates allowed
	Sources     []string  `json:"sources"`
	Titles      []string  `json:"titles"`
	Entities    Entities  `json:"entities"`
}

// Fingerprint is the dedup key: md5 of canonical URL, truncated title and
// source. The title is case-folded and whitespace-collapsed first so
// near-identical headlines land in the same cluster.
func Fingerprint(item feed.Item) string {
	title := strings.Join(strings.Fields(strings.ToLower(item.Title)), " ")
	if len(title) > titleTruncate {
		title = title[:titleTruncate]
	}
	canon := normalize.CanonicalURL(item.URL) + "|" + title + "|" + item.Source
	sum := md5.Sum([]byte(canon))
	return hex.EncodeToString(sum[:])
}

// Build groups items sharing a fingerprint into clusters, in first-seen
// order. The representative headline and published_at come from the member
// with the latest published_at; ties keep the earlier member.
func (e *Extractor) Build(items []feed.Item) []Cluster {
	groups := make(map[string][]feed.Item)
	var order []string

	for _, item := range items {
		fp := Fingerprint(item)
		if _, seen := groups[fp]; !seen {
			order = append(order, fp)
		}
		groups[fp] = append(groups[fp], item)
	}

	clusters := make([]Cluster, 0, len(order))
	for _, fp := range order {
		group := groups[fp]

		chosen := group[0]
		for _, member := range group[1:] {
			if member.PublishedAt.After(chosen.PublishedAt) {
				chosen = member
			}
		}

		c := Cluster{
			ID:          fp,
			Headline:    chosen.Title,
			PublishedAt: chosen.PublishedAt,
		}
		text := ""
		for _, member := range group {
			c.URLs = append(c.URLs, member.URL)
			c.Sources = append(c.Sources, member.Source)
			c.Titles = append(c.Titles, member.Title)
			text += member.Title + " "
		}
		c.Entities = e.Extract(text)
		clusters = append(clusters, c)
	}
	return clusters
}
