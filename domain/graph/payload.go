package graph

import (
	"fmt"
	"hash/fnv"
	"time"
)

// Metadata describes a payload's content so clients can reconcile freshness
// and render distribution summaries without walking the element arrays.
type Metadata struct {
	NodeCount    int            `json:"nodeCount"`
	EdgeCount    int            `json:"edgeCount"`
	Categories   map[string]int `json:"categories"`
	EdgeTypes    map[string]int `json:"edgeTypes"`
	DroppedEdges int            `json:"droppedEdges"`
	GeneratedAt  time.Time      `json:"generatedAt"`
	Version      string         `json:"version"`
}

// Payload is the full node/edge/metadata bundle returned by aggregation.
type Payload struct {
	Nodes    []Node   `json:"nodes"`
	Edges    []Edge   `json:"edges"`
	Metadata Metadata `json:"metadata"`
}

// Version derives the cache-busting token from the payload's observable
// content. Any change to node count, edge count or generation time yields a
// different token, so clients holding a stale version will always notice.
func Version(nodeCount, edgeCount int, generatedAt time.Time) string {
	h := fnv.New64a()
	fmt.Fprintf(h, "%d:%d:%d", nodeCount, edgeCount, generatedAt.UnixNano())
	return fmt.Sprintf("%016x", h.Sum64())
}

// NewMetadata builds payload metadata, stamping the version token.
func NewMetadata(nodes []Node, edges []Edge, dropped int, generatedAt time.Time) Metadata {
	categories := make(map[string]int)
	for _, n := range nodes {
		categories[n.Category]++
	}
	edgeTypes := make(map[string]int)
	for _, e := range edges {
		edgeTypes[e.Type]++
	}
	return Metadata{
		NodeCount:    len(nodes),
		EdgeCount:    len(edges),
		Categories:   categories,
		EdgeTypes:    edgeTypes,
		DroppedEdges: dropped,
		GeneratedAt:  generatedAt,
		Version:      Version(len(nodes), len(edges), generatedAt),
	}
}
