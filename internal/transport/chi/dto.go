package chi

import (
	"encoding/json"

	"github.com/kailas-cloud/fieldcodec/internal/fieldtype"
	"github.com/kailas-cloud/fieldcodec/internal/response"
)

const (
	orderAsc  = "asc"
	orderDesc = "desc"
)

type indexRequest struct {
	Fields map[string][]string `json:"fields"`
}

type hitResponse struct {
	Doc    uint32             `json:"doc"`
	Fields *response.Document `json:"fields"`
	Sort   fieldtype.Token    `json:"sort"`
}

type sortResponse struct {
	Field string        `json:"field"`
	Order string        `json:"order"`
	Total int           `json:"total"`
	Hits  []hitResponse `json:"hits"`
}

type valueItem struct {
	Doc   uint32  `json:"doc"`
	Value *string `json:"value"`
}

type valuesResponse struct {
	Field  string      `json:"field"`
	Source string      `json:"source"`
	Values []valueItem `json:"values"`
}

type termsResponse struct {
	Field string   `json:"field"`
	Term  string   `json:"term"`
	Docs  []uint32 `json:"docs"`
}

type shardHit struct {
	Doc    uint32          `json:"doc"`
	Sort   fieldtype.Token `json:"sort"`
	Fields json.RawMessage `json:"fields,omitempty"`
}

type shardResult struct {
	Name string     `json:"name"`
	Hits []shardHit `json:"hits"`
}

type mergeRequest struct {
	Field  string        `json:"field"`
	Order  string        `json:"order"`
	Limit  int           `json:"limit"`
	Shards []shardResult `json:"shards"`
}

type mergedHit struct {
	Shard  string          `json:"shard"`
	Doc    uint32          `json:"doc"`
	Sort   fieldtype.Token `json:"sort"`
	Fields json.RawMessage `json:"fields,omitempty"`
}

type mergeResponse struct {
	Field string      `json:"field"`
	Order string      `json:"order"`
	Hits  []mergedHit `json:"hits"`
}

type representationRequest struct {
	Field string   `json:"field"`
	Value string   `json:"value"`
	Boost *float32 `json:"boost,omitempty"`
}

type representationItem struct {
	Kind    string   `json:"kind"`
	Field   string   `json:"field"`
	Value   *string  `json:"value,omitempty"`
	Boost   *float32 `json:"boost,omitempty"`
	Indexed bool     `json:"indexed,omitempty"`
	Stored  bool     `json:"stored,omitempty"`
	Term    []byte   `json:"term,omitempty"`
	Bytes   []byte   `json:"bytes,omitempty"`
}

type representationsResponse struct {
	Representations []representationItem `json:"representations"`
}

type healthResponse struct {
	Status  string            `json:"status"`
	Shard   string            `json:"shard"`
	Version string            `json:"version"`
	Checks  map[string]string `json:"checks"`
}

func representationToItem(r fieldtype.Representation) representationItem {
	item := representationItem{Kind: r.Kind.String(), Field: r.Field}
	if r.Kind == fieldtype.KindStored {
		v, b := r.Value, r.Boost
		item.Value = &v
		item.Boost = &b
		item.Indexed = r.Indexed
		item.Stored = r.Stored
		item.Term = r.Term
		return item
	}
	item.Bytes = r.Bytes
	return item
}
