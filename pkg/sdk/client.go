package fieldcodec

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/fieldcodec/internal/config"
	"github.com/kailas-cloud/fieldcodec/internal/db"
	"github.com/kailas-cloud/fieldcodec/internal/db/memory"
	dbRedis "github.com/kailas-cloud/fieldcodec/internal/db/redis"
	"github.com/kailas-cloud/fieldcodec/internal/domain/schema"
	"github.com/kailas-cloud/fieldcodec/internal/fieldtype"
	"github.com/kailas-cloud/fieldcodec/internal/response"
	healthuc "github.com/kailas-cloud/fieldcodec/internal/usecase/health"
	"github.com/kailas-cloud/fieldcodec/internal/usecase/indexing"
	searchuc "github.com/kailas-cloud/fieldcodec/internal/usecase/search"
)

const defaultReadinessTimeout = 10 * time.Second

// Internal interfaces, swapped out in tests.
type indexUseCase interface {
	Index(ctx context.Context, doc uint32, values map[string][]string) error
	Delete(ctx context.Context, doc uint32) error
	Build(fieldName, value string, boost float32) ([]fieldtype.Representation, error)
}

type searchUseCase interface {
	Sort(ctx context.Context, req searchuc.SortRequest) (searchuc.SortResult, error)
	Values(ctx context.Context, fieldName string, docs []uint32) (searchuc.ValuesResult, error)
	Lookup(ctx context.Context, fieldName, value string) (searchuc.TermResult, error)
	Merge(req searchuc.MergeRequest) ([]searchuc.MergedHit, error)
}

// Client is the fieldcodec SDK entry point. Safe for concurrent use.
type Client struct {
	store     db.Store
	schema    *schema.Schema
	indexSvc  indexUseCase
	searchSvc searchUseCase
	healthSvc healthUseCase
	obs       *observer
}

// New creates a Client and connects to the store.
// The provided context is used for the initial readiness check.
func New(ctx context.Context, opts ...Option) (*Client, error) {
	cfg := &clientConfig{driver: driverMemory}
	for _, o := range opts {
		o.apply(cfg)
	}

	if cfg.schemaErr != nil {
		return nil, cfg.schemaErr
	}
	if len(cfg.fields) == 0 {
		return nil, errors.New("fieldcodec: schema required (use WithSchema or WithSchemaOf)")
	}
	if cfg.driver != driverMemory && len(cfg.addrs) == 0 {
		return nil, errors.New("fieldcodec: database address required")
	}

	types := fieldtype.NewRegistry()
	s, err := buildSchema(cfg, types)
	if err != nil {
		return nil, fmt.Errorf("fieldcodec: %w", err)
	}

	store, err := createStore(cfg)
	if err != nil {
		return nil, err
	}

	if err := store.WaitForReady(ctx, defaultReadinessTimeout); err != nil {
		store.Close()
		return nil, fmt.Errorf("fieldcodec: database not ready: %w", err)
	}

	obs, err := newObserver(cfg.logger, cfg.metricsReg)
	if err != nil {
		store.Close()
		return nil, err
	}
	return wireClient(store, s, types, cfg, obs), nil
}

func buildSchema(cfg *clientConfig, types *fieldtype.Registry) (*schema.Schema, error) {
	sc := config.SchemaConfig{Name: cfg.schemaName}
	for _, f := range cfg.fields {
		sc.Fields = append(sc.Fields, config.FieldConfig{
			Name:             f.Name,
			Indexed:          f.Indexed,
			Stored:           f.Stored,
			DocValues:        f.DocValues,
			MultiValued:      f.MultiValued,
			SortMissingFirst: f.SortMissingFirst,
			SortMissingLast:  f.SortMissingLast,
		})
	}
	return sc.Build(types.CheckField)
}

func createStore(cfg *clientConfig) (db.Store, error) {
	switch cfg.driver {
	case driverMemory:
		return memory.NewStore(), nil
	case driverValkey, driverRedis:
		s, err := dbRedis.NewStore(dbRedis.Config{
			Addrs:     cfg.addrs,
			Password:  cfg.password,
			KeyPrefix: cfg.keyPrefix,
		})
		if err != nil {
			return nil, fmt.Errorf("fieldcodec: create %s store: %w", cfg.driver, err)
		}
		return s, nil
	default:
		return nil, fmt.Errorf("fieldcodec: unknown driver %q", cfg.driver)
	}
}

func wireClient(
	store db.Store, s *schema.Schema, types *fieldtype.Registry, cfg *clientConfig, obs *observer,
) *Client {
	logger := cfg.logger
	if logger == nil {
		logger = zap.NewNop()
	}

	searchSvc := searchuc.New(s, types, store, logger)
	if cfg.defaultLimit > 0 || cfg.maxLimit > 0 {
		searchSvc = searchSvc.WithLimits(cfg.defaultLimit, cfg.maxLimit)
	}

	return &Client{
		store:     store,
		schema:    s,
		indexSvc:  indexing.New(s, types, store, logger),
		searchSvc: searchSvc,
		healthSvc: healthuc.New(store, ""),
		obs:       obs,
	}
}

// Close releases all resources.
func (c *Client) Close() {
	if c.store != nil {
		c.store.Close()
	}
}

// Ping checks database connectivity.
func (c *Client) Ping(ctx context.Context) (err error) {
	call := c.obs.begin("ping", "")
	defer func() { call.end(noRows, err) }()

	if err = c.store.Ping(ctx); err != nil {
		return fmt.Errorf("ping: %w", err)
	}
	return nil
}

// Index replaces document doc with the given field values.
func (c *Client) Index(ctx context.Context, doc uint32, fields map[string][]string) (err error) {
	call := c.obs.begin("index", "")
	defer func() { call.end(noRows, err) }()

	if err = c.indexSvc.Index(ctx, doc, fields); err != nil {
		return fmt.Errorf("index document %d: %w", doc, err)
	}
	return nil
}

// Delete removes document doc. Returns ErrDocumentNotFound if it does not exist.
func (c *Client) Delete(ctx context.Context, doc uint32) (err error) {
	call := c.obs.begin("delete", "")
	defer func() { call.end(noRows, err) }()

	if err = c.indexSvc.Delete(ctx, doc); err != nil {
		return fmt.Errorf("delete document %d: %w", doc, err)
	}
	return nil
}

// Sort returns up to limit documents ordered by field. limit <= 0 means the
// configured default.
func (c *Client) Sort(ctx context.Context, field string, desc bool, limit int) (_ SortResult, err error) {
	call := c.obs.begin("sort", field)
	rows := 0
	defer func() { call.end(rows, err) }()

	res, err := c.searchSvc.Sort(ctx, searchuc.SortRequest{Field: field, Reverse: desc, Limit: limit})
	if err != nil {
		return SortResult{}, fmt.Errorf("sort by %s: %w", field, err)
	}
	hits := make([]Hit, len(res.Hits))
	for i, h := range res.Hits {
		hits[i] = Hit{Doc: h.Doc, Fields: fieldsOf(h.Fields), Sort: textOf(h.Sort)}
	}
	rows = len(hits)
	return SortResult{Total: res.Total, Hits: hits}, nil
}

// Values reads the column value of field for each doc, in the order given.
func (c *Client) Values(ctx context.Context, field string, docs ...uint32) (_ []Value, err error) {
	call := c.obs.begin("values", field)
	rows := 0
	defer func() { call.end(rows, err) }()

	res, err := c.searchSvc.Values(ctx, field, docs)
	if err != nil {
		return nil, fmt.Errorf("values of %s: %w", field, err)
	}
	out := make([]Value, len(res.Values))
	for i, v := range res.Values {
		out[i] = Value{Doc: v.Doc, Value: v.Value, Exists: v.Exists}
	}
	rows = len(out)
	return out, nil
}

// Terms returns the documents whose field was indexed with exactly value.
func (c *Client) Terms(ctx context.Context, field, value string) (_ []uint32, err error) {
	call := c.obs.begin("terms", field)
	rows := 0
	defer func() { call.end(rows, err) }()

	res, err := c.searchSvc.Lookup(ctx, field, value)
	if err != nil {
		return nil, fmt.Errorf("terms of %s: %w", field, err)
	}
	rows = len(res.Docs)
	return res.Docs, nil
}

// Merge combines hit lists sorted by field on several shards into one order
// and keeps the first limit hits. limit <= 0 means the configured default.
func (c *Client) Merge(field string, desc bool, limit int, shards ...ShardHits) (_ []MergedHit, err error) {
	call := c.obs.begin("merge", field)
	rows := 0
	defer func() { call.end(rows, err) }()

	req := searchuc.MergeRequest{Field: field, Reverse: desc, Limit: limit}
	for _, sh := range shards {
		hits := make([]searchuc.ShardHit, len(sh.Hits))
		for i, h := range sh.Hits {
			hits[i] = searchuc.ShardHit{Doc: h.Doc, Sort: tokenOf(h.Sort)}
		}
		req.Shards = append(req.Shards, searchuc.ShardResult{Name: sh.Name, Hits: hits})
	}

	merged, err := c.searchSvc.Merge(req)
	if err != nil {
		return nil, fmt.Errorf("merge by %s: %w", field, err)
	}
	out := make([]MergedHit, len(merged))
	for i, m := range merged {
		hit := shards[m.ShardIndex].Hits[m.HitIndex]
		hit.Sort = textOf(m.Sort)
		out[i] = MergedHit{Shard: m.Shard, Hit: hit}
	}
	rows = len(out)
	return out, nil
}

// Representations shows what indexing value into field would write. Nothing
// is written.
func (c *Client) Representations(field, value string, boost float32) ([]Representation, error) {
	reps, err := c.indexSvc.Build(field, value, boost)
	if err != nil {
		return nil, fmt.Errorf("representations of %s: %w", field, err)
	}
	out := make([]Representation, len(reps))
	for i, r := range reps {
		out[i] = Representation{
			Kind:    r.Kind.String(),
			Field:   r.Field,
			Value:   r.Value,
			Boost:   r.Boost,
			Indexed: r.Indexed,
			Stored:  r.Stored,
			Term:    r.Term,
			Bytes:   r.Bytes,
		}
	}
	return out, nil
}

func fieldsOf(d *response.Document) map[string][]string {
	if d == nil {
		return nil
	}
	out := make(map[string][]string, d.Len())
	for _, name := range d.Names() {
		if vals := d.Values(name); len(vals) > 0 {
			out[name] = vals
		}
	}
	return out
}

func textOf(t fieldtype.Token) *string {
	if t.IsAbsent() {
		return nil
	}
	s := t.Text()
	return &s
}

func tokenOf(s *string) fieldtype.Token {
	if s == nil {
		return fieldtype.AbsentToken()
	}
	return fieldtype.TokenOf(*s)
}
