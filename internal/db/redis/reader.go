package redis

import (
	"context"
	"slices"
	"strings"

	"github.com/RoaringBitmap/roaring/v2"
	"github.com/redis/rueidis"

	"github.com/kailas-cloud/fieldcodec/internal/db"
	"github.com/kailas-cloud/fieldcodec/internal/index/docvalues"
)

// Documents returns the ids of all live documents.
func (s *Store) Documents(ctx context.Context) (*roaring.Bitmap, error) {
	ids, err := s.do(ctx, s.b().Smembers().Key(s.keys.docs()).Build()).AsStrSlice()
	if err != nil {
		return nil, &db.Error{Op: db.OpSMembers, Err: err}
	}
	return parseDocIDs(ids)
}

// StoredFields returns the stored values of doc, per field in insertion order.
func (s *Store) StoredFields(ctx context.Context, doc uint32) (map[string][]string, error) {
	head, err := s.doMulti(ctx, db.OpSMembers, []rueidis.Completed{
		s.b().Sismember().Key(s.keys.docs()).Member(docID(doc)).Build(),
		s.b().Smembers().Key(s.keys.manifest(doc)).Build(),
	})
	if err != nil {
		return nil, err
	}
	exists, err := head[0].AsBool()
	if err != nil {
		return nil, &db.Error{Op: db.OpSMembers, Err: err}
	}
	if !exists {
		return nil, db.ErrDocumentNotFound
	}
	entries, err := head[1].AsStrSlice()
	if err != nil {
		return nil, &db.Error{Op: db.OpSMembers, Err: err}
	}

	var fields []string
	for _, entry := range entries {
		if name, ok := strings.CutPrefix(entry, entryStored+":"); ok {
			fields = append(fields, name)
		}
	}
	slices.Sort(fields)

	out := make(map[string][]string, len(fields))
	if len(fields) == 0 {
		return out, nil
	}
	cmds := make([]rueidis.Completed, len(fields))
	for i, name := range fields {
		cmds[i] = s.b().Lrange().Key(s.keys.stored(doc, name)).Start(0).Stop(-1).Build()
	}
	results, err := s.doMulti(ctx, db.OpLRange, cmds)
	if err != nil {
		return nil, err
	}
	for i, res := range results {
		values, err := res.AsStrSlice()
		if err != nil {
			return nil, &db.Error{Op: db.OpLRange, Err: err}
		}
		out[fields[i]] = values
	}
	return out, nil
}

// TermDocs returns the docs indexed with term in field.
func (s *Store) TermDocs(ctx context.Context, field string, term []byte) (*roaring.Bitmap, error) {
	ids, err := s.do(ctx, s.b().Smembers().Key(s.keys.term(field, term)).Build()).AsStrSlice()
	if err != nil {
		return nil, &db.Error{Op: db.OpSMembers, Err: err}
	}
	return parseDocIDs(ids)
}

// LoadColumn reads the column of field into memory.
func (s *Store) LoadColumn(ctx context.Context, field string, multi bool) (*docvalues.Column, error) {
	col := docvalues.NewColumn(field, multi)
	if !multi {
		values, err := s.do(ctx, s.b().Hgetall().Key(s.keys.sorted(field)).Build()).AsStrMap()
		if err != nil {
			return nil, &db.Error{Op: db.OpHGetAll, Err: err}
		}
		for id, v := range values {
			doc, err := parseDocID(id)
			if err != nil {
				return nil, err
			}
			if err := col.Set(doc, []byte(v)); err != nil {
				return nil, err
			}
		}
		return col, nil
	}

	ids, err := s.do(ctx, s.b().Smembers().Key(s.keys.sortedSetDocs(field)).Build()).AsStrSlice()
	if err != nil {
		return nil, &db.Error{Op: db.OpSMembers, Err: err}
	}
	if len(ids) == 0 {
		return col, nil
	}
	docs := make([]uint32, len(ids))
	cmds := make([]rueidis.Completed, len(ids))
	for i, id := range ids {
		doc, err := parseDocID(id)
		if err != nil {
			return nil, err
		}
		docs[i] = doc
		cmds[i] = s.b().Smembers().Key(s.keys.sortedSet(field, doc)).Build()
	}
	results, err := s.doMulti(ctx, db.OpSMembers, cmds)
	if err != nil {
		return nil, err
	}
	for i, res := range results {
		values, err := res.AsStrSlice()
		if err != nil {
			return nil, &db.Error{Op: db.OpSMembers, Err: err}
		}
		for _, v := range values {
			if err := col.Add(docs[i], []byte(v)); err != nil {
				return nil, err
			}
		}
	}
	return col, nil
}
