package redis

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/redis/rueidis"

	"github.com/kailas-cloud/fieldcodec/internal/db"
	"github.com/kailas-cloud/fieldcodec/internal/fieldtype"
	"github.com/kailas-cloud/fieldcodec/internal/index/docvalues"
)

// maxReplaceAttempts bounds how often a replace is retried after a concurrent
// writer touched the same document.
const maxReplaceAttempts = 5

// ErrConflict is returned when a document kept changing under a replace.
var ErrConflict = errors.New("redis: concurrent modification")

// txCmd is a command queued inside MULTI, with the op reported if it fails.
type txCmd struct {
	op  string
	cmd rueidis.Completed
}

// WriteDocument replaces doc with reps. Cardinality is checked before any
// command is sent. The old version is removed and the new one written in one
// transaction, so a failed write leaves the previous version intact.
func (s *Store) WriteDocument(ctx context.Context, doc uint32, reps []fieldtype.Representation) error {
	if err := docvalues.CheckCardinality(reps); err != nil {
		return err
	}
	_, err := s.replace(ctx, db.OpWrite, doc, func() []txCmd { return s.writeCmds(doc, reps) })
	return err
}

// DeleteDocument removes doc and every key it touched.
func (s *Store) DeleteDocument(ctx context.Context, doc uint32) error {
	existed, err := s.replace(ctx, db.OpDelete, doc, nil)
	if err != nil {
		return err
	}
	if !existed {
		return db.ErrDocumentNotFound
	}
	return nil
}

// replace clears doc and queues the commands from write, if any, in a single
// MULTI/EXEC. The manifest is WATCHed while it is read, so a concurrent
// writer aborts the transaction and the replace starts over. Reports whether
// doc was live before.
func (s *Store) replace(ctx context.Context, op string, doc uint32, write func() []txCmd) (bool, error) {
	var existed bool
	err := s.client.Dedicated(func(c rueidis.DedicatedClient) error {
		for range maxReplaceAttempts {
			was, committed, err := s.tryReplace(ctx, c, op, doc, write)
			if err != nil {
				return err
			}
			if committed {
				existed = was
				return nil
			}
		}
		return &db.Error{Op: op, Err: fmt.Errorf("doc %d: %w", doc, ErrConflict)}
	})
	return existed, err
}

func (s *Store) tryReplace(
	ctx context.Context,
	c rueidis.DedicatedClient,
	op string,
	doc uint32,
	write func() []txCmd,
) (existed, committed bool, err error) {
	manifest := s.keys.manifest(doc)
	if err := c.Do(ctx, s.b().Watch().Key(manifest).Build()).Error(); err != nil {
		return false, false, &db.Error{Op: db.OpWatch, Err: err}
	}
	entries, err := c.Do(ctx, s.b().Smembers().Key(manifest).Build()).AsStrSlice()
	if err != nil {
		_ = c.Do(ctx, s.b().Unwatch().Build()).Error()
		return false, false, &db.Error{Op: db.OpSMembers, Err: err}
	}

	queued := s.removeCmds(doc, entries)
	if write != nil {
		queued = append(queued, write()...)
	}
	cmds := make([]rueidis.Completed, 0, len(queued)+2)
	cmds = append(cmds, s.b().Multi().Build())
	for _, q := range queued {
		cmds = append(cmds, q.cmd)
	}
	cmds = append(cmds, s.b().Exec().Build())

	results := c.DoMulti(ctx, cmds...)
	if len(results) != len(cmds) {
		return false, false, &db.Error{Op: op, Err: fmt.Errorf("expected %d replies, got %d", len(cmds), len(results))}
	}
	if err := results[0].Error(); err != nil {
		return false, false, &db.Error{Op: db.OpMulti, Err: err}
	}
	// A command rejected while queueing makes the server discard the transaction.
	for i, q := range queued {
		if err := results[i+1].Error(); err != nil {
			return false, false, &db.Error{Op: q.op, Err: fmt.Errorf("doc %d: %w", doc, err)}
		}
	}

	replies, err := results[len(results)-1].ToArray()
	if rueidis.IsRedisNil(err) {
		return false, false, nil
	}
	if err != nil {
		return false, false, &db.Error{Op: db.OpExec, Err: err}
	}
	if len(replies) != len(queued) {
		return false, false, &db.Error{Op: db.OpExec, Err: fmt.Errorf("expected %d replies, got %d", len(queued), len(replies))}
	}
	for i := range replies {
		if err := replies[i].Error(); err != nil {
			return false, false, &db.Error{Op: queued[i].op, Err: fmt.Errorf("doc %d: %w", doc, err)}
		}
	}

	// The first queued command drops doc from the membership set.
	removed, err := replies[0].AsInt64()
	if err != nil {
		return false, false, &db.Error{Op: db.OpSRem, Err: fmt.Errorf("parse reply: %w", err)}
	}
	return removed > 0, true, nil
}

func (s *Store) writeCmds(doc uint32, reps []fieldtype.Representation) []txCmd {
	id := docID(doc)
	cmds := make([]txCmd, 0, len(reps)+2)
	manifest := make([]string, 0, len(reps))
	seen := make(map[string]struct{}, len(reps))
	track := func(entry string) {
		if _, ok := seen[entry]; ok {
			return
		}
		seen[entry] = struct{}{}
		manifest = append(manifest, entry)
	}

	for _, r := range reps {
		switch r.Kind {
		case fieldtype.KindStored:
			if r.Stored {
				cmds = append(cmds, txCmd{db.OpRPush,
					s.b().Rpush().Key(s.keys.stored(doc, r.Field)).Element(r.Value).Build()})
				track(entryStored + ":" + r.Field)
			}
			if r.Indexed {
				cmds = append(cmds, txCmd{db.OpSAdd,
					s.b().Sadd().Key(s.keys.term(r.Field, r.Term)).Member(id).Build()})
				track(entryTerm + ":" + r.Field + ":" + string(r.Term))
			}
		case fieldtype.KindSorted:
			cmds = append(cmds, txCmd{db.OpHSet,
				s.b().Hset().Key(s.keys.sorted(r.Field)).FieldValue().FieldValue(id, string(r.Bytes)).Build()})
			track(entrySorted + ":" + r.Field)
		case fieldtype.KindSortedSet:
			cmds = append(cmds,
				txCmd{db.OpSAdd, s.b().Sadd().Key(s.keys.sortedSet(r.Field, doc)).Member(string(r.Bytes)).Build()},
				txCmd{db.OpSAdd, s.b().Sadd().Key(s.keys.sortedSetDocs(r.Field)).Member(id).Build()},
			)
			track(entrySortedSet + ":" + r.Field)
		}
	}

	if len(manifest) > 0 {
		cmds = append(cmds, txCmd{db.OpSAdd, s.b().Sadd().Key(s.keys.manifest(doc)).Member(manifest...).Build()})
	}
	return append(cmds, txCmd{db.OpSAdd, s.b().Sadd().Key(s.keys.docs()).Member(id).Build()})
}

// removeCmds undoes every entry of doc's manifest. Membership goes first.
func (s *Store) removeCmds(doc uint32, entries []string) []txCmd {
	id := docID(doc)
	cmds := make([]txCmd, 0, len(entries)+2)
	cmds = append(cmds, txCmd{db.OpSRem, s.b().Srem().Key(s.keys.docs()).Member(id).Build()})
	for _, entry := range entries {
		kind, rest, ok := strings.Cut(entry, ":")
		if !ok {
			continue
		}
		switch kind {
		case entryStored:
			cmds = append(cmds, txCmd{db.OpDel, s.b().Del().Key(s.keys.stored(doc, rest)).Build()})
		case entrySorted:
			cmds = append(cmds, txCmd{db.OpHDel, s.b().Hdel().Key(s.keys.sorted(rest)).Field(id).Build()})
		case entrySortedSet:
			cmds = append(cmds,
				txCmd{db.OpDel, s.b().Del().Key(s.keys.sortedSet(rest, doc)).Build()},
				txCmd{db.OpSRem, s.b().Srem().Key(s.keys.sortedSetDocs(rest)).Member(id).Build()},
			)
		case entryTerm:
			name, term, _ := strings.Cut(rest, ":")
			cmds = append(cmds, txCmd{db.OpSRem, s.b().Srem().Key(s.keys.term(name, []byte(term))).Member(id).Build()})
		}
	}
	return append(cmds, txCmd{db.OpDel, s.b().Del().Key(s.keys.manifest(doc)).Build()})
}
