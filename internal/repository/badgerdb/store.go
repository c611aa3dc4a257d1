// Package badgerdb stores products and currencies in an embedded Badger
// key-value database. Rows are JSON values under keys that sort by id.
package badgerdb

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/dgraph-io/badger/v3"
	"github.com/hashicorp/go-hclog"

	"github.com/kahvecikaan/product-catalog/internal/repository"
)

// Key layout
const (
	productPrefix     = "product:"
	currencyPrefix    = "currency:"
	currencyISOPrefix = "currency_iso:"

	productSeqKey  = "seq:product"
	currencySeqKey = "seq:currency"

	// ids handed out per sequence lease
	seqBandwidth = 100

	// attempts for a write that hits a transaction conflict
	maxConflictRetries = 3
)

var errStoreClosed = errors.New("badger store is closed")

type Store struct {
	db  *badger.DB
	log hclog.Logger

	productSeq  *badger.Sequence
	currencySeq *badger.Sequence
}

var _ repository.Store = (*Store)(nil)

// Open opens the database in dir. An empty dir keeps everything in memory.
func Open(dir string, log hclog.Logger) (*Store, error) {
	opts := badger.DefaultOptions(dir).WithLogger(&badgerLogger{log})
	if dir == "" {
		opts = opts.WithInMemory(true)
	}

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("failed to open badger database: %w", err)
	}

	productSeq, err := db.GetSequence([]byte(productSeqKey), seqBandwidth)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to open product sequence: %w", err)
	}
	currencySeq, err := db.GetSequence([]byte(currencySeqKey), seqBandwidth)
	if err != nil {
		productSeq.Release()
		db.Close()
		return nil, fmt.Errorf("failed to open currency sequence: %w", err)
	}

	log.Info("Opened badger database", "dir", dir, "in_memory", dir == "")
	return &Store{db: db, log: log, productSeq: productSeq, currencySeq: currencySeq}, nil
}

func (s *Store) Products() repository.ProductRepository {
	return &productRepository{s}
}

func (s *Store) Currencies() repository.CurrencyRepository {
	return &currencyRepository{s}
}

func (s *Store) Ping(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s.db.IsClosed() {
		return errStoreClosed
	}
	return nil
}

func (s *Store) Close() {
	if err := s.productSeq.Release(); err != nil {
		s.log.Error("Error releasing product sequence", "error", err)
	}
	if err := s.currencySeq.Release(); err != nil {
		s.log.Error("Error releasing currency sequence", "error", err)
	}
	if err := s.db.Close(); err != nil {
		s.log.Error("Error closing badger database", "error", err)
		return
	}
	s.log.Info("Badger database closed")
}

// update runs fn in a read-write transaction, retrying on conflicts.
func (s *Store) update(fn func(txn *badger.Txn) error) error {
	var err error
	for i := 0; i < maxConflictRetries; i++ {
		err = s.db.Update(fn)
		if !errors.Is(err, badger.ErrConflict) {
			return err
		}
	}
	return err
}

// nextID returns the next value of seq, starting at 1.
func nextID(seq *badger.Sequence) (int, error) {
	n, err := seq.Next()
	if err != nil {
		return 0, fmt.Errorf("failed to allocate id: %w", err)
	}
	return int(n) + 1, nil
}

// idKey builds a key whose byte order matches numeric id order.
func idKey(prefix string, id int) []byte {
	return []byte(fmt.Sprintf("%s%020d", prefix, id))
}

func getJSON(txn *badger.Txn, key []byte, v any) error {
	item, err := txn.Get(key)
	if err != nil {
		return err
	}
	return item.Value(func(val []byte) error {
		return json.Unmarshal(val, v)
	})
}

func setJSON(txn *badger.Txn, key []byte, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("failed to marshal row: %w", err)
	}
	return txn.Set(key, data)
}

// scan decodes every value under prefix, in key order.
func scan[T any](txn *badger.Txn, prefix string) ([]*T, error) {
	rows := make([]*T, 0)

	it := txn.NewIterator(badger.DefaultIteratorOptions)
	defer it.Close()

	p := []byte(prefix)
	for it.Seek(p); it.ValidForPrefix(p); it.Next() {
		row := new(T)
		err := it.Item().Value(func(val []byte) error {
			return json.Unmarshal(val, row)
		})
		if err != nil {
			return nil, fmt.Errorf("failed to decode %s: %w", it.Item().Key(), err)
		}
		rows = append(rows, row)
	}
	return rows, nil
}

// badgerLogger forwards badger's log output to hclog.
type badgerLogger struct {
	log hclog.Logger
}

func (l *badgerLogger) Errorf(format string, args ...interface{}) {
	l.log.Error(strings.TrimSpace(fmt.Sprintf(format, args...)))
}

func (l *badgerLogger) Warningf(format string, args ...interface{}) {
	l.log.Warn(strings.TrimSpace(fmt.Sprintf(format, args...)))
}

func (l *badgerLogger) Infof(format string, args ...interface{}) {
	l.log.Debug(strings.TrimSpace(fmt.Sprintf(format, args...)))
}

func (l *badgerLogger) Debugf(format string, args ...interface{}) {
	l.log.Trace(strings.TrimSpace(fmt.Sprintf(format, args...)))
}
