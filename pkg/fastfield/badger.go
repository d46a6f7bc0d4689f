package fastfield

import (
	"encoding/binary"
	"fmt"

	"github.com/dgraph-io/badger/v4"

	"github.com/webrank/rankcore/pkg/schema"
)

// BadgerSegmentCache is a disk-backed SegmentCache, one BadgerDB directory
// per index segment. It exists so the C1 contract has a concrete,
// swappable reference implementation to run against in tests and the demo
// CLI; it is not a specification of the real inverted index's on-disk
// format (spec.md section 1 treats that storage engine as an external
// collaborator).
//
// Key layout follows the teacher's single-byte-prefix convention
// (pkg/storage/badger.go): fieldByte ++ big-endian doc-id ++ word-index,
// where word-index is 0 for scalar fields and 0/1 for the two halves of a
// hash field.
type BadgerSegmentCache struct {
	db *badger.DB
}

// OpenBadgerSegmentCache opens (or creates) a BadgerDB-backed segment
// cache rooted at dir.
func OpenBadgerSegmentCache(dir string) (*BadgerSegmentCache, error) {
	opts := badger.DefaultOptions(dir).WithLogger(nil)
	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("fastfield: open badger segment cache: %w", err)
	}
	return &BadgerSegmentCache{db: db}, nil
}

// Close releases the underlying BadgerDB handle.
func (c *BadgerSegmentCache) Close() error {
	return c.db.Close()
}

func fastFieldKey(field schema.FastField, docID uint32, word byte) []byte {
	key := make([]byte, 0, 6)
	key = append(key, byte(field))
	var docBuf [4]byte
	binary.BigEndian.PutUint32(docBuf[:], docID)
	key = append(key, docBuf[:]...)
	return append(key, word)
}

// SetU64 writes a scalar fast-field value for a document.
func (c *BadgerSegmentCache) SetU64(field schema.FastField, docID uint32, value uint64) error {
	var buf [8]byte
	binary.LittleEndian.PutUint64(buf[:], value)
	return c.db.Update(func(txn *badger.Txn) error {
		return txn.Set(fastFieldKey(field, docID, 0), buf[:])
	})
}

// SetU64s writes a two-word fast-field value (a hash field) for a document.
func (c *BadgerSegmentCache) SetU64s(field schema.FastField, docID uint32, values [2]uint64) error {
	return c.db.Update(func(txn *badger.Txn) error {
		for i, v := range values {
			var buf [8]byte
			binary.LittleEndian.PutUint64(buf[:], v)
			if err := txn.Set(fastFieldKey(field, docID, byte(i)), buf[:]); err != nil {
				return err
			}
		}
		return nil
	})
}

func (c *BadgerSegmentCache) readWord(field schema.FastField, docID uint32, word byte) (uint64, bool) {
	var value uint64
	found := false
	_ = c.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(fastFieldKey(field, docID, word))
		if err == badger.ErrKeyNotFound {
			return nil
		}
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			if len(val) != 8 {
				return nil
			}
			value = binary.LittleEndian.Uint64(val)
			found = true
			return nil
		})
	})
	return value, found
}

func (c *BadgerSegmentCache) GetU64(field schema.FastField, docID uint32) (uint64, bool) {
	return c.readWord(field, docID, 0)
}

func (c *BadgerSegmentCache) GetU64s(field schema.FastField, docID uint32) ([2]uint64, bool) {
	lo, ok := c.readWord(field, docID, 0)
	if !ok {
		return [2]uint64{}, false
	}
	hi, ok := c.readWord(field, docID, 1)
	if !ok {
		return [2]uint64{}, false
	}
	return [2]uint64{lo, hi}, true
}

var _ SegmentCache = (*BadgerSegmentCache)(nil)
var _ FastFieldWriter = (*BadgerSegmentCache)(nil)
