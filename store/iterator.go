package store

import (
	"bytes"

	"github.com/google/btree"
)

// ascendBtree returns a snapshot of all items in the [start, end) range.
// A snapshot is taken because the tree may be modified while iterating.
func ascendBtree(bt *btree.BTree, start, end []byte) []keyer {
	var items []keyer
	collect := func(item btree.Item) bool {
		items = append(items, item.(keyer))
		return true
	}
	switch {
	case start == nil && end == nil:
		bt.Ascend(collect)
	case start == nil:
		bt.AscendLessThan(bkey{end}, collect)
	case end == nil:
		bt.AscendGreaterOrEqual(bkey{start}, collect)
	default:
		bt.AscendRange(bkey{start}, bkey{end}, collect)
	}
	return items
}

// source marks where the current item comes from.
type source int32

const (
	us source = iota
	parent
	both
	none
)

// mergeIterator joins cached items with those of the parent, taking into
// consideration overwrites and deletes.
type mergeIterator struct {
	items  []keyer
	parent Iterator
}

var _ Iterator = (*mergeIterator)(nil)

func newMergeIterator(items []keyer, parent Iterator) (*mergeIterator, error) {
	it := &mergeIterator{items: items, parent: parent}
	if err := it.skipDeleted(); err != nil {
		it.Close()
		return nil, err
	}
	return it, nil
}

// Valid implements Iterator and returns true iff it can be read.
func (i *mergeIterator) Valid() bool {
	return len(i.items) > 0 || i.parent.Valid()
}

// Next moves the iterator to the next key in ascending order.
func (i *mergeIterator) Next() error {
	switch i.first() {
	case us:
		i.items = i.items[1:]
	case both:
		i.items = i.items[1:]
		if err := i.parent.Next(); err != nil {
			return err
		}
	case parent:
		if err := i.parent.Next(); err != nil {
			return err
		}
	default:
		panic("advanced past the end")
	}
	return i.skipDeleted()
}

// Key returns the key of the cursor.
func (i *mergeIterator) Key() []byte {
	switch i.first() {
	case us, both:
		return i.items[0].Key()
	case parent:
		return i.parent.Key()
	default:
		panic("advanced past the end")
	}
}

// Value returns the value of the cursor.
func (i *mergeIterator) Value() []byte {
	switch i.first() {
	case us, both:
		return i.items[0].(setItem).value
	case parent:
		return i.parent.Value()
	default:
		panic("advanced past the end")
	}
}

// Close releases the Iterator.
func (i *mergeIterator) Close() {
	i.parent.Close()
	i.items = nil
}

// skipDeleted jumps over all deleted items, together with the parent
// entries they shadow.
func (i *mergeIterator) skipDeleted() error {
	for {
		src := i.first()
		if src != us && src != both {
			return nil
		}
		if _, ok := i.items[0].(deletedItem); !ok {
			return nil
		}
		i.items = i.items[1:]
		if src == both {
			if err := i.parent.Next(); err != nil {
				return err
			}
		}
	}
}

// first selects the iterator with the lowest key if any.
func (i *mergeIterator) first() source {
	switch {
	case !i.parent.Valid() && len(i.items) == 0:
		return none
	case !i.parent.Valid():
		return us
	case len(i.items) == 0:
		return parent
	}
	switch cmp := bytes.Compare(i.parent.Key(), i.items[0].Key()); {
	case cmp < 0:
		return parent
	case cmp > 0:
		return us
	default:
		return both
	}
}
