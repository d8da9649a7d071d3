package store

import "github.com/embedsql/embedsql/dberrors"

// Memory is the default in-process row store: rows live in a plain slice.
// Grounded on MemoryStorageDriver's per-table list in the original
// implementation.
type Memory struct {
	rows []Row
}

// NewMemory creates an empty Memory store.
func NewMemory() *Memory {
	return &Memory{}
}

func (m *Memory) Append(row Row) (int, error) {
	m.rows = append(m.rows, row)
	return len(m.rows) - 1, nil
}

func (m *Memory) Overwrite(slot int, row Row) error {
	if slot < 0 || slot >= len(m.rows) {
		return dberrors.ErrLookup.New("slot out of range")
	}
	m.rows[slot] = row
	return nil
}

func (m *Memory) Read(slot int) (Row, error) {
	if slot < 0 || slot >= len(m.rows) {
		return nil, dberrors.ErrLookup.New("slot out of range")
	}
	return m.rows[slot], nil
}

func (m *Memory) Slice(start, stop int) ([]Row, error) {
	if start < 0 {
		start = 0
	}
	if stop < 0 || stop > len(m.rows) {
		stop = len(m.rows)
	}
	if start > stop {
		return nil, nil
	}
	out := make([]Row, stop-start)
	copy(out, m.rows[start:stop])
	return out, nil
}

func (m *Memory) Len() int { return len(m.rows) }
