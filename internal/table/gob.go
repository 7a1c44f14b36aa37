package table

import (
	"bytes"
	"encoding/gob"
	"time"
)

func init() {
	gob.Register(time.Time{})
}

type wireTable struct {
	Columns []string
	Rows    [][]any
}

// GobEncode lets a Table travel through shared caches.
func (t *Table) GobEncode() ([]byte, error) {
	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(wireTable{Columns: t.columns, Rows: t.rows}); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (t *Table) GobDecode(b []byte) error {
	var w wireTable
	if err := gob.NewDecoder(bytes.NewReader(b)).Decode(&w); err != nil {
		return err
	}
	decoded := New(w.Columns...)
	decoded.rows = w.Rows
	*t = *decoded
	return nil
}
