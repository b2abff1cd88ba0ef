// Package param provides static parameter tables with lock-free value
// storage and per-sample smoothing. Tables are fixed at construction;
// the audio thread reads values without locks or allocation while a
// single control thread writes them.
package param

import (
	"fmt"
	"math"
	"sync/atomic"
)

// Def describes one parameter.
type Def struct {
	Name    string
	Min     float64
	Max     float64
	Default float64
	Unit    string
}

func (d Def) validate() error {
	if d.Name == "" {
		return fmt.Errorf("param: name must not be empty")
	}

	if math.IsNaN(d.Min) || math.IsNaN(d.Max) || math.IsInf(d.Min, 0) || math.IsInf(d.Max, 0) {
		return fmt.Errorf("param: %s: bounds must be finite", d.Name)
	}

	if d.Min >= d.Max {
		return fmt.Errorf("param: %s: min must be < max: [%g, %g]", d.Name, d.Min, d.Max)
	}

	if d.Default < d.Min || d.Default > d.Max || math.IsNaN(d.Default) {
		return fmt.Errorf("param: %s: default %g outside [%g, %g]", d.Name, d.Default, d.Min, d.Max)
	}

	return nil
}

// Table is an immutable, ordered set of parameter definitions.
type Table struct {
	defs  []Def
	index map[string]int
}

// NewTable validates the definitions and builds the lookup index.
func NewTable(defs ...Def) (*Table, error) {
	if len(defs) == 0 {
		return nil, fmt.Errorf("param: table must hold at least one definition")
	}

	index := make(map[string]int, len(defs))

	for i, d := range defs {
		if err := d.validate(); err != nil {
			return nil, err
		}

		if _, dup := index[d.Name]; dup {
			return nil, fmt.Errorf("param: duplicate name: %s", d.Name)
		}

		index[d.Name] = i
	}

	return &Table{
		defs:  append([]Def(nil), defs...),
		index: index,
	}, nil
}

// Len returns the number of parameters.
func (t *Table) Len() int { return len(t.defs) }

// Def returns the definition at index i.
func (t *Table) Def(i int) Def { return t.defs[i] }

// Lookup resolves a parameter name to its index.
func (t *Table) Lookup(name string) (int, bool) {
	i, ok := t.index[name]
	return i, ok
}

// Values stores the current value of every parameter in a table. Reads
// and writes are atomic: one control thread may write while the audio
// thread reads, without locks.
type Values struct {
	table *Table
	vals  []atomic.Uint64
}

// NewValues returns storage initialized to the table defaults.
func NewValues(table *Table) (*Values, error) {
	if table == nil {
		return nil, fmt.Errorf("param: table must not be nil")
	}

	v := &Values{
		table: table,
		vals:  make([]atomic.Uint64, table.Len()),
	}

	for i := 0; i < table.Len(); i++ {
		v.vals[i].Store(math.Float64bits(table.Def(i).Default))
	}

	return v, nil
}

// Table returns the underlying definitions.
func (v *Values) Table() *Table { return v.table }

// Get reads the current value at index i. Safe on the audio thread.
func (v *Values) Get(i int) float64 {
	return math.Float64frombits(v.vals[i].Load())
}

// Set stores a new value, clamped to the parameter range. NaN is
// rejected silently so a bad control message cannot poison the audio
// path.
func (v *Values) Set(i int, value float64) {
	if math.IsNaN(value) {
		return
	}

	d := v.table.Def(i)
	value = math.Min(math.Max(value, d.Min), d.Max)

	v.vals[i].Store(math.Float64bits(value))
}

// GetNormalized reads the value at index i mapped into [0, 1].
func (v *Values) GetNormalized(i int) float64 {
	d := v.table.Def(i)
	return (v.Get(i) - d.Min) / (d.Max - d.Min)
}

// SetNormalized stores a value given in [0, 1].
func (v *Values) SetNormalized(i int, norm float64) {
	d := v.table.Def(i)
	v.Set(i, d.Min+norm*(d.Max-d.Min))
}
