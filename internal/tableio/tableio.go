// Package tableio serializes an emitted ACTION/GOTO table to a compact
// binary build-cache format and back, using dekarrin/rezi the same way
// tunaq's save-game layer uses it to flatten session state to bytes before
// handing it to persistent storage.
package tableio

import (
	"fmt"

	"github.com/dekarrin/rezi"

	"github.com/dekarrin/lrgen/internal/lrtable"
)

// wireAction mirrors lrtable.Action with exported, rezi-encodable fields.
type wireAction struct {
	Kind int
	Arg  int
}

// wireTable is the on-disk shape of a lrtable.Table: flattened 2-D arrays,
// since rezi encodes slices and ints natively but has no notion of the
// ActionKind enum or the table's row/column dimensions without them being
// carried explicitly.
type wireTable struct {
	NumStates       int
	NumTerminals    int
	NumNonterminals int
	Action          []wireAction
	Goto            []int
}

// Encode flattens t into rezi's binary wire format.
func Encode(t *lrtable.Table) ([]byte, error) {
	w := wireTable{
		NumStates:       t.NumStates,
		NumTerminals:    t.NumTerminals,
		NumNonterminals: t.NumNonterminals,
	}

	w.Action = make([]wireAction, 0, t.NumStates*t.NumTerminals)
	for s := 0; s < t.NumStates; s++ {
		for term := 0; term < t.NumTerminals; term++ {
			a := t.Action[s][term]
			w.Action = append(w.Action, wireAction{Kind: int(a.Kind), Arg: a.Arg})
		}
	}

	w.Goto = make([]int, 0, t.NumStates*t.NumNonterminals)
	for s := 0; s < t.NumStates; s++ {
		w.Goto = append(w.Goto, t.Goto[s]...)
	}

	data, err := rezi.Enc(w)
	if err != nil {
		return nil, fmt.Errorf("tableio: encoding table: %w", err)
	}
	return data, nil
}

// Decode reconstructs a lrtable.Table from bytes produced by Encode.
func Decode(data []byte) (*lrtable.Table, error) {
	var w wireTable
	if _, err := rezi.Dec(data, &w); err != nil {
		return nil, fmt.Errorf("tableio: decoding table: %w", err)
	}

	t := &lrtable.Table{
		NumStates:       w.NumStates,
		NumTerminals:    w.NumTerminals,
		NumNonterminals: w.NumNonterminals,
	}

	t.Action = make([][]lrtable.Action, t.NumStates)
	t.Goto = make([][]int, t.NumStates)

	for s := 0; s < t.NumStates; s++ {
		t.Action[s] = make([]lrtable.Action, t.NumTerminals)
		for term := 0; term < t.NumTerminals; term++ {
			wa := w.Action[s*t.NumTerminals+term]
			t.Action[s][term] = lrtable.Action{Kind: lrtable.ActionKind(wa.Kind), Arg: wa.Arg}
		}

		lo := s * t.NumNonterminals
		hi := lo + t.NumNonterminals
		t.Goto[s] = append([]int(nil), w.Goto[lo:hi]...)
	}

	return t, nil
}
