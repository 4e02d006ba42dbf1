package wrap

import (
	"fmt"

	"fortio.org/safecast"
	"github.com/vmihailenco/msgpack/v5"
)

// ArgID is a 1-based handle into an Arena; NoArg is the zero handle.
type ArgID uint32

const NoArg ArgID = 0

// Arena owns the arguments of one procedure. Role lists hold handles, so an
// argument appearing in several roles is one slot.
type Arena struct {
	data []*Arg
}

func NewArena(capHint int) *Arena {
	return &Arena{data: make([]*Arg, 0, capHint)}
}

// Add stores a and returns its handle.
func (ar *Arena) Add(a *Arg) ArgID {
	ar.data = append(ar.data, a)
	id, err := safecast.Conv[uint32](len(ar.data))
	if err != nil {
		panic(fmt.Errorf("argument arena overflow: %w", err))
	}
	return ArgID(id)
}

func (ar *Arena) Get(id ArgID) *Arg {
	if id == NoArg || int(id) > len(ar.data) {
		return nil
	}
	return ar.data[id-1]
}

// Set replaces the argument stored in a slot; every role list referring to
// the slot sees the replacement.
func (ar *Arena) Set(id ArgID, a *Arg) {
	ar.data[id-1] = a
}

func (ar *Arena) Len() int { return len(ar.data) }

// Clone copies the arena and every argument in it; handles stay valid.
func (ar *Arena) Clone() *Arena {
	cp := &Arena{data: make([]*Arg, len(ar.data))}
	for i, a := range ar.data {
		cp.data[i] = a.Clone()
	}
	return cp
}

// Find returns the handle of the argument with the given native name.
func (ar *Arena) Find(name string) ArgID {
	for i, a := range ar.data {
		if a.Name == name {
			return ArgID(i + 1)
		}
	}
	return NoArg
}

// Args returns the stored arguments in handle order.
func (ar *Arena) Args() []*Arg {
	return append([]*Arg(nil), ar.data...)
}

// EncodeMsgpack stores the arena as its argument list; handles are
// positions in that list.
func (ar *Arena) EncodeMsgpack(enc *msgpack.Encoder) error {
	return enc.Encode(ar.data)
}

func (ar *Arena) DecodeMsgpack(dec *msgpack.Decoder) error {
	return dec.Decode(&ar.data)
}
