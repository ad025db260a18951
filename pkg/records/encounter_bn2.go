package records

import (
	"encoding/binary"
	"fmt"
	"strings"

	"github.com/drsam94/mmbccr/pkg/rom"
)

// ListEnd is the id that terminates a participant list.
const ListEnd = 0xFF

const (
	tupleSize = 4
	pairSize  = 8
)

// Entity is one battle participant. ID 0 is the player or an obstacle.
// Team is 0 for the player, 1 for enemies and 2 for neutral objects.
type Entity struct {
	ID   uint8
	X    uint8
	Y    uint8
	Team uint8
}

// validStart reports whether e looks like the player tuple every
// participant list opens with.
func (e Entity) validStart() bool {
	return e.ID == 0 && e.X < 4 && e.Y < 4 && e.Team == 0
}

// StageRef points at a field layout and the participant list fought on it.
type StageRef struct {
	Stage uint32
	List  uint32
}

// EncounterBN2 is one entry of an encounter region. Two shapes share the
// region:
//
//   - a participant list: 4-byte entities ended by a tuple whose id is
//     [ListEnd] (the end tuple is part of the record);
//   - a descriptor list: a leading tuple whose id is [ListEnd], then 8-byte
//     stage references until a tuple that looks like a participant list
//     start (id 0, x and y below 4, team 0). That tuple is not consumed.
//
// The shapes are told apart only by the first tuple. A descriptor whose
// stage pointer happens to encode a valid start ends the list early; the
// layout table gives no way to detect this.
//
// Text dumps of this region have used a looser rule: any first tuple that
// is not a valid start opens a descriptor list, and any end tuple closes the
// record. The two rules disagree on participant lists whose first entity is
// not a valid start. Decoding here keeps the first-tuple-is-end rule.
type EncounterBN2 struct {
	Entities []Entity
	Refs     []StageRef

	marker     [tupleSize]byte
	descriptor bool
	size       int
}

func decodeEncounterBN2(data []byte, off int) (Record, error) {
	return DecodeEncounterBN2(data, off)
}

// DecodeEncounterBN2 decodes the encounter at off. Scanning stops at the end
// of data.
func DecodeEncounterBN2(data []byte, off int) (*EncounterBN2, error) {
	first, err := readEntity(data, off)
	if err != nil {
		return nil, err
	}

	e := &EncounterBN2{}

	if first.ID == ListEnd {
		e.descriptor = true
		copy(e.marker[:], data[off:])

		p := off + tupleSize

		for {
			next, err := readEntity(data, p)
			if err != nil {
				return nil, fmt.Errorf("%w: descriptor list at %#x: %w", ErrMalformed, off, err)
			}

			if next.validStart() {
				break
			}

			if err := rom.Check(data, p, pairSize); err != nil {
				return nil, fmt.Errorf("%w: descriptor list at %#x: %w", ErrMalformed, off, err)
			}

			e.Refs = append(e.Refs, StageRef{
				Stage: binary.LittleEndian.Uint32(data[p:]),
				List:  binary.LittleEndian.Uint32(data[p+4:]),
			})
			p += pairSize
		}

		e.size = p - off

		return e, nil
	}

	for p := off; ; p += tupleSize {
		ent, err := readEntity(data, p)
		if err != nil {
			return nil, fmt.Errorf("%w: participant list at %#x: %w", ErrMalformed, off, err)
		}

		if ent.ID == ListEnd {
			copy(e.marker[:], data[p:])
			e.size = p + tupleSize - off

			return e, nil
		}

		e.Entities = append(e.Entities, ent)
	}
}

func readEntity(data []byte, off int) (Entity, error) {
	if err := rom.Check(data, off, tupleSize); err != nil {
		return Entity{}, err
	}

	return Entity{ID: data[off], X: data[off+1], Y: data[off+2], Team: data[off+3]}, nil
}

// Size reports the bytes consumed when the record was decoded.
func (e *EncounterBN2) Size() int { return e.size }

// IsEntities reports whether the record is a participant list.
func (e *EncounterBN2) IsEntities() bool { return !e.descriptor }

func (e *EncounterBN2) encodedSize() int {
	if e.descriptor {
		return tupleSize + pairSize*len(e.Refs)
	}

	return tupleSize * (len(e.Entities) + 1)
}

// Encode writes the record back. The encoding must occupy exactly the bytes
// consumed on decode: more would overwrite the next record, fewer would leave
// stale bytes that a later scan reads as a record.
func (e *EncounterBN2) Encode(data []byte, off int) error {
	need := e.encodedSize()
	if need > e.size {
		return fmt.Errorf("%w: %d bytes into a %d byte slot", ErrSlotOverflow, need, e.size)
	}

	if need < e.size {
		return fmt.Errorf("%w: %d bytes would leave %d stale bytes", ErrMalformed, need, e.size-need)
	}

	if err := rom.Check(data, off, need); err != nil {
		return err
	}

	if e.descriptor {
		copy(data[off:], e.marker[:])

		p := off + tupleSize
		for _, r := range e.Refs {
			binary.LittleEndian.PutUint32(data[p:], r.Stage)
			binary.LittleEndian.PutUint32(data[p+4:], r.List)
			p += pairSize
		}

		return nil
	}

	p := off
	for _, ent := range e.Entities {
		data[p], data[p+1], data[p+2], data[p+3] = ent.ID, ent.X, ent.Y, ent.Team
		p += tupleSize
	}

	copy(data[p:], e.marker[:])

	return nil
}

func (e *EncounterBN2) String() string {
	var b strings.Builder

	if e.descriptor {
		for _, r := range e.Refs {
			fmt.Fprintf(&b, "Field: %#x Enc: %#x ", r.Stage, r.List)
		}

		return strings.TrimSpace(b.String())
	}

	for _, ent := range e.Entities {
		fmt.Fprintf(&b, "%d @ %d,%d %d; ", ent.ID, ent.X, ent.Y, ent.Team)
	}

	return strings.TrimSpace(b.String())
}
