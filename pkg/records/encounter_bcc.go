package records

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/drsam94/mmbccr/pkg/rom"
)

const (
	EncounterBCCSize  = 20
	EncounterChips    = 11
	StartingChipsSize = 7
)

// EncounterBCC is one Battle Chip Challenge battle. Chips are library
// indices (1-based, 0 = empty) ordered inner to outer, bottom to top.
type EncounterBCC struct {
	Index   uint8
	Unknown [3]uint8
	Op      uint8
	Navi    uint8
	AltNavi uint8
	Chips   [EncounterChips]uint8

	// AI slot-in thresholds.
	SlotBotThresh uint8
	SlotTopThresh uint8
}

func decodeEncounterBCC(data []byte, off int) (Record, error) {
	if err := rom.Check(data, off, EncounterBCCSize); err != nil {
		return nil, err
	}

	b := data[off : off+EncounterBCCSize]
	e := &EncounterBCC{
		Index:         b[0],
		Op:            b[4],
		Navi:          b[5],
		AltNavi:       b[6],
		SlotBotThresh: b[18],
		SlotTopThresh: b[19],
	}
	copy(e.Unknown[:], b[1:4])
	copy(e.Chips[:], b[7:18])

	return e, nil
}

func (e *EncounterBCC) Size() int { return EncounterBCCSize }

func (e *EncounterBCC) Encode(data []byte, off int) error {
	if err := rom.Check(data, off, EncounterBCCSize); err != nil {
		return err
	}

	b := data[off : off+EncounterBCCSize]
	b[0] = e.Index
	copy(b[1:4], e.Unknown[:])
	b[4] = e.Op
	b[5] = e.Navi
	b[6] = e.AltNavi
	copy(b[7:18], e.Chips[:])
	b[18] = e.SlotBotThresh
	b[19] = e.SlotTopThresh

	return nil
}

func (e *EncounterBCC) String() string {
	return fmt.Sprintf("idx: %d navi: %d chips: [%s] bTh: %d tTh: %d op: %d altNavi: %d",
		e.Index, e.Navi, joinBytes(e.Chips[:]), e.SlotBotThresh, e.SlotTopThresh, e.Op, e.AltNavi)
}

// StartingChips is the player's starting folder.
type StartingChips struct {
	Chips [StartingChipsSize]uint8
}

func decodeStartingChips(data []byte, off int) (Record, error) {
	if err := rom.Check(data, off, StartingChipsSize); err != nil {
		return nil, err
	}

	s := &StartingChips{}
	copy(s.Chips[:], data[off:])

	return s, nil
}

func (s *StartingChips) Size() int { return StartingChipsSize }

func (s *StartingChips) Encode(data []byte, off int) error {
	if err := rom.Check(data, off, StartingChipsSize); err != nil {
		return err
	}

	copy(data[off:], s.Chips[:])

	return nil
}

func (s *StartingChips) String() string {
	return "chips: [" + joinBytes(s.Chips[:]) + "]"
}

func joinBytes(b []uint8) string {
	parts := make([]string, len(b))
	for i, v := range b {
		parts[i] = strconv.Itoa(int(v))
	}

	return strings.Join(parts, ", ")
}
