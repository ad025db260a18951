package records

import (
	"encoding/binary"
	"fmt"
	"strings"

	"github.com/drsam94/mmbccr/pkg/rom"
)

const (
	ShopInventorySize = 96
	ShopEntries       = 12
	shopEntrySize     = 8
)

// ShopEntryKind says what a shop slot sells.
type ShopEntryKind uint8

const (
	ShopEmpty ShopEntryKind = iota
	ShopItem
	ShopChip
)

// ShopEntry is one 8-byte shop slot:
//
//	+0 kind  u8
//	+1 stock u8
//	+2 index u16 (chip id or item id)
//	+4 code  u8  (chips only)
//	+5 pad   u8
//	+6 price u16 (zenny)
type ShopEntry struct {
	Kind  ShopEntryKind
	Stock uint8
	Index uint16
	Code  uint8
	Pad   uint8
	Price uint16
}

// ShopInventory is the twelve slots of one shop. The table offset is
// known; the entry layout is a placeholder that has not been checked
// against a real image.
type ShopInventory struct {
	Entries [ShopEntries]ShopEntry
}

func decodeShopInventory(data []byte, off int) (Record, error) {
	if err := rom.Check(data, off, ShopInventorySize); err != nil {
		return nil, err
	}

	s := &ShopInventory{}

	for i := range s.Entries {
		b := data[off+i*shopEntrySize:]
		s.Entries[i] = ShopEntry{
			Kind:  ShopEntryKind(b[0]),
			Stock: b[1],
			Index: binary.LittleEndian.Uint16(b[2:]),
			Code:  b[4],
			Pad:   b[5],
			Price: binary.LittleEndian.Uint16(b[6:]),
		}
	}

	return s, nil
}

func (s *ShopInventory) Size() int { return ShopInventorySize }

func (s *ShopInventory) Encode(data []byte, off int) error {
	if err := rom.Check(data, off, ShopInventorySize); err != nil {
		return err
	}

	for i, e := range s.Entries {
		b := data[off+i*shopEntrySize:]
		b[0] = byte(e.Kind)
		b[1] = e.Stock
		binary.LittleEndian.PutUint16(b[2:], e.Index)
		b[4] = e.Code
		b[5] = e.Pad
		binary.LittleEndian.PutUint16(b[6:], e.Price)
	}

	return nil
}

func (s *ShopInventory) String() string {
	var parts []string

	for _, e := range s.Entries {
		switch e.Kind {
		case ShopEmpty:
			continue
		case ShopChip:
			parts = append(parts, fmt.Sprintf("chip %d %s x%d @%dz", e.Index, CodeString(e.Code), e.Stock, e.Price))
		case ShopItem:
			parts = append(parts, fmt.Sprintf("item %d x%d @%dz", e.Index, e.Stock, e.Price))
		default:
			parts = append(parts, fmt.Sprintf("kind%d %d", e.Kind, e.Index))
		}
	}

	return strings.Join(parts, "; ")
}
