package records

import (
	"fmt"
	"strings"

	"github.com/drsam94/mmbccr/pkg/rom"
)

// GMDKind is what an occurrence rewards.
type GMDKind uint8

const (
	GMDChip GMDKind = iota
	GMDZenny
)

// ZennyUnit is the zenny value of one unit in a zenny occurrence.
const ZennyUnit = 100

// GMDSchema describes how one occurrence is packed:
//
//	[LeadingPadding bytes][index][filler if InnerFiller][code]
//
// CodeOmitted drops the code byte; the code is then the index byte.
// IndexOmitted drops the index byte; the index is then the previous
// occurrence's index. At most one byte may be omitted, and the filler only
// exists when both bytes do.
type GMDSchema struct {
	Kind           GMDKind
	LeadingPadding int
	InnerFiller    bool
	CodeOmitted    bool
	IndexOmitted   bool
}

// Size is the number of bytes the occurrence spans, padding included.
func (s GMDSchema) Size() int {
	if s.CodeOmitted || s.IndexOmitted {
		return s.LeadingPadding + 1
	}

	if s.InnerFiller {
		return s.LeadingPadding + 3
	}

	return s.LeadingPadding + 2
}

func (s GMDSchema) validate(first bool) error {
	switch {
	case s.CodeOmitted && s.IndexOmitted:
		return fmt.Errorf("%w: gmd schema omits both bytes", ErrMalformed)
	case s.IndexOmitted && first:
		return fmt.Errorf("%w: first gmd occurrence has no index to inherit", ErrMalformed)
	case s.LeadingPadding < 0:
		return fmt.Errorf("%w: negative gmd padding", ErrMalformed)
	}

	return nil
}

// GMDOccurrence is one decoded reward.
type GMDOccurrence struct {
	Schema GMDSchema
	Index  uint8
	Code   uint8
	Filler uint8
}

// Zenny is the amount of a zenny occurrence.
func (o GMDOccurrence) Zenny() int { return int(o.Index) * ZennyUnit }

// Shared reports an occurrence whose code and index are one byte.
func (o GMDOccurrence) Shared() bool { return o.Schema.CodeOmitted }

// Inherited reports an occurrence that reuses the previous index.
func (o GMDOccurrence) Inherited() bool { return o.Schema.IndexOmitted }

func (o GMDOccurrence) String() string {
	if o.Schema.Kind == GMDZenny {
		return fmt.Sprintf("%dz", o.Zenny())
	}

	return fmt.Sprintf("%d %s", o.Index, CodeString(o.Code))
}

// GMDGroup is the contiguous run of occurrences at one location.
type GMDGroup struct {
	Location    GMDLocation
	Occurrences []GMDOccurrence
}

// DecodeGMDGroup decodes the occurrences of loc.
func DecodeGMDGroup(data []byte, loc GMDLocation) (*GMDGroup, error) {
	if err := rom.Check(data, loc.Offset, loc.Size()); err != nil {
		return nil, err
	}

	g := &GMDGroup{Location: loc, Occurrences: make([]GMDOccurrence, len(loc.Schemas))}
	p := loc.Offset

	for i, s := range loc.Schemas {
		if err := s.validate(i == 0); err != nil {
			return nil, fmt.Errorf("%s occurrence %d: %w", loc.Name, i, err)
		}

		o := GMDOccurrence{Schema: s}
		b := p + s.LeadingPadding

		switch {
		case s.CodeOmitted:
			o.Index = data[b]
			o.Code = data[b]
		case s.IndexOmitted:
			o.Index = g.Occurrences[i-1].Index
			o.Code = data[b]
		case s.InnerFiller:
			o.Index, o.Filler, o.Code = data[b], data[b+1], data[b+2]
		default:
			o.Index, o.Code = data[b], data[b+1]
		}

		g.Occurrences[i] = o
		p += s.Size()
	}

	return g, nil
}

func decodeGMDAt(data []byte, off int) (Record, error) {
	loc, ok := gmdByOffset[off]
	if !ok {
		return nil, fmt.Errorf("%w: no gmd location at %#x", ErrUnsupported, off)
	}

	return DecodeGMDGroup(data, loc)
}

func locateGMD(index int) (int, error) {
	return GMDLocations[index].Offset, nil
}

// SetIndex changes occurrence i's index and carries it into the inherited
// occurrences that follow.
func (g *GMDGroup) SetIndex(i int, index uint8) {
	g.Occurrences[i].Index = index
	if g.Occurrences[i].Shared() {
		g.Occurrences[i].Code = index
	}

	for j := i + 1; j < len(g.Occurrences) && g.Occurrences[j].Inherited(); j++ {
		g.Occurrences[j].Index = index
	}
}

// Size is the number of bytes from the location's offset to the end of the
// last occurrence.
func (g *GMDGroup) Size() int { return g.Location.Size() }

// Encode writes the group. Padding bytes are never touched and omitted
// bytes are never written.
func (g *GMDGroup) Encode(data []byte, off int) error {
	if len(g.Occurrences) != len(g.Location.Schemas) {
		return fmt.Errorf("%w: %d occurrences for %d schemas", ErrSlotOverflow, len(g.Occurrences), len(g.Location.Schemas))
	}

	if err := rom.Check(data, off, g.Size()); err != nil {
		return err
	}

	p := off

	for i, o := range g.Occurrences {
		s := g.Location.Schemas[i]
		b := p + s.LeadingPadding

		switch {
		case s.CodeOmitted:
			data[b] = o.Index
		case s.IndexOmitted:
			data[b] = o.Code
		case s.InnerFiller:
			data[b], data[b+1], data[b+2] = o.Index, o.Filler, o.Code
		default:
			data[b], data[b+1] = o.Index, o.Code
		}

		p += s.Size()
	}

	return nil
}

func (g *GMDGroup) String() string {
	parts := make([]string, len(g.Occurrences))
	for i, o := range g.Occurrences {
		parts[i] = o.String()
	}

	return g.Location.Name + ": " + strings.Join(parts, ", ")
}
