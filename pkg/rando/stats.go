package rando

import "go.uber.org/zap/zapcore"

// Stats counts what a run changed and every lossy fallback it took.
type Stats struct {
	ChipsChanged          int
	DescriptionsRewritten int
	EncountersWritten     int
	SlotsZeroed           int
	UnknownChips          int
	NamesAssigned         int
	NamesTruncated        int
	GlyphFallbacks        int
	VirusesChanged        int
	VirusesReplaced       int
	ShopEntriesChanged    int
	FolderSlotsChanged    int
	DropsChanged          int
	GMDChanged            int
	SharedSkipped         int
	EmptyPools            int
}

// Lossy is the number of fallbacks taken instead of failing.
func (s Stats) Lossy() int {
	return s.SlotsZeroed + s.UnknownChips + s.NamesTruncated + s.GlyphFallbacks + s.SharedSkipped + s.EmptyPools
}

func (s Stats) MarshalLogObject(enc zapcore.ObjectEncoder) error {
	for _, f := range []struct {
		key string
		n   int
	}{
		{"chips", s.ChipsChanged},
		{"descriptions", s.DescriptionsRewritten},
		{"encounters", s.EncountersWritten},
		{"slotsZeroed", s.SlotsZeroed},
		{"unknownChips", s.UnknownChips},
		{"names", s.NamesAssigned},
		{"namesTruncated", s.NamesTruncated},
		{"glyphFallbacks", s.GlyphFallbacks},
		{"viruses", s.VirusesChanged},
		{"virusesReplaced", s.VirusesReplaced},
		{"shopEntries", s.ShopEntriesChanged},
		{"folderSlots", s.FolderSlotsChanged},
		{"drops", s.DropsChanged},
		{"gmd", s.GMDChanged},
		{"sharedSkipped", s.SharedSkipped},
		{"emptyPools", s.EmptyPools},
	} {
		if f.n != 0 {
			enc.AddInt(f.key, f.n)
		}
	}

	return nil
}
