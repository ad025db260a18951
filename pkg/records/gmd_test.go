package records_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/drsam94/mmbccr/pkg/records"
)

func Test_GMD_Inherits_Previous_Index_When_Index_Byte_Is_Omitted(t *testing.T) {
	t.Parallel()

	loc := records.GMDLocation{
		Name:   "test",
		Offset: 2,
		Schemas: []records.GMDSchema{
			{Kind: records.GMDChip, LeadingPadding: 1},
			{Kind: records.GMDChip, LeadingPadding: 2, IndexOmitted: true},
		},
	}

	data := []byte{
		0xEE, 0xEE, // before the location
		0x99, 40, 3, // pad, index, code
		0x99, 0x98, 7, // pad, pad, code
		0xEE,
	}

	g, err := records.DecodeGMDGroup(data, loc)
	require.NoError(t, err)
	require.Len(t, g.Occurrences, 2)

	assert.Equal(t, uint8(40), g.Occurrences[1].Index)
	assert.Equal(t, uint8(7), g.Occurrences[1].Code)
	assert.Equal(t, 6, g.Size())

	g.SetIndex(0, 41)
	g.Occurrences[1].Code = 9
	require.NoError(t, g.Encode(data, loc.Offset))

	assert.Equal(t, []byte{0xEE, 0xEE, 0x99, 41, 3, 0x99, 0x98, 9, 0xEE}, data)
	assert.Equal(t, uint8(41), g.Occurrences[1].Index)
}

func Test_GMD_Shares_One_Byte_When_Code_Is_Omitted(t *testing.T) {
	t.Parallel()

	loc := records.GMDLocation{
		Name:   "test",
		Offset: 0,
		Schemas: []records.GMDSchema{
			{Kind: records.GMDChip, CodeOmitted: true},
			{Kind: records.GMDChip, LeadingPadding: 1, InnerFiller: true},
			{Kind: records.GMDZenny, CodeOmitted: true},
		},
	}

	data := []byte{12, 0x77, 30, 0xEE, 4, 25}

	g, err := records.DecodeGMDGroup(data, loc)
	require.NoError(t, err)

	first := g.Occurrences[0]
	assert.True(t, first.Shared())
	assert.Equal(t, first.Index, first.Code)

	assert.Equal(t, uint8(30), g.Occurrences[1].Index)
	assert.Equal(t, uint8(0xEE), g.Occurrences[1].Filler)
	assert.Equal(t, uint8(4), g.Occurrences[1].Code)
	assert.Equal(t, 2500, g.Occurrences[2].Zenny())
	assert.Equal(t, "12 M, 30 E, 2500z", g.String()[len("test: "):])
}

func Test_GMD_Rejects_Schema_When_First_Occurrence_Inherits(t *testing.T) {
	t.Parallel()

	loc := records.GMDLocation{
		Name:    "bad",
		Schemas: []records.GMDSchema{{Kind: records.GMDChip, IndexOmitted: true}},
	}

	_, err := records.DecodeGMDGroup([]byte{1, 2, 3}, loc)
	assert.ErrorIs(t, err, records.ErrMalformed)
}

func Test_GMDLocations_Are_Well_Formed_When_Listed(t *testing.T) {
	t.Parallel()

	end := 0

	for i, loc := range records.GMDLocations {
		assert.Greater(t, loc.Offset, end, "location %d overlaps the previous one", i)
		end = loc.Offset + loc.Size()

		for j, s := range loc.Schemas {
			assert.False(t, s.CodeOmitted && s.IndexOmitted, "%s[%d]", loc.Name, j)
			assert.False(t, j == 0 && s.IndexOmitted, "%s[%d]", loc.Name, j)
		}
	}
}

func Test_GMDSchema_Size_Counts_Padding_And_Bytes_When_Computed(t *testing.T) {
	t.Parallel()

	tests := []struct {
		schema records.GMDSchema
		want   int
	}{
		{records.GMDSchema{}, 2},
		{records.GMDSchema{LeadingPadding: 3}, 5},
		{records.GMDSchema{LeadingPadding: 1, InnerFiller: true}, 4},
		{records.GMDSchema{LeadingPadding: 2, CodeOmitted: true}, 3},
		{records.GMDSchema{IndexOmitted: true, InnerFiller: true}, 1},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, tt.schema.Size(), "%+v", tt.schema)
	}
}
