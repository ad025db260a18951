package records

import (
	"fmt"
	"strings"
)

// Kind identifies one record family in the layout table.
type Kind int

// Battle Chip Challenge kinds.
const (
	KindEncounter Kind = iota + 1
	KindChip
	KindSprite
	KindChipName
	KindOpName
	KindChipDesc
	KindEffectDesc
	KindStartingChips
)

// Battle Network 2 kinds.
const (
	KindChipBN2 Kind = iota + 100
	KindChipNameBN2
	KindVirusNameBN2
	KindItemNameBN2
	KindVirusBN2
	KindEncounterEVTBN2
	KindEncounterRegionBN2
	KindShopInventoryBN2
	KindChipFolderBN2
	KindDropTableBN2
	KindGMDBN2
)

var kindNames = map[Kind]string{
	KindEncounter:          "Encounter",
	KindChip:               "Chip",
	KindSprite:             "Sprite",
	KindChipName:           "ChipName",
	KindOpName:             "OpName",
	KindChipDesc:           "ChipDesc",
	KindEffectDesc:         "EffectDesc",
	KindStartingChips:      "StartingChips",
	KindChipBN2:            "Chip_BN2",
	KindChipNameBN2:        "ChipName_BN2",
	KindVirusNameBN2:       "VirusName_BN2",
	KindItemNameBN2:        "ItemName_BN2",
	KindVirusBN2:           "Virus_BN2",
	KindEncounterEVTBN2:    "EncounterEVT_BN2",
	KindEncounterRegionBN2: "EncounterRegion_BN2",
	KindShopInventoryBN2:   "ShopInventory_BN2",
	KindChipFolderBN2:      "ChipFolder_BN2",
	KindDropTableBN2:       "DropTable_BN2",
	KindGMDBN2:             "GMD_BN2",
}

func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}

	return fmt.Sprintf("Kind(%d)", int(k))
}

// ParseKind resolves a kind by name, ignoring case and underscores.
func ParseKind(name string) (Kind, error) {
	want := normalizeKindName(name)

	for kind, n := range kindNames {
		if normalizeKindName(n) == want {
			return kind, nil
		}
	}

	return 0, fmt.Errorf("%w: %q", ErrUnknownKind, name)
}

func normalizeKindName(s string) string {
	return strings.ToLower(strings.ReplaceAll(s, "_", ""))
}
