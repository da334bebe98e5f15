package save

import "fmt"

// AssetKind selects which brick family a save is built from.
type AssetKind int

const (
	AssetDefault AssetKind = iota
	AssetTile
	AssetSmoothTile
	AssetStud
	AssetMicro
)

// assetNames maps every kind to its in-game asset identifier. The set is
// closed: adding a kind without a table entry is caught by AssetName.
var assetNames = map[AssetKind]string{
	AssetDefault:    "PB_DefaultBrick",
	AssetTile:       "PB_DefaultTile",
	AssetSmoothTile: "PB_DefaultSmoothTile",
	AssetStud:       "PB_DefaultStudded",
	AssetMicro:      "PB_DefaultMicroBrick",
}

// AssetName returns the game asset identifier for k.
func (k AssetKind) AssetName() (string, error) {
	name, ok := assetNames[k]
	if !ok {
		return "", fmt.Errorf("unknown asset kind %d", int(k))
	}
	return name, nil
}

func (k AssetKind) String() string {
	switch k {
	case AssetDefault:
		return "default"
	case AssetTile:
		return "tile"
	case AssetSmoothTile:
		return "smooth"
	case AssetStud:
		return "stud"
	case AssetMicro:
		return "micro"
	default:
		return fmt.Sprintf("AssetKind(%d)", int(k))
	}
}
