package tokenmetadata

import "fmt"

// TokenStandard is the asset class recorded in an asset's metadata.
type TokenStandard uint8

const (
	TokenStandardNonFungible TokenStandard = iota
	TokenStandardFungibleAsset
	TokenStandardFungible
	TokenStandardNonFungibleEdition
	TokenStandardProgrammableNonFungible
	TokenStandardProgrammableNonFungibleEdition
)

func (s TokenStandard) IsValid() bool {
	return s <= TokenStandardProgrammableNonFungibleEdition
}

// IsProgrammable reports whether transfers of the asset require token
// record accounts.
func (s TokenStandard) IsProgrammable() bool {
	return s == TokenStandardProgrammableNonFungible || s == TokenStandardProgrammableNonFungibleEdition
}

func (s TokenStandard) String() string {
	switch s {
	case TokenStandardNonFungible:
		return "non_fungible"
	case TokenStandardFungibleAsset:
		return "fungible_asset"
	case TokenStandardFungible:
		return "fungible"
	case TokenStandardNonFungibleEdition:
		return "non_fungible_edition"
	case TokenStandardProgrammableNonFungible:
		return "programmable_non_fungible"
	case TokenStandardProgrammableNonFungibleEdition:
		return "programmable_non_fungible_edition"
	}
	return fmt.Sprintf("unknown(%d)", uint8(s))
}
