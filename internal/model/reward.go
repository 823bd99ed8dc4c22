package model

// FungibleAssetID is the asset id of the single fungible reward currency.
// Asset ids greater or equal to BadgeAssetIDBase denote badge types.
const (
	FungibleAssetID uint64 = 0
	// BadgeAssetIDBase is the first badge asset id. The badge asset id for
	// an achievement type t is BadgeAssetIDBase + t.
	BadgeAssetIDBase uint64 = 1
)

// BadgeAssetID returns the ledger asset id backing an achievement type.
func BadgeAssetID(achievementType AchievementType) uint64 {
	return BadgeAssetIDBase + uint64(achievementType)
}

// Balance is the amount of one asset held by one principal.
type Balance struct {
	Holder  string
	AssetID uint64
	Amount  uint64
}

// LedgerState is the administrative state of the reward ledger.
type LedgerState struct {
	Paused bool
}
