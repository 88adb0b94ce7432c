package api

import (
	"math"

	"github.com/shopspring/decimal"

	"github.com/intent-solver/settlement/pkg/types"
)

// AliasTable resolves short human-facing ticker names to on-chain asset
// type identifiers and back, and carries each type's decimal exponent for
// raw<->human unit conversion (spec §4.5).
type AliasTable struct {
	aliasToType map[string]types.AssetType
	decimals    map[types.AssetType]int
}

// defaultDecimals is used for any asset type without a configured
// exponent (spec §3: "unknown types default to exponent 9").
const defaultDecimals = 9

// NewAliasTable builds a table from configured alias->type and
// type->decimals maps.
func NewAliasTable(aliases map[string]string, decimals map[string]int) *AliasTable {
	t := &AliasTable{
		aliasToType: make(map[string]types.AssetType, len(aliases)),
		decimals:    make(map[types.AssetType]int, len(decimals)),
	}
	for alias, assetType := range aliases {
		t.aliasToType[alias] = types.AssetType(assetType)
	}
	for assetType, dec := range decimals {
		t.decimals[types.AssetType(assetType)] = dec
	}
	return t
}

// Resolve maps an alias (e.g. "SUI") to its asset type identifier.
// Unknown aliases pass through unchanged as raw type identifiers.
func (t *AliasTable) Resolve(aliasOrType string) types.AssetType {
	if resolved, ok := t.aliasToType[aliasOrType]; ok {
		return resolved
	}
	return types.AssetType(aliasOrType)
}

// DecimalsFor returns the configured decimal exponent for asset, or the
// default of 9 if unconfigured.
func (t *AliasTable) DecimalsFor(asset types.AssetType) int {
	if d, ok := t.decimals[asset]; ok {
		return d
	}
	return defaultDecimals
}

// All returns the alias -> type-identifier map, for GET /pools.
func (t *AliasTable) All() map[string]string {
	out := make(map[string]string, len(t.aliasToType))
	for alias, assetType := range t.aliasToType {
		out[alias] = string(assetType)
	}
	return out
}

// HumanToRaw converts a human-readable decimal amount to its raw integer
// unit representation: round(x * 10^decimals(t)).
func (t *AliasTable) HumanToRaw(amount float64, asset types.AssetType) uint64 {
	scale := decimal.New(1, int32(t.DecimalsFor(asset)))
	raw := decimal.NewFromFloat(amount).Mul(scale).Round(0)
	f, _ := raw.Float64()
	if f < 0 {
		return 0
	}
	return uint64(math.Round(f))
}

// RawToHuman converts a raw integer amount back to human-readable
// decimal: s / 10^decimals(t).
func (t *AliasTable) RawToHuman(raw uint64, asset types.AssetType) float64 {
	scale := decimal.New(1, int32(t.DecimalsFor(asset)))
	f, _ := decimal.NewFromInt(int64(raw)).Div(scale).Float64()
	return f
}
