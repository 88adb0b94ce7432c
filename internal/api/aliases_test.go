package api

import (
	"math"
	"testing"

	"github.com/intent-solver/settlement/pkg/types"
)

func TestAliasTableResolveKnownAndUnknown(t *testing.T) {
	t.Parallel()
	table := NewAliasTable(map[string]string{"SUI": "0x2::sui::SUI"}, nil)

	if got := table.Resolve("SUI"); got != "0x2::sui::SUI" {
		t.Errorf("Resolve(SUI) = %q, want 0x2::sui::SUI", got)
	}
	// Unknown aliases pass through unchanged as raw type identifiers.
	if got := table.Resolve("0xusdc::usdc::USDC"); got != "0xusdc::usdc::USDC" {
		t.Errorf("Resolve(unknown) = %q, want passthrough", got)
	}
}

func TestAliasTableDecimalsForDefaultsTo9(t *testing.T) {
	t.Parallel()
	table := NewAliasTable(nil, map[string]int{"0xusdc::usdc::USDC": 6})

	if got := table.DecimalsFor("0xusdc::usdc::USDC"); got != 6 {
		t.Errorf("DecimalsFor(configured) = %d, want 6", got)
	}
	if got := table.DecimalsFor("0x2::sui::SUI"); got != defaultDecimals {
		t.Errorf("DecimalsFor(unconfigured) = %d, want default %d", got, defaultDecimals)
	}
}

func TestAliasTableHumanToRawRoundTrip(t *testing.T) {
	t.Parallel()
	table := NewAliasTable(nil, map[string]int{"0x2::sui::SUI": 9})
	asset := types.AssetType("0x2::sui::SUI")

	raw := table.HumanToRaw(1.5, asset)
	if want := uint64(1_500_000_000); raw != want {
		t.Errorf("HumanToRaw(1.5) = %d, want %d", raw, want)
	}

	human := table.RawToHuman(raw, asset)
	if math.Abs(human-1.5) > 1e-9 {
		t.Errorf("RawToHuman(%d) = %v, want 1.5", raw, human)
	}
}

func TestAliasTableHumanToRawNegativeClampsToZero(t *testing.T) {
	t.Parallel()
	table := NewAliasTable(nil, nil)
	if got := table.HumanToRaw(-5, "0x2::sui::SUI"); got != 0 {
		t.Errorf("HumanToRaw(negative) = %d, want 0", got)
	}
}

func TestAliasTableAllReturnsConfiguredAliases(t *testing.T) {
	t.Parallel()
	table := NewAliasTable(map[string]string{"SUI": "0x2::sui::SUI", "USDC": "0xusdc::usdc::USDC"}, nil)
	all := table.All()
	if len(all) != 2 {
		t.Fatalf("len(All()) = %d, want 2", len(all))
	}
	if all["SUI"] != "0x2::sui::SUI" {
		t.Errorf("All()[SUI] = %q, want 0x2::sui::SUI", all["SUI"])
	}
}
