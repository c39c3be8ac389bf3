package contract

import (
	"testing"

	"miniammClient/internal/model"
)

func TestMiniAMMABIParses(t *testing.T) {
	parsed, err := MiniAMMABI()
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}

	for _, method := range []string{"xReserve", "yReserve", "totalSupply", "balanceOf", "swap", "addLiquidity", "removeLiquidity"} {
		if _, ok := parsed.Methods[method]; !ok {
			t.Fatalf("missing method %s", method)
		}
	}
}

func TestERC20ABIParses(t *testing.T) {
	parsed, err := ERC20ABI()
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	for _, method := range []string{"balanceOf", "allowance", "approve", "freeMintToSender", "decimals", "symbol", "name"} {
		if _, ok := parsed.Methods[method]; !ok {
			t.Fatalf("missing method %s", method)
		}
	}

	fallback, err := erc20ABIBytes32Instance()
	if err != nil {
		t.Fatalf("parse bytes32 fallback failed: %v", err)
	}
	if _, ok := fallback.Methods["symbol"]; !ok {
		t.Fatalf("bytes32 fallback missing symbol")
	}
}

func TestGasLimits(t *testing.T) {
	cases := []struct {
		kind model.TxKind
		want uint64
	}{
		{model.TxMint, 200_000},
		{model.TxApprove, 100_000},
		{model.TxSwap, 500_000},
		{model.TxAddLiquidity, 800_000},
		{model.TxRemoveLiquidity, 350_000},
	}
	for _, tc := range cases {
		if got := GasLimitFor(tc.kind); got != tc.want {
			t.Fatalf("%s: gas limit %d, want %d", tc.kind, got, tc.want)
		}
	}
}

func TestBytes32ToString(t *testing.T) {
	var raw [32]byte
	copy(raw[:], "TKA")
	if s, ok := bytes32ToString(raw); !ok || s != "TKA" {
		t.Fatalf("got (%q, %v)", s, ok)
	}
	if _, ok := bytes32ToString(42); ok {
		t.Fatalf("unexpected conversion from int")
	}
}
