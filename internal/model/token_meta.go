package model

// TokenMeta captures ERC20 metadata. Fetched once per token and held for the
// session; fields that fail to load keep their fallback defaults.
type TokenMeta struct {
	Name     string `json:"name"`
	Symbol   string `json:"symbol"`
	Decimals uint8  `json:"decimals"`
}

// Fallback metadata used until (or instead of) a successful on-chain fetch.
var (
	DefaultToken0Meta = TokenMeta{Name: "Token A", Symbol: "TKA", Decimals: 18}
	DefaultToken1Meta = TokenMeta{Name: "Token B", Symbol: "TKB", Decimals: 18}
	DefaultLPMeta     = TokenMeta{Name: "MiniAMM LP Token", Symbol: "MINI-LP", Decimals: 18}
)
