package contract

import "fmt"

const coston2ChainID = 114

// ExplorerTxURL builds a block explorer link for manual verification of a
// transaction, used when a confirmation wait times out.
func ExplorerTxURL(chainID uint64, hash string) string {
	if chainID == coston2ChainID {
		return fmt.Sprintf("https://coston2-explorer.flare.network/tx/%s", hash)
	}
	return fmt.Sprintf("https://etherscan.io/tx/%s", hash)
}
