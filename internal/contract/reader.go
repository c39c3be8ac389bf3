package contract

import (
	"bytes"
	"context"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"go.uber.org/zap"

	"miniammClient/internal/chain"
	"miniammClient/internal/model"
)

// Addresses pins the deployed contract set the client talks to.
type Addresses struct {
	AMM    common.Address
	Token0 common.Address
	Token1 common.Address
}

// Reader performs the view calls the client core depends on: pool reserves
// and supply, token balances, allowances, and token metadata.
type Reader struct {
	chain  *chain.Client
	addrs  Addresses
	logger *zap.Logger
}

func NewReader(chainClient *chain.Client, addrs Addresses, logger *zap.Logger) *Reader {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Reader{chain: chainClient, addrs: addrs, logger: logger}
}

// Addresses returns the contract set this reader is bound to.
func (r *Reader) Addresses() Addresses {
	return r.addrs
}

// Reserve0 reads the pool's token0 reserve.
func (r *Reader) Reserve0(ctx context.Context) (*big.Int, error) {
	return r.ammUint256(ctx, "xReserve")
}

// Reserve1 reads the pool's token1 reserve.
func (r *Reader) Reserve1(ctx context.Context) (*big.Int, error) {
	return r.ammUint256(ctx, "yReserve")
}

// TotalSupply reads the LP token supply.
func (r *Reader) TotalSupply(ctx context.Context) (*big.Int, error) {
	return r.ammUint256(ctx, "totalSupply")
}

// LPBalanceOf reads the account's LP token balance held by the pool contract.
func (r *Reader) LPBalanceOf(ctx context.Context, account common.Address) (*big.Int, error) {
	parsed, err := MiniAMMABI()
	if err != nil {
		return nil, err
	}
	values, err := r.call(ctx, r.addrs.AMM, parsed, "balanceOf", account)
	if err != nil {
		return nil, err
	}
	return asBigInt(values[0])
}

// BalanceOf reads an ERC20 balance.
func (r *Reader) BalanceOf(ctx context.Context, token, account common.Address) (*big.Int, error) {
	parsed, err := ERC20ABI()
	if err != nil {
		return nil, err
	}
	values, err := r.call(ctx, token, parsed, "balanceOf", account)
	if err != nil {
		return nil, err
	}
	return asBigInt(values[0])
}

// Allowance reads the spend approval the owner granted the AMM contract.
func (r *Reader) Allowance(ctx context.Context, token, owner common.Address) (*big.Int, error) {
	parsed, err := ERC20ABI()
	if err != nil {
		return nil, err
	}
	values, err := r.call(ctx, token, parsed, "allowance", owner, r.addrs.AMM)
	if err != nil {
		return nil, err
	}
	return asBigInt(values[0])
}

// TokenMeta loads token metadata, falling back per field to the provided
// defaults so a single failing call never blanks the whole record. Decimals,
// symbol and name are each tried independently; symbol and name retry against
// the bytes32 ABI before giving up.
func (r *Reader) TokenMeta(ctx context.Context, token common.Address, defaults model.TokenMeta) model.TokenMeta {
	meta := defaults

	stringABI, err := ERC20ABI()
	if err != nil {
		return meta
	}
	bytes32ABI, err := erc20ABIBytes32Instance()
	if err != nil {
		return meta
	}

	if values, err := r.call(ctx, token, stringABI, "decimals"); err == nil {
		if decimals, err := asUint8(values[0]); err == nil {
			meta.Decimals = decimals
		}
	} else {
		r.logger.Warn("decimals call failed", zap.String("token", token.Hex()), zap.Error(err))
	}

	if values, err := r.call(ctx, token, stringABI, "symbol"); err == nil {
		if symbol, ok := values[0].(string); ok {
			meta.Symbol = symbol
		}
	} else if values, err := r.call(ctx, token, bytes32ABI, "symbol"); err == nil {
		if symbol, ok := bytes32ToString(values[0]); ok {
			meta.Symbol = symbol
		}
	} else {
		r.logger.Warn("symbol call failed", zap.String("token", token.Hex()), zap.Error(err))
	}

	if values, err := r.call(ctx, token, stringABI, "name"); err == nil {
		if name, ok := values[0].(string); ok {
			meta.Name = name
		}
	} else if values, err := r.call(ctx, token, bytes32ABI, "name"); err == nil {
		if name, ok := bytes32ToString(values[0]); ok {
			meta.Name = name
		}
	} else {
		r.logger.Warn("name call failed", zap.String("token", token.Hex()), zap.Error(err))
	}

	return meta
}

// LPTokenMeta loads the pool's own ERC20 metadata.
func (r *Reader) LPTokenMeta(ctx context.Context, defaults model.TokenMeta) model.TokenMeta {
	return r.TokenMeta(ctx, r.addrs.AMM, defaults)
}

func (r *Reader) ammUint256(ctx context.Context, method string) (*big.Int, error) {
	parsed, err := MiniAMMABI()
	if err != nil {
		return nil, err
	}
	values, err := r.call(ctx, r.addrs.AMM, parsed, method)
	if err != nil {
		return nil, err
	}
	return asBigInt(values[0])
}

func (r *Reader) call(ctx context.Context, to common.Address, parsed abi.ABI, method string, args ...interface{}) ([]interface{}, error) {
	data, err := parsed.Pack(method, args...)
	if err != nil {
		return nil, fmt.Errorf("pack %s: %w", method, err)
	}
	msg := ethereum.CallMsg{To: &to, Data: data}
	resp, err := r.chain.CallContract(ctx, msg, nil)
	if err != nil {
		return nil, fmt.Errorf("call %s: %w", method, err)
	}
	values, err := parsed.Unpack(method, resp)
	if err != nil {
		return nil, fmt.Errorf("unpack %s: %w", method, err)
	}
	if len(values) == 0 {
		return nil, fmt.Errorf("call %s: empty result", method)
	}
	return values, nil
}

func bytes32ToString(value interface{}) (string, bool) {
	switch v := value.(type) {
	case [32]byte:
		return string(bytes.TrimRight(v[:], "\x00")), true
	case []byte:
		return string(bytes.TrimRight(v, "\x00")), true
	default:
		return "", false
	}
}

func asBigInt(value interface{}) (*big.Int, error) {
	switch v := value.(type) {
	case *big.Int:
		return new(big.Int).Set(v), nil
	case big.Int:
		return new(big.Int).Set(&v), nil
	case uint8:
		return new(big.Int).SetUint64(uint64(v)), nil
	case uint64:
		return new(big.Int).SetUint64(v), nil
	default:
		return nil, fmt.Errorf("unsupported int type %T", value)
	}
}

func asUint8(value interface{}) (uint8, error) {
	switch v := value.(type) {
	case uint8:
		return v, nil
	case uint64:
		return uint8(v), nil
	case *big.Int:
		return uint8(v.Uint64()), nil
	default:
		return 0, fmt.Errorf("unsupported uint8 type %T", value)
	}
}
