package client

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"strings"

	"github.com/thirdweb-example/community-rewards/internal/domain"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/ethclient"
)

// mintABI covers the single method the claim flow calls.
const mintABI = `[{
	"name": "mintWithSignature",
	"type": "function",
	"stateMutability": "payable",
	"inputs": [
		{"name": "req", "type": "tuple", "components": [
			{"name": "to", "type": "address"},
			{"name": "uri", "type": "string"},
			{"name": "price", "type": "uint256"},
			{"name": "currency", "type": "address"},
			{"name": "validityStartTimestamp", "type": "uint128"},
			{"name": "validityEndTimestamp", "type": "uint128"},
			{"name": "uid", "type": "bytes32"}
		]},
		{"name": "signature", "type": "bytes"}
	],
	"outputs": [{"name": "tokenId", "type": "uint256"}]
}]`

// ErrNetworkMismatch is returned when the dialed node serves a different
// chain than the one the signatures are scoped to.
var ErrNetworkMismatch = errors.New("connected node is on a different chain")

// transferTopic is the ERC-721 Transfer(address,address,uint256) event
// signature; a mint logs it with the zero address as sender.
var transferTopic = crypto.Keccak256Hash([]byte("Transfer(address,address,uint256)"))

// mintRequestTuple is the ABI form of a mint request. Field names must line
// up with the tuple components above.
type mintRequestTuple struct {
	To                     common.Address
	Uri                    string
	Price                  *big.Int
	Currency               common.Address
	ValidityStartTimestamp *big.Int
	ValidityEndTimestamp   *big.Int
	Uid                    [32]byte
}

// MintResult reports a confirmed mint: the transaction and, when the mint
// event was found in the receipt, the minted token's identifier.
type MintResult struct {
	TxHash  string
	TokenID *big.Int
}

// MintSubmitter broadcasts a signed payload to the chain and waits for it
// to confirm.
type MintSubmitter interface {
	Submit(ctx context.Context, payload *domain.SignedPayload) (*MintResult, error)
}

// ContractMinter submits mintWithSignature transactions through an RPC node.
// Implements MintSubmitter.
type ContractMinter struct {
	client   *ethclient.Client
	contract *bind.BoundContract
	address  common.Address
	wallet   *Wallet
	chainID  *big.Int
}

// NewContractMinter dials the RPC endpoint and binds the collection
// contract. The node's reported chain must match chainID; signing for one
// chain and broadcasting to another would only fail later with an opaque
// rejection.
func NewContractMinter(ctx context.Context, rpcURL, contractAddress string, chainID int64, wallet *Wallet) (*ContractMinter, error) {
	parsed, err := abi.JSON(strings.NewReader(mintABI))
	if err != nil {
		return nil, fmt.Errorf("parse mint abi: %w", err)
	}

	ethClient, err := ethclient.DialContext(ctx, rpcURL)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrChainUnavailable, err)
	}

	nodeChainID, err := ethClient.ChainID(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrChainUnavailable, err)
	}
	if nodeChainID.Cmp(big.NewInt(chainID)) != 0 {
		return nil, fmt.Errorf("%w: node reports chain %s, configured %d",
			ErrNetworkMismatch, nodeChainID, chainID)
	}

	addr := common.HexToAddress(contractAddress)
	return &ContractMinter{
		client:   ethClient,
		contract: bind.NewBoundContract(addr, parsed, ethClient, ethClient, ethClient),
		address:  addr,
		wallet:   wallet,
		chainID:  big.NewInt(chainID),
	}, nil
}

// Submit packs the payload exactly as received, sends the transaction and
// waits for the receipt. The payload is not rewritten on the way through;
// the chain checks the signature against the same bytes the server signed.
func (m *ContractMinter) Submit(ctx context.Context, payload *domain.SignedPayload) (*MintResult, error) {
	tuple, err := toTuple(payload.Payload)
	if err != nil {
		return nil, err
	}

	signature, err := hexutil.Decode(payload.Signature)
	if err != nil {
		return nil, fmt.Errorf("decode signature: %w", err)
	}

	opts, err := bind.NewKeyedTransactorWithChainID(m.wallet.Key(), m.chainID)
	if err != nil {
		return nil, err
	}
	opts.Context = ctx

	tx, err := m.contract.Transact(opts, "mintWithSignature", tuple, signature)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrChainUnavailable, err)
	}

	receipt, err := bind.WaitMined(ctx, m.client, tx)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrChainUnavailable, err)
	}
	if receipt.Status != types.ReceiptStatusSuccessful {
		return nil, fmt.Errorf("mint transaction %s reverted", tx.Hash().Hex())
	}

	return &MintResult{
		TxHash:  tx.Hash().Hex(),
		TokenID: mintedTokenID(receipt.Logs, m.address),
	}, nil
}

// mintedTokenID finds the minted token's identifier in the receipt: the
// contract's Transfer event from the zero address carries it as the third
// indexed topic. Returns nil when no such event is present.
func mintedTokenID(logs []*types.Log, contract common.Address) *big.Int {
	for _, entry := range logs {
		if entry.Address != contract || len(entry.Topics) != 4 {
			continue
		}
		if entry.Topics[0] != transferTopic || entry.Topics[1] != (common.Hash{}) {
			continue
		}
		return new(big.Int).SetBytes(entry.Topics[3].Bytes())
	}
	return nil
}

// toTuple converts the wire form of a mint request into ABI types.
func toTuple(req domain.MintRequest) (mintRequestTuple, error) {
	price, ok := new(big.Int).SetString(req.Price, 10)
	if !ok {
		return mintRequestTuple{}, fmt.Errorf("invalid price %q", req.Price)
	}

	uidBytes, err := hexutil.Decode(req.UID)
	if err != nil || len(uidBytes) != 32 {
		return mintRequestTuple{}, fmt.Errorf("invalid uid %q", req.UID)
	}
	var uid [32]byte
	copy(uid[:], uidBytes)

	return mintRequestTuple{
		To:                     common.HexToAddress(req.To),
		Uri:                    req.URI,
		Price:                  price,
		Currency:               common.HexToAddress(req.Currency),
		ValidityStartTimestamp: big.NewInt(req.ValidityStartTimestamp),
		ValidityEndTimestamp:   big.NewInt(req.ValidityEndTimestamp),
		Uid:                    uid,
	}, nil
}
