package signer

import (
	"context"
	"crypto/ecdsa"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/thirdweb-example/community-rewards/internal/domain"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/common/math"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/signer/core/apitypes"
	"github.com/google/uuid"
)

// zeroAddress is the currency placeholder for a free mint.
const zeroAddress = "0x0000000000000000000000000000000000000000"

// Config holds mint signing configuration.
type Config struct {
	PrivateKeyHex   string
	ContractAddress string
	ChainID         int64
	SignatureTTL    time.Duration
}

// MintRequestSigner signs mint requests EIP-712 style with the server-held
// key. The key never leaves this process. Implements domain.MintSigner.
type MintRequestSigner struct {
	key      *ecdsa.PrivateKey
	contract common.Address
	chainID  int64
	ttl      time.Duration
}

// NewMintRequestSigner parses the server key and binds the signing domain
// to the contract and chain. An absent key is a configuration error, not a
// per-request one.
func NewMintRequestSigner(cfg Config) (*MintRequestSigner, error) {
	if cfg.PrivateKeyHex == "" {
		return nil, domain.ErrSigningKeyMissing
	}

	key, err := crypto.HexToECDSA(strings.TrimPrefix(cfg.PrivateKeyHex, "0x"))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrSigningKeyMissing, err)
	}

	return &MintRequestSigner{
		key:      key,
		contract: common.HexToAddress(cfg.ContractAddress),
		chainID:  cfg.ChainID,
		ttl:      cfg.SignatureTTL,
	}, nil
}

// SignerAddress returns the address payloads recover to on-chain.
func (s *MintRequestSigner) SignerAddress() common.Address {
	return crypto.PubkeyToAddress(s.key.PublicKey)
}

// BuildMintRequest assembles a fresh mint request for the recipient: inline
// metadata URI, fresh uid and a validity window starting now. Each call
// produces a structurally independent request.
func (s *MintRequestSigner) BuildMintRequest(recipient string, metadata domain.TokenMetadata) (domain.MintRequest, error) {
	if !common.IsHexAddress(recipient) {
		return domain.MintRequest{}, domain.ErrInvalidAddress
	}

	raw, err := json.Marshal(metadata)
	if err != nil {
		return domain.MintRequest{}, fmt.Errorf("%w: %w", domain.ErrSigningFailed, err)
	}

	var uid [32]byte
	u := uuid.New()
	copy(uid[:], u[:])

	now := time.Now()
	return domain.MintRequest{
		To:                     common.HexToAddress(recipient).Hex(),
		URI:                    "data:application/json;base64," + base64.StdEncoding.EncodeToString(raw),
		Price:                  "0",
		Currency:               zeroAddress,
		ValidityStartTimestamp: now.Unix(),
		ValidityEndTimestamp:   now.Add(s.ttl).Unix(),
		UID:                    hexutil.Encode(uid[:]),
		Metadata:               metadata,
	}, nil
}

// SignMintRequest hashes the request per the contract's EIP-712 domain and
// signs it. The returned payload carries the request verbatim so the client
// can forward it to the chain unmodified.
func (s *MintRequestSigner) SignMintRequest(_ context.Context, req domain.MintRequest) (*domain.SignedPayload, error) {
	hash, err := s.hashMintRequest(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrSigningFailed, err)
	}

	sig, err := crypto.Sign(hash, s.key)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrSigningFailed, err)
	}
	// Transform V from 0/1 to the 27/28 the ecrecover precompile expects.
	sig[64] += 27

	return &domain.SignedPayload{
		Payload:   req,
		Signature: hexutil.Encode(sig),
	}, nil
}

// hashMintRequest computes the EIP-712 digest of a mint request.
func (s *MintRequestSigner) hashMintRequest(req domain.MintRequest) ([]byte, error) {
	typedData := apitypes.TypedData{
		Types: apitypes.Types{
			"EIP712Domain": []apitypes.Type{
				{Name: "name", Type: "string"},
				{Name: "version", Type: "string"},
				{Name: "chainId", Type: "uint256"},
				{Name: "verifyingContract", Type: "address"},
			},
			"MintRequest": []apitypes.Type{
				{Name: "to", Type: "address"},
				{Name: "uri", Type: "string"},
				{Name: "price", Type: "uint256"},
				{Name: "currency", Type: "address"},
				{Name: "validityStartTimestamp", Type: "uint128"},
				{Name: "validityEndTimestamp", Type: "uint128"},
				{Name: "uid", Type: "bytes32"},
			},
		},
		PrimaryType: "MintRequest",
		Domain: apitypes.TypedDataDomain{
			Name:              "SignatureMintERC721",
			Version:           "1",
			ChainId:           math.NewHexOrDecimal256(s.chainID),
			VerifyingContract: s.contract.Hex(),
		},
		Message: apitypes.TypedDataMessage{
			"to":                     req.To,
			"uri":                    req.URI,
			"price":                  req.Price,
			"currency":               req.Currency,
			"validityStartTimestamp": math.NewHexOrDecimal256(req.ValidityStartTimestamp),
			"validityEndTimestamp":   math.NewHexOrDecimal256(req.ValidityEndTimestamp),
			"uid":                    req.UID,
		},
	}

	hash, _, err := apitypes.TypedDataAndHash(typedData)
	if err != nil {
		return nil, err
	}
	return hash, nil
}
