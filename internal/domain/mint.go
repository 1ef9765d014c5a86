package domain

// TokenMetadata describes the reward token being authorized.
type TokenMetadata struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Image       string `json:"image,omitempty"`
}

// MintRequest is the struct the server signs. Field names and order mirror
// the on-chain MintRequest tuple; the JSON form must survive a round trip
// through the client untouched, so everything chain-bound is a string.
type MintRequest struct {
	To                     string        `json:"to"`
	URI                    string        `json:"uri"`
	Price                  string        `json:"price"`
	Currency               string        `json:"currency"`
	ValidityStartTimestamp int64         `json:"validityStartTimestamp"`
	ValidityEndTimestamp   int64         `json:"validityEndTimestamp"`
	UID                    string        `json:"uid"`
	Metadata               TokenMetadata `json:"metadata"`
}

// SignedPayload is a single-use mint authorization: the request plus the
// server signature over its EIP-712 hash. Opaque to handlers; the chain
// verifies it at mint time.
type SignedPayload struct {
	Payload   MintRequest `json:"payload"`
	Signature string      `json:"signature"`
}
