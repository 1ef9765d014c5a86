package client

import (
	"context"
	"errors"
	"log/slog"
	"sync"
)

// State is the claim flow's position. The flow has no terminal state; the
// controller lives as long as the page (or process) and re-evaluates on
// every wallet or session change.
type State int

const (
	StateWalletDisconnected State = iota
	StateWalletConnected
	StateAuthenticated
	StateEligibilityKnown
)

func (s State) String() string {
	switch s {
	case StateWalletDisconnected:
		return "wallet-disconnected"
	case StateWalletConnected:
		return "wallet-connected"
	case StateAuthenticated:
		return "authenticated"
	case StateEligibilityKnown:
		return "eligibility-known"
	default:
		return "unknown"
	}
}

// ErrMintFailed is the single failure the flow surfaces to the user. The
// server's 403 vs 502 distinction stays in the logs.
var ErrMintFailed = errors.New("mint failed")

// ErrNotReady is returned for actions attempted out of order.
var ErrNotReady = errors.New("claim flow not ready")

// Controller orchestrates the claim flow: connect wallet, sign in, learn
// eligibility, mint. The eligibility it holds is display-status only; the
// server re-checks on issuance.
type Controller struct {
	mu           sync.Mutex
	state        State
	wallet       *Wallet
	api          *APIClient
	minter       MintSubmitter
	member       bool
	mintInFlight bool
	logger       *slog.Logger
}

// NewController creates a controller in the wallet-disconnected state.
func NewController(api *APIClient, minter MintSubmitter, logger *slog.Logger) *Controller {
	return &Controller{state: StateWalletDisconnected, api: api, minter: minter, logger: logger}
}

// State reports the current flow state.
func (ctl *Controller) State() State {
	ctl.mu.Lock()
	defer ctl.mu.Unlock()
	return ctl.state
}

// IsMember reports the advisory eligibility display status.
func (ctl *Controller) IsMember() bool {
	ctl.mu.Lock()
	defer ctl.mu.Unlock()
	return ctl.member
}

// ConnectWallet handles the wallet connect event. Connecting a different
// wallet while signed in re-evaluates from the connected state.
func (ctl *Controller) ConnectWallet(w *Wallet) {
	ctl.mu.Lock()
	defer ctl.mu.Unlock()
	ctl.wallet = w
	ctl.state = StateWalletConnected
	ctl.member = false
	ctl.logger.Info("wallet connected", "address", w.Address().Hex())
}

// DisconnectWallet handles the wallet disconnect event.
func (ctl *Controller) DisconnectWallet() {
	ctl.mu.Lock()
	defer ctl.mu.Unlock()
	ctl.wallet = nil
	ctl.state = StateWalletDisconnected
	ctl.member = false
}

// SignIn attaches the session cookie obtained from the browser flow and
// fetches the eligibility display status.
func (ctl *Controller) SignIn(ctx context.Context, sessionCookie string) error {
	ctl.mu.Lock()
	if ctl.state == StateWalletDisconnected {
		ctl.mu.Unlock()
		return ErrNotReady
	}
	ctl.api.SetSessionCookie(sessionCookie)
	ctl.state = StateAuthenticated
	ctl.mu.Unlock()

	return ctl.RefreshEligibility(ctx)
}

// SignOut handles the session-cleared event.
func (ctl *Controller) SignOut() {
	ctl.mu.Lock()
	defer ctl.mu.Unlock()
	ctl.api.SetSessionCookie("")
	ctl.member = false
	if ctl.state != StateWalletDisconnected {
		ctl.state = StateWalletConnected
	}
}

// RefreshEligibility fetches the membership display status. The result
// drives which action the flow presents (mint vs join-server); it carries
// no authorization weight.
func (ctl *Controller) RefreshEligibility(ctx context.Context) error {
	ctl.mu.Lock()
	if ctl.state != StateAuthenticated && ctl.state != StateEligibilityKnown {
		ctl.mu.Unlock()
		return ErrNotReady
	}
	ctl.mu.Unlock()

	membership, err := ctl.api.CheckMembership(ctx)
	if err != nil {
		ctl.logger.Warn("eligibility fetch failed", "error", err)
		return err
	}

	ctl.mu.Lock()
	defer ctl.mu.Unlock()
	ctl.member = membership != nil
	ctl.state = StateEligibilityKnown
	ctl.logger.Info("eligibility known", "member", ctl.member)
	return nil
}

// Mint requests a mint authorization for the connected wallet and submits
// it to the chain. Every failure after this point is reported uniformly as
// ErrMintFailed. A mint attempt while one is outstanding is refused.
func (ctl *Controller) Mint(ctx context.Context) (*MintResult, error) {
	ctl.mu.Lock()
	if ctl.state != StateEligibilityKnown || ctl.wallet == nil {
		ctl.mu.Unlock()
		return nil, ErrNotReady
	}
	if ctl.mintInFlight {
		ctl.mu.Unlock()
		return nil, ErrNotReady
	}
	ctl.mintInFlight = true
	address := ctl.wallet.Address().Hex()
	ctl.mu.Unlock()

	defer func() {
		ctl.mu.Lock()
		ctl.mintInFlight = false
		ctl.mu.Unlock()
	}()

	payload, err := ctl.api.RequestSignature(ctx, address)
	if err != nil {
		ctl.logger.Error("signature request failed", "error", err)
		return nil, ErrMintFailed
	}

	result, err := ctl.minter.Submit(ctx, payload)
	if err != nil {
		ctl.logger.Error("mint submission failed", "error", err)
		return nil, ErrMintFailed
	}

	ctl.logger.Info("mint confirmed", "tx", result.TxHash, "token_id", result.TokenID)
	return result, nil
}
