package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/thirdweb-example/community-rewards/internal/client"
)

// rewards-claim drives the claim flow headlessly: connect a wallet, attach
// a session cookie obtained from the browser sign-in, check eligibility and
// submit the mint. It is the CLI counterpart of the web page.
func main() {
	var (
		serverURL = flag.String("server", "http://localhost:8788", "rewards server base URL")
		keyHex    = flag.String("key", "", "wallet private key (hex)")
		keyFile   = flag.String("keyfile", "", "path to wallet private key file")
		sessionV  = flag.String("session", "", "session cookie value from the browser sign-in")
		rpcURL    = flag.String("rpc", "", "JSON-RPC endpoint of the target chain")
		contract  = flag.String("contract", "", "NFT collection contract address")
		chainID   = flag.Int64("chain", 80001, "chain ID")
		timeout   = flag.Duration("timeout", 2*time.Minute, "overall timeout")
	)
	flag.Parse()

	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))

	if *sessionV == "" {
		fmt.Fprintln(os.Stderr, "missing -session: sign in at <server>/api/auth/signin and copy the rewards_session cookie")
		os.Exit(2)
	}
	if *rpcURL == "" || *contract == "" {
		fmt.Fprintln(os.Stderr, "missing -rpc or -contract")
		os.Exit(2)
	}

	wallet, err := loadWallet(*keyHex, *keyFile)
	if err != nil {
		logger.Error("failed to load wallet", "error", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
	defer stop()
	ctx, cancel := context.WithTimeout(ctx, *timeout)
	defer cancel()

	minter, err := client.NewContractMinter(ctx, *rpcURL, *contract, *chainID, wallet)
	if err != nil {
		logger.Error("failed to connect to chain", "rpc", *rpcURL, "error", err)
		os.Exit(1)
	}

	api := client.NewAPIClient(*serverURL, 15*time.Second)
	ctl := client.NewController(api, minter, logger)

	ctl.ConnectWallet(wallet)
	if err := ctl.SignIn(ctx, *sessionV); err != nil {
		logger.Error("sign-in failed", "error", err)
		os.Exit(1)
	}

	if !ctl.IsMember() {
		fmt.Println("You are not a member of the Discord server. Join it and retry.")
		os.Exit(1)
	}

	result, err := ctl.Mint(ctx)
	if err != nil {
		logger.Error("mint failed", "error", err)
		os.Exit(1)
	}

	fmt.Printf("Minted. Transaction: %s\n", result.TxHash)
	if result.TokenID != nil {
		fmt.Printf("Token ID: %s\n", result.TokenID)
		if *chainID == 80001 {
			fmt.Printf("Check out your NFT: https://testnets.opensea.io/assets/mumbai/%s/%s\n",
				strings.ToLower(*contract), result.TokenID)
		}
	}
}

func loadWallet(hexKey, path string) (*client.Wallet, error) {
	switch {
	case hexKey != "":
		return client.LoadWallet(hexKey)
	case path != "":
		return client.LoadWalletFile(path)
	default:
		return nil, fmt.Errorf("provide -key or -keyfile")
	}
}
