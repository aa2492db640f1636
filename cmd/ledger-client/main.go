package main

import (
	"crypto/ed25519"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/urfave/cli/v2"
	"golang.org/x/crypto/blake2b"

	"github.com/x402labs/attestation-ledger/api"
	"github.com/x402labs/attestation-ledger/api/clients"
	"github.com/x402labs/attestation-ledger/interfaces"
	"github.com/x402labs/attestation-ledger/ledger"
)

var flagServerAddr = &cli.StringFlag{
	Name:  "ledger-server-addr",
	Value: "http://127.0.0.1:8080",
	Usage: "Ledger server address to request",
}

var flagClaimID = &cli.StringFlag{
	Name:     "claim-id",
	Required: true,
	Usage:    "Claim identifier. 64-char hex string",
}

var flagSignerSeed = &cli.StringFlag{
	Name:    "signer-seed",
	Usage:   "Hex-encoded 32-byte ed25519 seed authorizing the write",
	EnvVars: []string{"LEDGER_SIGNER_SEED"},
}

var flagProofFile = &cli.StringFlag{
	Name:  "proof-file",
	Usage: "Path to the full proof; its BLAKE2b-256 hash becomes proof_hash",
}

var flagProofHash = &cli.StringFlag{
	Name:  "proof-hash",
	Usage: "Precomputed proof hash. 64-char hex string; overrides proof-file",
}

var flagRefundTxSig = &cli.StringFlag{
	Name:     "refund-tx-sig",
	Required: true,
	Usage:    "Signature of the refund transaction. 128-char hex string",
}

var flagFraudDetected = &cli.Uint64Flag{
	Name:  "fraud-detected",
	Usage: "Public input 0: fraud flag",
}

var flagHTTPStatus = &cli.Uint64Flag{
	Name:  "http-status",
	Usage: "Public input 1: HTTP status of the disputed response",
}

var flagBodyLength = &cli.Uint64Flag{
	Name:  "body-length",
	Usage: "Public input 2: body length of the disputed response",
}

var flagPayoutAmount = &cli.Uint64Flag{
	Name:  "payout-amount",
	Usage: "Public input 3: payout in micro-USDC",
}

func main() {
	app := &cli.App{
		Name:  "ledger-client",
		Usage: "Write and read fraud-claim attestations",
		Flags: []cli.Flag{
			flagServerAddr,
		},
		Commands: []*cli.Command{
			{
				Name:        "attest",
				Usage:       "Sign and submit an attestation",
				Description: "Computes the proof hash, signs the canonical attest digest with the ed25519 seed, and posts the record.",
				Flags: []cli.Flag{
					flagClaimID,
					flagSignerSeed,
					flagProofFile,
					flagProofHash,
					flagRefundTxSig,
					flagFraudDetected,
					flagHTTPStatus,
					flagBodyLength,
					flagPayoutAmount,
				},
				Action: runAttest,
			},
			{
				Name:  "query",
				Usage: "Fetch the attestation for a claim",
				Flags: []cli.Flag{
					flagClaimID,
				},
				Action: runQuery,
			},
			{
				Name:        "derive",
				Usage:       "Print the derived slot address for a claim",
				Description: "Demonstrates that anyone can recompute a record's address from the claim ID alone.",
				Flags: []cli.Flag{
					flagClaimID,
				},
				Action: runDerive,
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

func runAttest(cCtx *cli.Context) error {
	claimID, err := interfaces.NewClaimIDFromHex(cCtx.String(flagClaimID.Name))
	if err != nil {
		return fmt.Errorf("could not parse claim id: %w", err)
	}

	proofHash, err := resolveProofHash(cCtx)
	if err != nil {
		return err
	}

	refundSigRaw, err := decodeHex(cCtx.String(flagRefundTxSig.Name))
	if err != nil {
		return fmt.Errorf("could not parse refund tx signature: %w", err)
	}
	refundTxSig, err := interfaces.NewRefundTxSigFromBytes(refundSigRaw)
	if err != nil {
		return err
	}

	publicInputs := interfaces.PublicInputs{
		cCtx.Uint64(flagFraudDetected.Name),
		cCtx.Uint64(flagHTTPStatus.Name),
		cCtx.Uint64(flagBodyLength.Name),
		cCtx.Uint64(flagPayoutAmount.Name),
	}

	seedRaw, err := decodeHex(cCtx.String(flagSignerSeed.Name))
	if err != nil {
		return fmt.Errorf("could not parse signer seed: %w", err)
	}
	if len(seedRaw) != ed25519.SeedSize {
		return fmt.Errorf("signer seed must be %d bytes", ed25519.SeedSize)
	}
	privKey := ed25519.NewKeyFromSeed(seedRaw)
	pubKey := privKey.Public().(ed25519.PublicKey)

	digest := ledger.AttestDigest(claimID, proofHash, publicInputs, refundTxSig)
	signature := ed25519.Sign(privKey, digest[:])

	client := &clients.LedgerClient{ServerAddr: cCtx.String(flagServerAddr.Name)}
	response, err := client.Attest(&api.AttestRequest{
		ClaimID:      claimID.Bytes(),
		ProofHash:    proofHash.Bytes(),
		PublicInputs: publicInputs,
		RefundTxSig:  refundTxSig.Bytes(),
		Attester:     hexutil.Bytes(pubKey),
		Signature:    signature,
	})
	if err != nil {
		return err
	}

	return printJSON(response)
}

func runQuery(cCtx *cli.Context) error {
	claimID, err := interfaces.NewClaimIDFromHex(cCtx.String(flagClaimID.Name))
	if err != nil {
		return fmt.Errorf("could not parse claim id: %w", err)
	}

	client := &clients.LedgerClient{ServerAddr: cCtx.String(flagServerAddr.Name)}
	response, err := client.Query(claimID)
	if err != nil {
		return err
	}

	return printJSON(response)
}

func runDerive(cCtx *cli.Context) error {
	claimID, err := interfaces.NewClaimIDFromHex(cCtx.String(flagClaimID.Name))
	if err != nil {
		return fmt.Errorf("could not parse claim id: %w", err)
	}

	addr, proof, err := ledger.DeriveSlotAddress(claimID)
	if err != nil {
		return err
	}

	fmt.Printf("slot_address: %s\naddress_proof: %d\n", addr, proof)
	return nil
}

// resolveProofHash prefers an explicit hash and falls back to hashing the
// proof file with BLAKE2b-256.
func resolveProofHash(cCtx *cli.Context) (interfaces.ProofHash, error) {
	if hexHash := cCtx.String(flagProofHash.Name); hexHash != "" {
		raw, err := decodeHex(hexHash)
		if err != nil {
			return interfaces.ProofHash{}, fmt.Errorf("could not parse proof hash: %w", err)
		}
		return interfaces.NewProofHashFromBytes(raw)
	}

	proofPath := cCtx.String(flagProofFile.Name)
	if proofPath == "" {
		return interfaces.ProofHash{}, fmt.Errorf("either proof-hash or proof-file is required")
	}

	proofBytes, err := os.ReadFile(proofPath)
	if err != nil {
		return interfaces.ProofHash{}, fmt.Errorf("could not read proof file: %w", err)
	}

	sum := blake2b.Sum256(proofBytes)
	return interfaces.NewProofHashFromBytes(sum[:])
}

func decodeHex(value string) ([]byte, error) {
	return hex.DecodeString(strings.TrimPrefix(value, "0x"))
}

func printJSON(value any) error {
	encoded, err := json.MarshalIndent(value, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(encoded))
	return nil
}
