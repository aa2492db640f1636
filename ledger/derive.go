package ledger

import (
	"crypto/sha256"
	"errors"

	"github.com/x402labs/attestation-ledger/interfaces"
)

// SlotDomainTag is the well-known domain-separation tag mixed into every slot
// address derivation. Anyone holding a claim ID and this tag can recompute
// the address of its attestation slot without a lookup index.
const SlotDomainTag = "attestation"

// reservedPrefix marks the address range reserved for substrate bookkeeping.
// A derived address must not start with this byte; the derivation proof is
// decremented until the digest clears the reserved range.
const reservedPrefix byte = 0x00

// ErrNoValidSlotAddress is returned when no derivation proof yields a usable
// address for a claim ID. With a 1/256 rejection rate per attempt this is
// unreachable in practice.
var ErrNoValidSlotAddress = errors.New("no valid slot address for claim id")

// DeriveSlotAddress computes the storage address for a claim's attestation
// slot: SHA-256(SlotDomainTag || claimID || proof), where proof starts at 255
// and decrements until the digest is a valid slot address. The derivation is
// pure: the same claim ID always yields the same address and proof.
func DeriveSlotAddress(claimID interfaces.ClaimID) (interfaces.SlotAddress, uint8, error) {
	for proof := 255; proof >= 0; proof-- {
		addr := deriveWithProof(claimID, uint8(proof))
		if addr[0] != reservedPrefix {
			return addr, uint8(proof), nil
		}
	}
	return interfaces.SlotAddress{}, 0, ErrNoValidSlotAddress
}

// VerifySlotAddress reports whether addr is the slot address derived from
// claimID with the given derivation proof. Auditors use this to check that a
// record's address_proof reproduces its storage location.
func VerifySlotAddress(claimID interfaces.ClaimID, proof uint8, addr interfaces.SlotAddress) bool {
	derived := deriveWithProof(claimID, proof)
	if derived[0] == reservedPrefix {
		return false
	}
	return derived.Equal(addr)
}

func deriveWithProof(claimID interfaces.ClaimID, proof uint8) interfaces.SlotAddress {
	h := sha256.New()
	h.Write([]byte(SlotDomainTag))
	h.Write(claimID.Bytes())
	h.Write([]byte{proof})

	var addr interfaces.SlotAddress
	copy(addr[:], h.Sum(nil))
	return addr
}
