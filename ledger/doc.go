// Package ledger implements the attestation record store: write-once,
// deterministically-addressed records of fraud-claim adjudications.
//
// # Addressing
//
// Every claim ID owns exactly one attestation slot at
//
//	addr = SHA-256(SlotDomainTag || claim_id || address_proof)
//
// where address_proof is the highest byte value for which the digest falls
// outside the substrate's reserved range. The derivation is pure and uses a
// well-known domain tag, so any party can locate and verify a record with
// only the claim ID, without a registry or index lookup.
//
// # Write-once
//
// A slot, once populated, can never be overwritten or deleted. The store maps
// a substrate's atomic create-once primitive to interfaces.ErrAlreadyExists;
// concurrent writers to the same claim ID lose deterministically rather than
// racing into a torn or duplicate write.
//
// # Records
//
// AttestationRecord is stored in a fixed 201-byte layout with big-endian
// integers. attested_at, attester, and address_proof are assigned by the
// store at write time; all other fields are recorded verbatim from the
// caller, who is assumed to have verified the proof off-chain.
package ledger
