package idhash

import (
	"crypto/sha256"
	"fmt"

	"github.com/google/uuid"
	"github.com/mr-tron/base58"
)

// snapshotIDBytes is how much of the digest is kept. 128 bits is plenty for
// per-run uniqueness and keeps ids around 22 characters.
const snapshotIDBytes = 16

// NewRunID returns a random run identifier (UUIDv4).
func NewRunID() string {
	return uuid.NewString()
}

// ComputeSnapshotID computes a deterministic snapshot_id.
// Formula: base58(SHA256(run_id|name)[:16])
func ComputeSnapshotID(runID, name string) string {
	data := fmt.Sprintf("%s|%s", runID, name)
	hash := sha256.Sum256([]byte(data))
	return base58.Encode(hash[:snapshotIDBytes])
}
