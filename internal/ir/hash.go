package ir

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
)

// Domain prefixes for content hashes. The version suffix leaves room for
// changing the snapshot layout later.
const (
	DomainSpheres  = "ootlogic/spheres/v1"
	DomainSettings = "ootlogic/settings/v1"
)

// hashWithDomain computes SHA256(domain + 0x00 + data) as hex.
func hashWithDomain(domain string, data []byte) string {
	h := sha256.New()
	h.Write([]byte(domain))
	h.Write([]byte{0x00})
	h.Write(data)
	return hex.EncodeToString(h.Sum(nil))
}

// SnapshotHash hashes a sphere snapshot. Two searches over the same world
// with the same items produce the same hash.
func SnapshotHash(snapshot Object) (string, error) {
	canonical, err := MarshalCanonical(snapshot)
	if err != nil {
		return "", fmt.Errorf("SnapshotHash: failed to marshal: %w", err)
	}
	return hashWithDomain(DomainSpheres, canonical), nil
}

// SettingsHash hashes a settings object so runs can be grouped by the
// settings they were computed under.
func SettingsHash(settings Object) (string, error) {
	canonical, err := MarshalCanonical(settings)
	if err != nil {
		return "", fmt.Errorf("SettingsHash: failed to marshal: %w", err)
	}
	return hashWithDomain(DomainSettings, canonical), nil
}

// MustSnapshotHash is like SnapshotHash but panics on error.
// Use only in tests or when inputs are known to be valid.
func MustSnapshotHash(snapshot Object) string {
	h, err := SnapshotHash(snapshot)
	if err != nil {
		panic(err)
	}
	return h
}
