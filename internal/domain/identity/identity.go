// Package identity resolves stable identifiers for riders and horses.
//
// Hippodata records carry an FEI id when the entity is federated; national
// riders and horses arrive without one. For those a deterministic synthetic
// id is derived from the entity's name (and number, for horses) plus the
// event id, so the startlist import and the result import of the same
// event always converge on the same identifier.
package identity

import (
	"crypto/md5" //nolint:gosec // not used for security, mandated id derivation
	"encoding/hex"

	"github.com/jumpingaccess/Hippodata2Equipe/internal/domain/model"
)

// Prefixes marking synthetic identities. Records carrying one must never
// be written back with an fei_id field.
const (
	SyntheticRiderPrefix = "TEMP_R_"
	SyntheticHorsePrefix = "TEMP_H_"
)

// ResolveRider returns the rider's identity: the native FEI id when
// present, otherwise a synthetic id derived from the display name and the
// event id. Empty when the record has neither an id nor a name.
func ResolveRider(r model.Rider, eventID string) string {
	if id := r.FeiID.String(); id != "" {
		return id
	}
	if r.Name == "" {
		return ""
	}
	return SyntheticRiderPrefix + eventID + "_" + hashMD5(r.Name)
}

// ResolveHorse returns the horse's identity: the native FEI id when
// present, otherwise a synthetic id derived from name, number and event.
func ResolveHorse(h model.Horse, eventID string) string {
	if id := h.FeiID.String(); id != "" {
		return id
	}
	if h.Name == "" {
		return ""
	}
	return SyntheticHorsePrefix + eventID + "_" + hashMD5(h.Name+"_"+h.Number.String())
}

// IsSynthetic reports whether id was derived rather than issued by the FEI.
func IsSynthetic(id string) bool {
	return len(id) >= len("TEMP_") && id[:len("TEMP_")] == "TEMP_"
}

func hashMD5(s string) string {
	sum := md5.Sum([]byte(s)) //nolint:gosec // id derivation, not crypto
	return hex.EncodeToString(sum[:])
}

// KnownSet tracks identities already present in Equipe or already queued
// earlier in the same batch, so an entity is created at most once. It is
// local to one orchestration call and discarded afterwards.
type KnownSet struct {
	seen map[string]struct{}
}

// NewKnownSet builds an empty set.
func NewKnownSet() *KnownSet {
	return &KnownSet{seen: make(map[string]struct{})}
}

// Add records an identity.
func (s *KnownSet) Add(id string) {
	if id == "" {
		return
	}
	s.seen[id] = struct{}{}
}

// Contains reports whether an identity was recorded.
func (s *KnownSet) Contains(id string) bool {
	_, ok := s.seen[id]
	return ok
}

// SeenAndRecord checks and records in one step; it returns true when the
// identity was already known.
func (s *KnownSet) SeenAndRecord(id string) bool {
	if s.Contains(id) {
		return true
	}
	s.Add(id)
	return false
}

// Len returns the number of recorded identities.
func (s *KnownSet) Len() int {
	return len(s.seen)
}
