// Package keyspace maps fingerprints to storage keys under a version tag
// derived from everything that shapes a cached answer.
package keyspace

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"

	"pathsummarizer/internal/fingerprint"
)

// VersionTag identifies one combination of response schema, system
// prompt, model and cache format.
type VersionTag string

// Inputs are the values a VersionTag is derived from. Schema must be a
// deterministic encoding of the response schema.
type Inputs struct {
	Schema        []byte
	SystemMessage string
	Model         string
	CacheFormat   int
}

// CacheKey addresses one cached record.
type CacheKey struct {
	Version     VersionTag
	Fingerprint fingerprint.Fingerprint
}

// String renders the object key: <versionTag>/<fingerprint>.
func (k CacheKey) String() string {
	return string(k.Version) + "/" + string(k.Fingerprint)
}

type Keyspace struct {
	tag VersionTag
}

func New(in Inputs) *Keyspace {
	return &Keyspace{tag: DeriveTag(in)}
}

// DeriveTag hashes schema|systemMessage|model|cacheFormat.
func DeriveTag(in Inputs) VersionTag {
	raw := fmt.Sprintf("%s|%s|%s|%d", in.Schema, in.SystemMessage, in.Model, in.CacheFormat)
	sum := sha256.Sum256([]byte(raw))

	return VersionTag(hex.EncodeToString(sum[:]))
}

func (k *Keyspace) VersionTag() VersionTag {
	return k.tag
}

func (k *Keyspace) Key(fp fingerprint.Fingerprint) CacheKey {
	return CacheKey{Version: k.tag, Fingerprint: fp}
}
