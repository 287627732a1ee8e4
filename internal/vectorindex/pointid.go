package vectorindex

import "github.com/google/uuid"

// pointNamespace is a fixed, arbitrary namespace UUID used to derive
// deterministic point IDs from chunk IDs via uuid.NewSHA1. The
// core-level chunk ID is content/location-derived, but the vector-index
// "point ID" would otherwise be an opaque fresh identifier, meaning
// re-indexing an unchanged file is not automatically idempotent at the
// index level. Deriving point IDs deterministically from chunk IDs
// resolves that: re-upserting unchanged content overwrites the same
// point instead of accumulating duplicates.
var pointNamespace = uuid.MustParse("7d8f0c8e-6d2b-4b7a-9c2e-3a0b6e6a9a1e")

// PointID derives a stable Qdrant point UUID from a chunk's content ID.
func PointID(chunkID string) string {
	return uuid.NewSHA1(pointNamespace, []byte(chunkID)).String()
}
