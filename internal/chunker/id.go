package chunker

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
)

// chunkID derives the chunk's content/location identity: identical
// content at an identical position under the same revision collides
// deliberately, making process_file idempotent with respect to (path,
// revision). This is distinct from the vector-index point ID, which the
// index adapter derives separately (see internal/vectorindex).
func chunkID(path string, startByte, endByte int, revision string) string {
	h := sha256.New()
	fmt.Fprintf(h, "%s\x00%d\x00%d\x00%s", path, startByte, endByte, revision)
	return hex.EncodeToString(h.Sum(nil))
}
