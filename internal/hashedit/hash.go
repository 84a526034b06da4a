package hashedit

import (
	"encoding/binary"
	"fmt"
	"strings"

	"github.com/cespare/xxhash/v2"
)

// HashLen is the canonical number of hex characters per line hash. It is a
// deliberate tradeoff favoring a short display form over collision
// resistance — staleness detection is scoped to one specific line number,
// not a population-wide hash space.
const HashLen = 2

// LineHash computes the canonical content hash for a line at lineNo
// (1-indexed). A trailing '\r' is stripped before hashing; no other
// transformation is applied.
func LineHash(lineNo int, text string) string {
	return lineHashWidth(lineNo, text, HashLen)
}

// lineHashWidth computes a hash at an arbitrary hex width, used internally
// when comparing against a caller-supplied ref of non-canonical width.
func lineHashWidth(lineNo int, text string, width int) string {
	text = strings.TrimSuffix(text, "\r")

	var seed [8]byte
	binary.BigEndian.PutUint64(seed[:], uint64(lineNo))

	h := xxhash.New()
	h.Write(seed[:])
	h.Write([]byte(text))
	sum := h.Sum64()

	bits := uint(width * 4)
	if bits < 64 {
		sum &= (uint64(1) << bits) - 1
	}
	return fmt.Sprintf("%0*x", width, sum)
}

// hashMatches reports whether ref (of any width up to HashLen, per §4.3's
// forward-compatible parsing) matches the canonical hash for lineNo/text.
//
// A narrower-width hash isn't a prefix of the wider one: both widths format
// the same low bits of the same xxhash sum, so a narrower hash only ever
// shares the canonical hash's trailing hex digits, not its leading ones (a
// width-1 hash is the canonical hash's last hex character). ref is
// recomputed at its own width and compared for equality rather than
// prefix-matched against the canonical digest.
func hashMatches(lineNo int, text, ref string) bool {
	ref = strings.ToLower(ref)
	if len(ref) == 0 || len(ref) > HashLen {
		return false
	}
	want := strings.ToLower(lineHashWidth(lineNo, text, len(ref)))
	return want == ref
}
