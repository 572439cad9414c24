package logging

import "bytes"

// DefaultMaxBytes is the default transcript budget (1 MiB).
const DefaultMaxBytes int64 = 1 << 20

// Trim drops whole lines from the front of content until it fits in maxBytes.
//
// Let excess be len(content)-maxBytes. Lines are scanned oldest first and
// dropped while the bytes dropped so far are still below excess, so the
// result may end up a little smaller than maxBytes. The scan also stops at a
// line that is by itself longer than maxBytes: that line and everything after
// it are kept, which is the only case where the result exceeds the budget.
// Nothing is ever cut mid-line.
//
// A line includes its trailing '\n'; an unterminated final fragment counts as
// a line. A negative maxBytes is treated as zero. The returned slice aliases
// content.
func Trim(content []byte, maxBytes int64) []byte {
	if maxBytes < 0 {
		maxBytes = 0
	}
	total := int64(len(content))
	if total <= maxBytes {
		return content
	}

	excess := total - maxBytes
	var dropped int64
	for dropped < excess {
		lineLen := total - dropped
		if i := bytes.IndexByte(content[dropped:], '\n'); i >= 0 {
			lineLen = int64(i) + 1
		}
		if lineLen > maxBytes {
			break
		}
		dropped += lineLen
	}
	return content[dropped:]
}
