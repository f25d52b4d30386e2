package news

import (
	"crypto/md5"
	"encoding/hex"
	"time"
)

// Fingerprint generates the dedup key for a feed entry. The canonical form
// is the title concatenated with the RFC 3339 publish time, hashed with md5;
// two entries with the same title and publish time collapse to one. The
// concatenation order and timestamp format are part of the contract and must
// not change.
func Fingerprint(title string, published time.Time) string {
	h := md5.Sum([]byte(title + published.Format(time.RFC3339)))
	return hex.EncodeToString(h[:])
}
