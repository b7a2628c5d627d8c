package manifest

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"

	j "github.com/goccy/go-json"
	"golang.org/x/text/unicode/norm"
)

// Fingerprint returns a hex SHA-256 digest of the manifest's canonical JSON:
// object keys sorted, every string and key in Unicode NFC. Two manifests that
// differ only in map ordering or in the normalization form of their text
// share a fingerprint.
func (m *Manifest) Fingerprint() (string, error) {
	raw, err := j.Marshal(m)
	if err != nil {
		return "", err
	}
	dec := j.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	var doc any
	if err := dec.Decode(&doc); err != nil {
		return "", err
	}
	canonical, err := j.Marshal(nfc(doc))
	if err != nil {
		return "", err
	}
	sum := sha256.Sum256(canonical)
	return hex.EncodeToString(sum[:]), nil
}

func nfc(v any) any {
	switch x := v.(type) {
	case string:
		return norm.NFC.String(x)
	case map[string]any:
		out := make(map[string]any, len(x))
		for k, e := range x {
			out[norm.NFC.String(k)] = nfc(e)
		}
		return out
	case []any:
		out := make([]any, len(x))
		for i, e := range x {
			out[i] = nfc(e)
		}
		return out
	}
	return v
}
