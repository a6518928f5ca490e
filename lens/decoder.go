package lens

import (
	"encoding/base64"
	"encoding/binary"
	"encoding/hex"
	"fmt"
	"sort"
	"strconv"

	"github.com/stellar/go/strkey"

	"github.com/daccred/txlens.attest.so/models"
)

// DecodedValue kinds.
const (
	ValueAddress = "address"
	ValueHex     = "hex"
	ValueText    = "text"
	ValueNumber  = "number"
	ValueBool    = "bool"
)

const abbrevHexRunes = 8

// Decode renders an opaque topic/data value as a display value. It is total:
// any input produces a usable result, falling back to abbreviated hex.
//
// Interpretations are tried in a fixed priority order; the order is
// load-bearing. Addresses must win over generic hex, and the base64 shape
// check must run before plain-text handling so encoded binary is not
// mistaken for text.
func Decode(value any) models.DecodedValue {
	switch v := value.(type) {
	case nil:
		return models.DecodedValue{Kind: ValueText, Display: ""}
	case bool:
		return models.DecodedValue{Kind: ValueBool, Display: strconv.FormatBool(v)}
	case string:
		return decodeString(v)
	case float64:
		return models.DecodedValue{Kind: ValueNumber, Display: strconv.FormatFloat(v, 'f', -1, 64)}
	case int:
		return models.DecodedValue{Kind: ValueNumber, Display: strconv.Itoa(v)}
	case int64:
		return models.DecodedValue{Kind: ValueNumber, Display: strconv.FormatInt(v, 10)}
	case uint64:
		return models.DecodedValue{Kind: ValueNumber, Display: strconv.FormatUint(v, 10)}
	case []byte:
		return decodeBytes(v)
	case []any:
		if b, ok := bytesFromList(v); ok {
			return decodeBytes(b)
		}
		return models.DecodedValue{Kind: ValueText, Display: fmt.Sprintf("%v", v)}
	case map[string]any:
		if b, ok := bytesFromMap(v); ok {
			return decodeBytes(b)
		}
		return models.DecodedValue{Kind: ValueText, Display: fmt.Sprintf("%v", v)}
	default:
		return models.DecodedValue{Kind: ValueText, Display: fmt.Sprintf("%v", v)}
	}
}

func decodeString(s string) models.DecodedValue {
	// Already-encoded strkey addresses pass the base64 shape check (base32 is
	// a subset of the base64 alphabet), so recognize them first.
	if isStrkeyAddress(s) {
		return models.DecodedValue{Kind: ValueAddress, Display: s}
	}
	if looksBase64(s) {
		if b, err := base64.StdEncoding.DecodeString(s); err == nil {
			return decodeBytes(b)
		}
	}
	return models.DecodedValue{Kind: ValueText, Display: s}
}

func decodeBytes(b []byte) models.DecodedValue {
	if len(b) == 32 {
		if s, err := strkey.Encode(strkey.VersionByteContract, b); err == nil {
			return models.DecodedValue{Kind: ValueAddress, Display: s}
		}
		if s, err := strkey.Encode(strkey.VersionByteAccountID, b); err == nil {
			return models.DecodedValue{Kind: ValueAddress, Display: s}
		}
		return models.DecodedValue{Kind: ValueHex, Display: hex.EncodeToString(b)}
	}
	if len(b) > 0 && printableASCII(b) {
		return models.DecodedValue{Kind: ValueText, Display: string(b)}
	}
	if len(b) > 0 && len(b) <= 8 {
		padded := make([]byte, 8)
		copy(padded[8-len(b):], b)
		return models.DecodedValue{Kind: ValueNumber, Display: strconv.FormatUint(binary.BigEndian.Uint64(padded), 10)}
	}
	return models.DecodedValue{Kind: ValueHex, Display: abbreviateHex(hex.EncodeToString(b))}
}

func isStrkeyAddress(s string) bool {
	if len(s) != 56 {
		return false
	}
	if _, err := strkey.Decode(strkey.VersionByteContract, s); err == nil {
		return true
	}
	if _, err := strkey.Decode(strkey.VersionByteAccountID, s); err == nil {
		return true
	}
	return false
}

// looksBase64 applies the shape heuristic: explicit padding, or an
// alphabet-only string whose length is a multiple of four and long enough
// that a coincidence is unlikely.
func looksBase64(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if !(r >= 'A' && r <= 'Z' || r >= 'a' && r <= 'z' || r >= '0' && r <= '9' || r == '+' || r == '/' || r == '=') {
			return false
		}
	}
	if s[len(s)-1] == '=' {
		return true
	}
	return len(s)%4 == 0 && len(s) > 20
}

func printableASCII(b []byte) bool {
	for _, c := range b {
		if c < 0x20 || c > 0x7e {
			return false
		}
	}
	return true
}

func abbreviateHex(h string) string {
	if len(h) <= abbrevHexRunes*2 {
		return h
	}
	return h[:abbrevHexRunes] + "…" + h[len(h)-abbrevHexRunes:]
}

// bytesFromList converts a JSON array of byte-sized numbers.
func bytesFromList(list []any) ([]byte, bool) {
	if len(list) == 0 {
		return nil, false
	}
	out := make([]byte, len(list))
	for i, item := range list {
		n, ok := byteValue(item)
		if !ok {
			return nil, false
		}
		out[i] = n
	}
	return out, true
}

// bytesFromMap converts the two byte-carrier map shapes JSON serializers
// produce: {"type":"Buffer","data":[...]} and index-keyed {"0":1,"1":2,...}.
func bytesFromMap(m map[string]any) ([]byte, bool) {
	if data, ok := m["data"].([]any); ok {
		return bytesFromList(data)
	}
	if len(m) == 0 {
		return nil, false
	}
	type kv struct {
		idx int
		val byte
	}
	entries := make([]kv, 0, len(m))
	for k, v := range m {
		idx, err := strconv.Atoi(k)
		if err != nil || idx < 0 {
			return nil, false
		}
		n, ok := byteValue(v)
		if !ok {
			return nil, false
		}
		entries = append(entries, kv{idx, n})
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].idx < entries[j].idx })
	out := make([]byte, 0, len(entries))
	for i, e := range entries {
		if e.idx != i {
			return nil, false
		}
		out = append(out, e.val)
	}
	return out, true
}

func byteValue(v any) (byte, bool) {
	switch n := v.(type) {
	case float64:
		if n < 0 || n > 255 || n != float64(int(n)) {
			return 0, false
		}
		return byte(n), true
	case int:
		if n < 0 || n > 255 {
			return 0, false
		}
		return byte(n), true
	default:
		return 0, false
	}
}
