package library

import (
	"encoding/hex"
	"fmt"
	"strconv"

	"github.com/nbd-wtf/go-nostr"
)

// GetFirstTag returns the value of the first tag whose key is exactly name, so "sig" never
// matches "signer".
func GetFirstTag(e nostr.Event, name string) (string, bool) {
	for _, tag := range e.Tags {
		if len(tag) >= 2 && tag[0] == name {
			return tag[1], true
		}
	}
	return "", false
}

func GetHashTag(e nostr.Event, name string) (Hash160, error) {
	value, ok := GetFirstTag(e, name)
	if !ok {
		return Hash160{}, fmt.Errorf("event %s has no %s tag", e.ID, name)
	}
	return Hash160FromHex(value)
}

func GetBytesTag(e nostr.Event, name string) ([]byte, error) {
	value, ok := GetFirstTag(e, name)
	if !ok {
		return nil, fmt.Errorf("event %s has no %s tag", e.ID, name)
	}
	return hex.DecodeString(value)
}

func GetInt64Tag(e nostr.Event, name string) (int64, error) {
	value, ok := GetFirstTag(e, name)
	if !ok {
		return 0, fmt.Errorf("event %s has no %s tag", e.ID, name)
	}
	return strconv.ParseInt(value, 10, 64)
}

func Int64Tag(name string, value int64) nostr.Tag {
	return nostr.Tag{name, strconv.FormatInt(value, 10)}
}

func BytesTag(name string, value []byte) nostr.Tag {
	return nostr.Tag{name, hex.EncodeToString(value)}
}
