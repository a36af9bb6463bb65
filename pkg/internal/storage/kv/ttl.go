package kv

import (
	"bytes"
	"encoding/binary"
	"errors"
	"time"
)

// 不支持原生 TTL 的实现使用的信封：魔数 + 8 字节大端到期毫秒 + 原值.
var ttlMagic = []byte("OXTTL2")

const ttlHeaderLen = 6 + 8

var errCorruptTTL = errors.New("kv: corrupt ttl envelope")

// sealTTL 返回值的副本；ttl>0 时加上到期信封.
func sealTTL(value []byte, ttl time.Duration, now time.Time) []byte {
	if ttl <= 0 {
		return bytes.Clone(value)
	}

	out := make([]byte, ttlHeaderLen+len(value))
	copy(out, ttlMagic)
	binary.BigEndian.PutUint64(out[len(ttlMagic):], uint64(now.Add(ttl).UnixMilli()))
	copy(out[ttlHeaderLen:], value)

	return out
}

// openTTL 拆开信封，expired 为 true 时 value 为 nil；无信封的值原样返回.
func openTTL(b []byte, now time.Time) (value []byte, expired bool, err error) {
	if !bytes.HasPrefix(b, ttlMagic) {
		return b, false, nil
	}

	if len(b) < ttlHeaderLen {
		return nil, false, errCorruptTTL
	}

	deadline := int64(binary.BigEndian.Uint64(b[len(ttlMagic):ttlHeaderLen]))
	if now.UnixMilli() >= deadline {
		return nil, true, nil
	}

	return b[ttlHeaderLen:], false, nil
}

func isExpired(b []byte, now time.Time) bool {
	_, expired, err := openTTL(b, now)

	return err == nil && expired
}
