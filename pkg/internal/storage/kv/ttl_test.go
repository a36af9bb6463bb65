package kv

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSealAndOpenTTL(t *testing.T) {
	now := time.UnixMilli(1_700_000_000_000)

	plain := sealTTL([]byte("v"), 0, now)
	val, expired, err := openTTL(plain, now)
	require.NoError(t, err)
	assert.False(t, expired)
	assert.Equal(t, []byte("v"), val)

	sealed := sealTTL([]byte("payload"), time.Second, now)
	assert.Len(t, sealed, ttlHeaderLen+len("payload"))

	val, expired, err = openTTL(sealed, now.Add(999*time.Millisecond))
	require.NoError(t, err)
	assert.False(t, expired)
	assert.Equal(t, []byte("payload"), val)

	val, expired, err = openTTL(sealed, now.Add(time.Second))
	require.NoError(t, err)
	assert.True(t, expired)
	assert.Nil(t, val)
	assert.True(t, isExpired(sealed, now.Add(time.Hour)))
}

func TestOpenTTLCorrupt(t *testing.T) {
	_, _, err := openTTL(append([]byte(nil), ttlMagic...), time.Now())
	assert.ErrorIs(t, err, errCorruptTTL)
	assert.False(t, isExpired(ttlMagic, time.Now()))
}

func TestSealCopiesValue(t *testing.T) {
	src := []byte("abc")
	out := sealTTL(src, 0, time.Now())
	src[0] = 'x'
	assert.Equal(t, []byte("abc"), out)
}
