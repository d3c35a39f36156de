package wrappers

import (
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/require"
)

func TestErrsAccumulatesAndFormats(t *testing.T) {
	require := require.New(t)

	var e Errs
	require.False(e.Errored())
	require.Nil(e.Err())

	e.Add(nil)
	require.Equal(0, e.Len())

	e.Add(errors.New("first"))
	require.True(e.Errored())
	require.Equal(1, e.Len())
	require.Equal("first", e.Err().Error())

	e.Add(errors.New("second"))
	require.Equal(2, e.Len())
	require.Contains(e.Err().Error(), "first")
	require.Contains(e.Err().Error(), "second")
}

func TestPackerUnpackerRoundTrip(t *testing.T) {
	require := require.New(t)

	p := NewPacker(32)
	p.PackByte(7)
	p.PackInt(1234)
	p.PackLong(9876543210)
	p.PackStr("hello world")
	require.NoError(p.Err)

	u := NewUnpacker(p.Bytes)
	require.Equal(byte(7), u.UnpackByte())
	require.Equal(uint32(1234), u.UnpackInt())
	require.Equal(uint64(9876543210), u.UnpackLong())
	require.Equal("hello world", u.UnpackStr())
	require.NoError(u.Err)
}

func TestUnpackerErrorsOnShortInput(t *testing.T) {
	require := require.New(t)

	u := NewUnpacker([]byte{1, 2})
	u.UnpackLong()
	require.Error(u.Err)
}
