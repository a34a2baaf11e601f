package common

import (
	"math"
	"testing"
	"testing/quick"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLengthBoundaries(t *testing.T) {
	cases := []struct {
		n    int
		size int
	}{
		{0, 1},
		{126, 1},
		{127, 2},
		{16382, 2},
		{16383, 4},
		{536870910, 4},
	}
	for _, tc := range cases {
		s := NewSink(8)
		require.NoError(t, s.WriteLength(tc.n))
		buf := s.Bytes()
		require.Len(t, buf, tc.size, "n=%d", tc.n)
		require.Equal(t, tc.size, LengthSize(tc.n))

		c := NewCursor(buf, 0)
		got, err := c.ReadLength()
		require.NoError(t, err)
		assert.Equal(t, tc.n, got)
		assert.Equal(t, tc.size, c.Offset())
	}
}

func TestLengthTierBits(t *testing.T) {
	s := NewSink(8)
	require.NoError(t, s.WriteLength(127))
	require.NoError(t, s.WriteLength(16383))
	assert.Equal(t, []byte{0x80, 0x7F, 0xC0, 0x00, 0x3F, 0xFF}, s.Bytes())
}

func TestLengthErrors(t *testing.T) {
	s := NewSink(0)
	require.ErrorIs(t, s.WriteLength(-1), ErrNegativeSize)
	require.ErrorIs(t, s.WriteLength(0x1FFFFFFF), ErrSizeTooLarge)
	require.ErrorIs(t, s.WriteLength(math.MaxInt32), ErrSizeTooLarge)
	require.Equal(t, 0, s.Len())

	_, err := NewCursor([]byte{0xE0, 0, 0, 0}, 0).ReadLength()
	require.ErrorIs(t, err, ErrInvalidSize)
	_, err = NewCursor(nil, 0).ReadLength()
	require.ErrorIs(t, err, ErrUnexpectedEOF)
	_, err = NewCursor([]byte{0x80}, 0).ReadLength()
	require.ErrorIs(t, err, ErrUnexpectedEOF)
}

func TestLengthQuick(t *testing.T) {
	condition := func(n uint32) bool {
		v := int(n % MaxLength)
		s := NewSink(4)
		if err := s.WriteLength(v); err != nil {
			return false
		}
		got, err := NewCursor(s.Bytes(), 0).ReadLength()
		return err == nil && got == v
	}
	require.NoError(t, quick.Check(condition, &quick.Config{MaxCount: 2000}))
}

func TestFixedWidthRoundTrip(t *testing.T) {
	s := NewSink(32)
	s.WriteTag('P')
	s.WriteUint(0xAB, U8)
	s.WriteUint(0xBEEF, U16)
	s.WriteUint(0xDEADBEEF, U32)
	s.WriteDouble(-1.5)
	s.WriteText("hi")
	s.WriteRaw([]byte{1, 2})
	buf := s.Bytes()
	require.Equal(t, []byte{'P', 0xAB, 0xBE, 0xEF, 0xDE, 0xAD, 0xBE, 0xEF}, buf[:8])

	c := NewCursor(buf, 1)
	v, err := c.ReadUint(U8)
	require.NoError(t, err)
	assert.EqualValues(t, 0xAB, v)
	v, err = c.ReadUint(U16)
	require.NoError(t, err)
	assert.EqualValues(t, 0xBEEF, v)
	v, err = c.ReadUint(U32)
	require.NoError(t, err)
	assert.EqualValues(t, 0xDEADBEEF, v)
	f, err := c.ReadDouble()
	require.NoError(t, err)
	assert.Equal(t, -1.5, f)
	str, err := c.ReadText(2)
	require.NoError(t, err)
	assert.Equal(t, "hi", str)
	raw, err := c.ReadRaw(2)
	require.NoError(t, err)
	assert.Equal(t, []byte{1, 2}, raw)
	assert.Equal(t, 0, c.Remaining())

	_, err = c.ReadUint(U8)
	require.ErrorIs(t, err, ErrUnexpectedEOF)
}

func TestWriteUintOverflowPanics(t *testing.T) {
	s := NewSink(0)
	assert.Panics(t, func() { s.WriteUint(256, U8) })
	assert.Panics(t, func() { s.WriteUint(1, Double) })
}

func TestPeekQuirks(t *testing.T) {
	c := NewCursor([]byte{'!', 0x00}, 0)
	b, err := c.Peek()
	require.NoError(t, err)
	assert.Equal(t, byte('!'), b)
	assert.Equal(t, 0, c.Offset())

	c.Skip()
	_, err = c.Peek()
	require.ErrorIs(t, err, ErrUnexpectedEOF, "zero byte is treated as end of stream")

	c.Skip()
	_, err = c.Peek()
	require.ErrorIs(t, err, ErrUnexpectedEOF)
}

func TestReadRawCopies(t *testing.T) {
	buf := []byte{1, 2, 3}
	raw, err := NewCursor(buf, 0).ReadRaw(3)
	require.NoError(t, err)
	raw[0] = 9
	assert.Equal(t, byte(1), buf[0])
}
