package codec

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/binspector/binspector/endian"
)

func TestTag_Width(t *testing.T) {
	cases := map[Tag]int{
		U8: 1, I8: 1, Char: 1,
		U16: 2, I16: 2,
		U32: 4, I32: 4, F32: 4,
		U64: 8, I64: 8, F64: 8,
	}
	for tag, want := range cases {
		require.Equal(t, want, tag.Width(), "tag %s", tag)
	}
}

func TestEncodeDecode_RoundTrip(t *testing.T) {
	le := endian.GetLittleEndianEngine()
	be := endian.GetBigEndianEngine()

	cases := []struct {
		tag Tag
		val any
	}{
		{U8, uint8(0x7f)},
		{I8, int8(-12)},
		{U16, uint16(0xBEEF)},
		{I16, int16(-1000)},
		{U32, uint32(0xDEADBEEF)},
		{I32, int32(-123456)},
		{U64, uint64(0x0102030405060708)},
		{I64, int64(-9223372036854775808)},
		{F32, float32(3.5)},
		{F64, float64(2.71828)},
		{Char, "A"},
	}

	for _, e := range []endian.EndianEngine{le, be} {
		for _, c := range cases {
			encoded, err := Encode(e, c.tag, c.val)
			require.NoError(t, err)
			require.Len(t, encoded, c.tag.Width())

			decoded := Decode(e, c.tag, encoded)
			require.Equal(t, c.val, decoded)
		}
	}
}

func TestDecode_EndianSensitive(t *testing.T) {
	data := []byte{0x01, 0x00}
	require.Equal(t, uint16(1), Decode(endian.GetLittleEndianEngine(), U16, data))
	require.Equal(t, uint16(256), Decode(endian.GetBigEndianEngine(), U16, data))
}

func TestEncode_TypeMismatch(t *testing.T) {
	_, err := Encode(endian.GetLittleEndianEngine(), U32, "not a number")
	require.Error(t, err)

	_, err = Encode(endian.GetLittleEndianEngine(), Char, 65)
	require.Error(t, err)

	_, err = Encode(endian.GetLittleEndianEngine(), F64, "3.14")
	require.Error(t, err)
}

func TestEncode_IntegerWidening(t *testing.T) {
	// A plain Go int is accepted for integer tags (common when the field
	// value is computed arithmetically rather than read off a primitive).
	encoded, err := Encode(endian.GetLittleEndianEngine(), U8, 200)
	require.NoError(t, err)
	require.Equal(t, []byte{200}, encoded)
}
