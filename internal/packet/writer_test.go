package packet

import (
	"encoding/binary"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestWriterNetworkOrder(t *testing.T) {
	w := NewWriterSize(8)
	w.WriteUint16(0x1234)
	w.WriteUint16(0x5678)
	w.WriteByte(0x9a)
	w.WriteByte(0xbc)

	assert.Equal(t, []byte{0x12, 0x34, 0x56, 0x78, 0x9a, 0xbc}, w.Bytes())
	assert.Equal(t, 2, w.Available())
	assert.False(t, w.Full())
}

func TestWriterLittleEndianSamples(t *testing.T) {
	w := NewWriterOrder(make([]byte, 4), binary.LittleEndian)
	w.WriteInt16(0x1234)
	w.WriteInt16(-2)

	assert.Equal(t, []byte{0x34, 0x12, 0xfe, 0xff}, w.Bytes())
	assert.True(t, w.Full())

	w.Reset()
	assert.Equal(t, 0, w.Length())
	assert.Equal(t, 4, w.Capacity())
}

func TestWriteSliceCapacity(t *testing.T) {
	w := NewWriterSize(3)
	assert.NoError(t, w.WriteSlice([]byte{1, 2}))
	assert.Error(t, w.WriteSlice([]byte{3, 4}))
	assert.Equal(t, []byte{1, 2}, w.Bytes())
}

func TestReaderRoundTrip(t *testing.T) {
	w := NewWriterSize(12)
	w.WriteUint32(0xdeadbeef)
	w.WriteUint16(0xfffe)
	w.WriteByte(0x01)
	w.WriteUint16(0x0203)
	w.Align(4)

	r := NewReader(w.Bytes())
	assert.Equal(t, uint32(0xdeadbeef), r.ReadUint32())
	assert.Equal(t, int16(-2), r.ReadInt16())
	assert.Equal(t, byte(0x01), r.ReadByte())
	assert.Equal(t, uint16(0x0203), r.ReadUint16())
	assert.Equal(t, 3, r.Remaining())
	assert.Error(t, r.CheckRemaining(4))
}
