package audionet

import (
	"encoding/binary"

	"github.com/lanikai/audionet/internal/packet"
)

// Reference block size: 256 samples of 2 bytes.
const DefaultBlockSize = 512

// blockBuffer accumulates little-endian samples for one raw datagram. The
// cursor (Length) is always a multiple of the sample width.
type blockBuffer struct {
	*packet.Writer
}

func newBlockBuffer(size int) blockBuffer {
	// Round down to whole samples.
	size &^= 1
	return blockBuffer{packet.NewWriterOrder(make([]byte, size), binary.LittleEndian)}
}

// add appends one sample and reports whether the block is now full.
func (b blockBuffer) add(sample int16) bool {
	b.WriteInt16(sample)
	return b.Full()
}
