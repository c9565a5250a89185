package packet

import (
	"encoding/binary"
	"fmt"
)

// Protocol headers are serialized in network order. PCM sample blocks are
// usually little-endian, so the byte order is selectable per writer.
var networkOrder = binary.BigEndian

// Writer serializes values into a fixed-size buffer. It never grows: callers
// check Available() (or use the checked methods) before writing.
type Writer struct {
	buffer []byte
	offset int
	order  binary.ByteOrder
}

func NewWriter(buffer []byte) *Writer {
	return &Writer{buffer, 0, networkOrder}
}

func NewWriterSize(n int) *Writer {
	return NewWriter(make([]byte, n))
}

// NewWriterOrder returns a writer that encodes multi-byte integers with the
// given byte order.
func NewWriterOrder(buffer []byte, order binary.ByteOrder) *Writer {
	return &Writer{buffer, 0, order}
}

func (w *Writer) WriteByte(v byte) {
	w.buffer[w.offset] = v
	w.offset++
}

func (w *Writer) WriteUint16(v uint16) {
	w.order.PutUint16(w.buffer[w.offset:], v)
	w.offset += 2
}

// WriteInt16 writes a signed 16-bit PCM sample.
func (w *Writer) WriteInt16(v int16) {
	w.WriteUint16(uint16(v))
}

func (w *Writer) WriteUint32(v uint32) {
	w.order.PutUint32(w.buffer[w.offset:], v)
	w.offset += 4
}

func (w *Writer) WriteUint64(v uint64) {
	w.order.PutUint64(w.buffer[w.offset:], v)
	w.offset += 8
}

// Write the given bytes, if there is enough room.
func (w *Writer) WriteSlice(p []byte) error {
	if err := w.CheckCapacity(len(p)); err != nil {
		return err
	}
	w.offset += copy(w.buffer[w.offset:], p)
	return nil
}

func (w *Writer) WriteString(s string) error {
	if err := w.CheckCapacity(len(s)); err != nil {
		return err
	}
	w.offset += copy(w.buffer[w.offset:], s)
	return nil
}

// Pad with zeros up to the next multiple of width, e.g. Align(4) adds zero
// bytes until the next 4-byte boundary.
func (w *Writer) Align(width int) {
	boundary := width * ((w.offset + width - 1) / width)
	for w.offset < boundary {
		w.buffer[w.offset] = 0
		w.offset++
	}
}

// Return the number of bytes written so far.
func (w *Writer) Length() int {
	return w.offset
}

// Return the number of bytes that the underlying buffer can hold.
func (w *Writer) Capacity() int {
	return len(w.buffer)
}

// Available returns the number of bytes that can still be written.
func (w *Writer) Available() int {
	return len(w.buffer) - w.offset
}

// Full reports whether no more bytes can be written.
func (w *Writer) Full() bool {
	return w.offset >= len(w.buffer)
}

func (w *Writer) CheckCapacity(needed int) error {
	if w.Available() < needed {
		return fmt.Errorf("%d bytes available, %d needed", w.Available(), needed)
	}
	return nil
}

// Return a slice of the bytes written so far.
func (w *Writer) Bytes() []byte {
	return w.buffer[0:w.offset]
}

func (w *Writer) Reset() {
	w.offset = 0
}
