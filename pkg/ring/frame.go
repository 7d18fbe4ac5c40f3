package ring

import (
	"encoding/binary"
	"unicode/utf16"
)

// EncodeFrame wraps payload (the textual encoding of a Message) in this
// system's wire framing: a 4-byte big-endian byte count followed by the
// payload transcoded to UTF-16BE.
func EncodeFrame(payload string) []byte {
	units := utf16.Encode([]rune(payload))
	body := make([]byte, len(units)*2)
	for i, u := range units {
		binary.BigEndian.PutUint16(body[i*2:], u)
	}

	frame := make([]byte, 4+len(body))
	binary.BigEndian.PutUint32(frame, uint32(len(body)))
	copy(frame[4:], body)
	return frame
}

// FrameAssembler accumulates bytes read off a stream socket and yields
// decoded payload strings only once a complete length-prefixed chunk is
// present. A partial chunk is retained across calls to Feed until enough
// bytes arrive to complete it.
type FrameAssembler struct {
	buf []byte
}

// Feed appends newly read bytes to the assembler's pending buffer.
func (f *FrameAssembler) Feed(b []byte) {
	f.buf = append(f.buf, b...)
}

// Next pops and decodes one complete frame from the buffer, if present.
func (f *FrameAssembler) Next() (string, bool) {
	if len(f.buf) < 4 {
		return "", false
	}

	byteCount := binary.BigEndian.Uint32(f.buf)
	if uint32(len(f.buf)) < 4+byteCount {
		return "", false
	}

	body := f.buf[4 : 4+byteCount]
	f.buf = f.buf[4+byteCount:]

	units := make([]uint16, byteCount/2)
	for i := range units {
		units[i] = binary.BigEndian.Uint16(body[i*2:])
	}
	return string(utf16.Decode(units)), true
}
