package wrappers

import "github.com/cockroachdb/errors"

// Packer packs values into a growing byte buffer, big-endian, matching
// the teacher's wire-format conventions.
type Packer struct {
	Bytes []byte
	Err   error
}

// NewPacker returns a Packer with size bytes of pre-allocated capacity.
func NewPacker(size int) *Packer {
	return &Packer{Bytes: make([]byte, 0, size)}
}

func (p *Packer) PackByte(b byte) {
	if p.Err != nil {
		return
	}
	p.Bytes = append(p.Bytes, b)
}

func (p *Packer) PackBytes(b []byte) {
	if p.Err != nil {
		return
	}
	p.Bytes = append(p.Bytes, b...)
}

func (p *Packer) PackInt(i uint32) {
	if p.Err != nil {
		return
	}
	p.Bytes = append(p.Bytes, byte(i>>24), byte(i>>16), byte(i>>8), byte(i))
}

func (p *Packer) PackLong(l uint64) {
	if p.Err != nil {
		return
	}
	p.Bytes = append(p.Bytes,
		byte(l>>56), byte(l>>48), byte(l>>40), byte(l>>32),
		byte(l>>24), byte(l>>16), byte(l>>8), byte(l))
}

// PackStr packs a length-prefixed UTF-8 string.
func (p *Packer) PackStr(s string) {
	if p.Err != nil {
		return
	}
	p.PackInt(uint32(len(s)))
	p.Bytes = append(p.Bytes, s...)
}

// Unpacker reads values back out of a byte slice in the order a Packer
// wrote them.
type Unpacker struct {
	Bytes  []byte
	Offset int
	Err    error
}

func NewUnpacker(b []byte) *Unpacker {
	return &Unpacker{Bytes: b}
}

func (u *Unpacker) need(n int) bool {
	if u.Err != nil {
		return false
	}
	if u.Offset+n > len(u.Bytes) {
		u.Err = errors.Newf("unpacker: need %d bytes at offset %d, have %d", n, u.Offset, len(u.Bytes))
		return false
	}
	return true
}

func (u *Unpacker) UnpackByte() byte {
	if !u.need(1) {
		return 0
	}
	b := u.Bytes[u.Offset]
	u.Offset++
	return b
}

func (u *Unpacker) UnpackBytes(n int) []byte {
	if !u.need(n) {
		return nil
	}
	b := u.Bytes[u.Offset : u.Offset+n]
	u.Offset += n
	return b
}

func (u *Unpacker) UnpackInt() uint32 {
	if !u.need(4) {
		return 0
	}
	b := u.Bytes[u.Offset : u.Offset+4]
	u.Offset += 4
	return uint32(b[0])<<24 | uint32(b[1])<<16 | uint32(b[2])<<8 | uint32(b[3])
}

func (u *Unpacker) UnpackLong() uint64 {
	if !u.need(8) {
		return 0
	}
	b := u.Bytes[u.Offset : u.Offset+8]
	u.Offset += 8
	return uint64(b[0])<<56 | uint64(b[1])<<48 | uint64(b[2])<<40 | uint64(b[3])<<32 |
		uint64(b[4])<<24 | uint64(b[5])<<16 | uint64(b[6])<<8 | uint64(b[7])
}

func (u *Unpacker) UnpackStr() string {
	n := u.UnpackInt()
	if u.Err != nil {
		return ""
	}
	return string(u.UnpackBytes(int(n)))
}
