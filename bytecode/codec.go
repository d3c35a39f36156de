package bytecode

import (
	"math"

	"github.com/cockroachdb/errors"

	"github.com/latticerun/physics/capability"
	"github.com/latticerun/physics/internal/wrappers"
)

// WireVersion is the codec's format tag, carried in every encoded
// artifact so the wire format can evolve without breaking readers of
// older artifacts (teacher's codec.CodecVersion plays the same role for
// consensus types).
type WireVersion uint16

const CurrentWireVersion WireVersion = 1

// Encode serializes the artifact's executable surface -- instructions,
// constants, interned strings, tier and resource limits, and the
// capability sets -- to bytes. Core/Proof (Formal/Verified tier
// introspection data) are not part of the wire format; they exist for
// in-process verification only and never need to cross a process
// boundary.
func (a *CompilationArtifact) Encode() ([]byte, error) {
	p := wrappers.NewPacker(256)
	p.PackInt(uint32(CurrentWireVersion))
	p.PackByte(byte(a.Tier))
	p.PackByte(boolByte(a.Sandboxed))
	p.PackLong(uint64(a.StepLimit))
	p.PackLong(uint64(a.MemoryLimit))

	p.PackInt(uint32(len(a.Strings)))
	for _, s := range a.Strings {
		p.PackStr(s)
	}

	p.PackInt(uint32(len(a.Constants)))
	for _, v := range a.Constants {
		encodeValue(p, v)
	}

	p.PackInt(uint32(len(a.Code)))
	for _, ins := range a.Code {
		p.PackByte(byte(ins.Op))
		p.PackInt(uint32(ins.A))
		p.PackInt(uint32(ins.B))
		p.PackInt(uint32(ins.C))
	}

	p.PackInt(uint32(len(a.Functions)))
	for _, fn := range a.Functions {
		p.PackInt(uint32(len(fn)))
		for _, ins := range fn {
			p.PackByte(byte(ins.Op))
			p.PackInt(uint32(ins.A))
			p.PackInt(uint32(ins.B))
			p.PackInt(uint32(ins.C))
		}
	}

	p.PackInt(uint32(len(a.Captures)))
	for _, list := range a.Captures {
		p.PackInt(uint32(len(list)))
		for _, src := range list {
			p.PackByte(byte(src.Kind))
			p.PackInt(uint32(src.Index))
		}
	}

	encodeCapSet(p, a.RequiredCapabilities)
	encodeCapSet(p, a.GrantedCapabilities)

	if p.Err != nil {
		return nil, errors.Wrap(p.Err, "encode artifact")
	}
	return p.Bytes, nil
}

// Decode reconstructs a CompilationArtifact from bytes produced by
// Encode. It rejects wire versions it does not understand rather than
// guessing at a layout.
func Decode(data []byte) (*CompilationArtifact, error) {
	u := wrappers.NewUnpacker(data)
	version := WireVersion(u.UnpackInt())
	if version != CurrentWireVersion {
		return nil, errors.Newf("bytecode: unsupported wire version %d", version)
	}

	a := &CompilationArtifact{}
	a.Tier = capability.Tier(u.UnpackByte())
	a.Sandboxed = u.UnpackByte() != 0
	a.StepLimit = int64(u.UnpackLong())
	a.MemoryLimit = int64(u.UnpackLong())

	nStrings := u.UnpackInt()
	a.Strings = make([]string, 0, nStrings)
	for i := uint32(0); i < nStrings; i++ {
		a.Strings = append(a.Strings, u.UnpackStr())
	}

	nConsts := u.UnpackInt()
	a.Constants = make([]Value, 0, nConsts)
	for i := uint32(0); i < nConsts; i++ {
		a.Constants = append(a.Constants, decodeValue(u))
	}

	nCode := u.UnpackInt()
	a.Code = make([]Instruction, 0, nCode)
	for i := uint32(0); i < nCode; i++ {
		op := Op(u.UnpackByte())
		operandA := int32(u.UnpackInt())
		operandB := int32(u.UnpackInt())
		operandC := int32(u.UnpackInt())
		a.Code = append(a.Code, Instruction{Op: op, A: operandA, B: operandB, C: operandC})
	}

	nFuncs := u.UnpackInt()
	a.Functions = make([][]Instruction, 0, nFuncs)
	for i := uint32(0); i < nFuncs; i++ {
		nIns := u.UnpackInt()
		fn := make([]Instruction, 0, nIns)
		for j := uint32(0); j < nIns; j++ {
			op := Op(u.UnpackByte())
			opA := int32(u.UnpackInt())
			opB := int32(u.UnpackInt())
			opC := int32(u.UnpackInt())
			fn = append(fn, Instruction{Op: op, A: opA, B: opB, C: opC})
		}
		a.Functions = append(a.Functions, fn)
	}

	nCaps := u.UnpackInt()
	a.Captures = make([][]CaptureSource, 0, nCaps)
	for i := uint32(0); i < nCaps; i++ {
		nSrc := u.UnpackInt()
		list := make([]CaptureSource, 0, nSrc)
		for j := uint32(0); j < nSrc; j++ {
			kind := CaptureKind(u.UnpackByte())
			idx := int32(u.UnpackInt())
			list = append(list, CaptureSource{Kind: kind, Index: idx})
		}
		a.Captures = append(a.Captures, list)
	}

	a.RequiredCapabilities = decodeCapSet(u)
	a.GrantedCapabilities = decodeCapSet(u)

	if u.Err != nil {
		return nil, errors.Wrap(u.Err, "decode artifact")
	}
	return a, nil
}

func boolByte(b bool) byte {
	if b {
		return 1
	}
	return 0
}

func encodeValue(p *wrappers.Packer, v Value) {
	p.PackByte(byte(v.Kind))
	switch v.Kind {
	case ValBool:
		p.PackByte(boolByte(v.Bool))
	case ValInt:
		p.PackLong(uint64(v.Int))
	case ValFloat:
		p.PackLong(math.Float64bits(v.Float))
	case ValString, ValSymbol:
		p.PackInt(v.StrIdx)
	case ValCapability:
		p.PackByte(v.CapKind)
		p.PackLong(v.CapN)
	case ValError:
		p.PackStr(v.Cause)
	case ValNil:
		// no payload
	default:
		p.PackLong(uint64(v.Ptr))
	}
}

func decodeValue(u *wrappers.Unpacker) Value {
	kind := ValueKind(u.UnpackByte())
	switch kind {
	case ValBool:
		return Bool(u.UnpackByte() != 0)
	case ValInt:
		return Int(int64(u.UnpackLong()))
	case ValFloat:
		return Float(math.Float64frombits(u.UnpackLong()))
	case ValString:
		return StringRef(u.UnpackInt())
	case ValSymbol:
		return SymbolRef(u.UnpackInt())
	case ValCapability:
		k := u.UnpackByte()
		n := u.UnpackLong()
		return CapabilityRef(k, n)
	case ValError:
		return ErrorValue(u.UnpackStr())
	case ValNil:
		return Nil
	default:
		return Value{Kind: kind, Ptr: uint32(u.UnpackLong())}
	}
}

func encodeCapSet(p *wrappers.Packer, s capability.Set) {
	list := s.List()
	p.PackInt(uint32(len(list)))
	for _, c := range list {
		p.PackByte(uint8(c.Kind))
		p.PackLong(c.N)
	}
}

func decodeCapSet(u *wrappers.Unpacker) capability.Set {
	n := u.UnpackInt()
	out := capability.NewSet()
	for i := uint32(0); i < n; i++ {
		kind := capability.Kind(u.UnpackByte())
		nParam := u.UnpackLong()
		out.Add(capability.Capability{Kind: kind, N: nParam})
	}
	return out
}
