package primitives

import (
	"encoding/binary"
	"sync/atomic"
	"unsafe"
)

// Bucket heads are the publish point of a hash map. They are stored and
// loaded atomically so a reader that sees a link also sees every byte the
// writer put into that slot before publishing it. Regions keep their buffers
// 8 byte aligned, head links sit at multiples of LinkSize.

func loadLink(data []byte) (Link, bool) {
	p, ok := linkPointer(data)
	if !ok {
		return Terminal, false
	}
	return Link(fromLittle(atomic.LoadUint32(p))), true
}

func storeLink(data []byte, link Link) bool {
	p, ok := linkPointer(data)
	if !ok {
		return false
	}
	atomic.StoreUint32(p, fromLittle(uint32(link)))
	return true
}

func linkPointer(data []byte) (*uint32, bool) {
	if len(data) < LinkSize {
		return nil, false
	}
	p := unsafe.Pointer(unsafe.SliceData(data))
	if uintptr(p)%LinkSize != 0 {
		return nil, false
	}
	return (*uint32)(p), true
}

// fromLittle swaps between the on-disk little endian layout and the native
// word, a no-op on little endian hosts.
func fromLittle(v uint32) uint32 {
	var b [LinkSize]byte
	binary.NativeEndian.PutUint32(b[:], v)
	return binary.LittleEndian.Uint32(b[:])
}
