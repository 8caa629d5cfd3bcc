// Package wasmtest builds minimal WebAssembly binaries for tests.
package wasmtest

// Section is a custom section to embed in a generated module.
type Section struct {
	Name string
	Data []byte
}

var header = []byte{0x00, 0x61, 0x73, 0x6d, 0x01, 0x00, 0x00, 0x00}

// Module returns a valid, otherwise empty module carrying sections in order.
func Module(sections ...Section) []byte {
	out := append([]byte(nil), header...)
	for _, s := range sections {
		content := appendULEB(nil, uint32(len(s.Name)))
		content = append(content, s.Name...)
		content = append(content, s.Data...)

		out = append(out, 0x00)
		out = appendULEB(out, uint32(len(content)))
		out = append(out, content...)
	}
	return out
}

func appendULEB(dst []byte, v uint32) []byte {
	for {
		b := byte(v & 0x7f)
		v >>= 7
		if v != 0 {
			dst = append(dst, b|0x80)
			continue
		}
		return append(dst, b)
	}
}
