package ie_test

import (
	"bytes"
	"testing"

	"github.com/PavelStransky/expressions/ie"
)

func FuzzImport(f *testing.F) {
	f.Add([]byte("int\t1\n"))
	f.Add([]byte("pair\nint\t2\nstring\tx\n"))
	f.Add([]byte("IEB1\x01\x00\x00\x00\x00\x03int\x02"))
	f.Add([]byte{0x06, 'd', 'o', 'u', 'b', 'l', 'e'})
	reg := ie.NewRegistry(nil).Register("pair", 1, func() ie.Object { return new(pair) })
	f.Fuzz(func(t *testing.T, b []byte) {
		i, err := ie.NewImport(bytes.NewReader(b), reg)
		if err != nil {
			return
		}
		defer i.Close()
		for k := 0; k < 64; k++ {
			v, err := i.Read()
			if err != nil || v == nil {
				return
			}
		}
	})
}
