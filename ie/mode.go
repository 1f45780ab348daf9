package ie

import (
	"bufio"
	"errors"
	"io"
	"strconv"
	"strings"
)

// Mode selects the encoding of a stream.
type Mode int8

const (
	// Text streams hold one record per line with tab-separated tokens.
	Text Mode = iota
	// Binary streams start with a header and hold length-prefixed tokens.
	Binary
	// Compressed streams are Binary streams deflated after the header.
	Compressed
	// RawBinary streams are Binary streams without a header.
	RawBinary
)

var modeNames = [...]string{
	Text:       "text",
	Binary:     "binary",
	Compressed: "compressed",
	RawBinary:  "raw",
}

func (m Mode) String() string {
	if m < 0 || int(m) >= len(modeNames) {
		return "Mode(" + strconv.Itoa(int(m)) + ")"
	}
	return modeNames[m]
}

// ParseMode returns the mode with the given name.
func ParseMode(s string) (Mode, error) {
	for i, n := range modeNames {
		if strings.EqualFold(s, n) {
			return Mode(i), nil
		}
	}
	return 0, errors.New("ie: unknown mode " + strconv.Quote(s))
}

// Version is the format version written into stream headers. Streams without
// a header are read as the current version.
const Version = 1

// DefaultVersionName is the version name written when no other is given.
const DefaultVersionName = "expressions"

var (
	magicBinary     = [4]byte{'I', 'E', 'B', '1'}
	magicCompressed = [4]byte{'I', 'E', 'Z', '1'}
)

// sniffLen is how many leading bytes decide between text and raw binary.
const sniffLen = 512

// detect peeks at the start of a stream to decide its mode. It consumes
// nothing.
func detect(br *bufio.Reader) (Mode, error) {
	head, err := br.Peek(sniffLen)
	if err != nil && !errors.Is(err, io.EOF) && !errors.Is(err, bufio.ErrBufferFull) {
		return 0, err
	}
	if len(head) >= len(magicBinary) {
		switch [4]byte(head[:4]) {
		case magicBinary:
			return Binary, nil
		case magicCompressed:
			return Compressed, nil
		}
	}
	for _, c := range head {
		if !printable(c) {
			return RawBinary, nil
		}
	}
	return Text, nil
}

// printable reports whether c may appear in a text stream. Bytes of multibyte
// UTF-8 sequences count as printable.
func printable(c byte) bool {
	switch {
	case c == '\t', c == '\n', c == '\r':
		return true
	case c < 0x20, c == 0x7f:
		return false
	}
	return true
}
