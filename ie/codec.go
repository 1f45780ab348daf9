package ie

import (
	"bufio"
	"encoding/binary"
	"errors"
	"fmt"
	"image/color"
	"io"
	"math"
	"strconv"
	"strings"
	"time"
)

// encoder writes the tokens of records. Every record is a tag token followed
// by payload tokens and closed with endRecord.
type encoder interface {
	putString(s string) error
	putInt(v int64) error
	putFloat(v float64) error
	putBool(v bool) error
	putTime(v time.Time) error
	putDuration(v time.Duration) error
	putColor(v color.RGBA) error
	endRecord() error
}

// decoder reads the tokens written by an encoder. tag returns io.EOF, and
// only io.EOF, when the stream ends cleanly before a record.
type decoder interface {
	tag() (string, error)
	getString() (string, error)
	getInt() (int64, error)
	getFloat() (float64, error)
	getBool() (bool, error)
	getTime() (time.Time, error)
	getDuration() (time.Duration, error)
	getColor() (color.RGBA, error)
	endRecord() error
}

// maxToken bounds the length of a single binary token so that a corrupt
// length prefix cannot allocate without limit.
const maxToken = 1 << 28

type binaryEncoder struct {
	w   io.Writer
	buf [binary.MaxVarintLen64]byte
}

func (e *binaryEncoder) putBytes(b []byte) error {
	n := binary.PutUvarint(e.buf[:], uint64(len(b)))
	if _, err := e.w.Write(e.buf[:n]); err != nil {
		return err
	}
	_, err := e.w.Write(b)
	return err
}

func (e *binaryEncoder) putString(s string) error {
	n := binary.PutUvarint(e.buf[:], uint64(len(s)))
	if _, err := e.w.Write(e.buf[:n]); err != nil {
		return err
	}
	_, err := io.WriteString(e.w, s)
	return err
}

func (e *binaryEncoder) putInt(v int64) error {
	n := binary.PutVarint(e.buf[:], v)
	_, err := e.w.Write(e.buf[:n])
	return err
}

func (e *binaryEncoder) putFloat(v float64) error {
	binary.LittleEndian.PutUint64(e.buf[:8], math.Float64bits(v))
	_, err := e.w.Write(e.buf[:8])
	return err
}

func (e *binaryEncoder) putBool(v bool) error {
	e.buf[0] = 0
	if v {
		e.buf[0] = 1
	}
	_, err := e.w.Write(e.buf[:1])
	return err
}

func (e *binaryEncoder) putTime(v time.Time) error {
	b, err := v.MarshalBinary()
	if err != nil {
		return err
	}
	return e.putBytes(b)
}

func (e *binaryEncoder) putDuration(v time.Duration) error {
	return e.putInt(int64(v))
}

func (e *binaryEncoder) putColor(v color.RGBA) error {
	_, err := e.w.Write([]byte{v.R, v.G, v.B, v.A})
	return err
}

func (e *binaryEncoder) endRecord() error {
	return nil
}

type binaryDecoder struct {
	r *bufio.Reader
}

// short converts an early end of input inside a record into a FormatError.
func short(what string, err error) error {
	if errors.Is(err, io.EOF) {
		err = io.ErrUnexpectedEOF
	}
	return &FormatError{Msg: "reading " + what, Err: err}
}

func (d *binaryDecoder) bytes(what string) ([]byte, error) {
	n, err := binary.ReadUvarint(d.r)
	if err != nil {
		return nil, short(what, err)
	}
	if n > maxToken {
		return nil, &FormatError{Msg: what + " length " + strconv.FormatUint(n, 10) + " out of range"}
	}
	b := make([]byte, n)
	if _, err := io.ReadFull(d.r, b); err != nil {
		return nil, short(what, err)
	}
	return b, nil
}

func (d *binaryDecoder) tag() (string, error) {
	if _, err := d.r.Peek(1); err != nil {
		if errors.Is(err, io.EOF) {
			return "", io.EOF
		}
		return "", short("tag", err)
	}
	b, err := d.bytes("tag")
	return string(b), err
}

func (d *binaryDecoder) getString() (string, error) {
	b, err := d.bytes("string")
	return string(b), err
}

func (d *binaryDecoder) getInt() (int64, error) {
	v, err := binary.ReadVarint(d.r)
	if err != nil {
		return 0, short("int", err)
	}
	return v, nil
}

func (d *binaryDecoder) getFloat() (float64, error) {
	var b [8]byte
	if _, err := io.ReadFull(d.r, b[:]); err != nil {
		return 0, short("double", err)
	}
	return math.Float64frombits(binary.LittleEndian.Uint64(b[:])), nil
}

func (d *binaryDecoder) getBool() (bool, error) {
	c, err := d.r.ReadByte()
	if err != nil {
		return false, short("bool", err)
	}
	switch c {
	case 0:
		return false, nil
	case 1:
		return true, nil
	}
	return false, &FormatError{Msg: "bad bool byte " + strconv.Itoa(int(c))}
}

func (d *binaryDecoder) getTime() (time.Time, error) {
	var t time.Time
	b, err := d.bytes("datetime")
	if err != nil {
		return t, err
	}
	if err := t.UnmarshalBinary(b); err != nil {
		return t, &FormatError{Msg: "reading datetime", Err: err}
	}
	return t, nil
}

func (d *binaryDecoder) getDuration() (time.Duration, error) {
	v, err := binary.ReadVarint(d.r)
	if err != nil {
		return 0, short("timespan", err)
	}
	return time.Duration(v), nil
}

func (d *binaryDecoder) getColor() (color.RGBA, error) {
	var b [4]byte
	if _, err := io.ReadFull(d.r, b[:]); err != nil {
		return color.RGBA{}, short("color", err)
	}
	return color.RGBA{R: b[0], G: b[1], B: b[2], A: b[3]}, nil
}

func (d *binaryDecoder) endRecord() error {
	return nil
}

const hexDigits = "0123456789abcdef"

// escape writes s so that the result holds only printable bytes and no tab
// or line break. Other control bytes become \xHH.
func escape(w *bufio.Writer, s string) error {
	for i := 0; i < len(s); i++ {
		c := s[i]
		var err error
		switch {
		case c == '\\':
			_, err = w.WriteString(`\\`)
		case c == '\n':
			_, err = w.WriteString(`\n`)
		case c == '\r':
			_, err = w.WriteString(`\r`)
		case c == '\t':
			_, err = w.WriteString(`\t`)
		case !printable(c):
			_, err = w.Write([]byte{'\\', 'x', hexDigits[c>>4], hexDigits[c&0xf]})
		default:
			err = w.WriteByte(c)
		}
		if err != nil {
			return err
		}
	}
	return nil
}

// unescape reverses escape.
func unescape(s string) (string, error) {
	if strings.IndexByte(s, '\\') < 0 {
		return s, nil
	}
	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c != '\\' {
			b.WriteByte(c)
			continue
		}
		i++
		if i >= len(s) {
			return "", errors.New("trailing backslash")
		}
		switch s[i] {
		case '\\':
			b.WriteByte('\\')
		case 'n':
			b.WriteByte('\n')
		case 'r':
			b.WriteByte('\r')
		case 't':
			b.WriteByte('\t')
		case 'x':
			if i+2 >= len(s) {
				return "", errors.New("short \\x escape")
			}
			v, err := strconv.ParseUint(s[i+1:i+3], 16, 8)
			if err != nil {
				return "", errors.New("bad \\x escape " + strconv.Quote(s[i-1:i+3]))
			}
			b.WriteByte(byte(v))
			i += 2
		default:
			return "", errors.New("unknown escape " + strconv.Quote(s[i-1:i+1]))
		}
	}
	return b.String(), nil
}

type textEncoder struct {
	w *bufio.Writer
	// open is whether the current line already has a token.
	open bool
}

func (e *textEncoder) token(s string) error {
	if e.open {
		if err := e.w.WriteByte('\t'); err != nil {
			return err
		}
	}
	e.open = true
	return escape(e.w, s)
}

func (e *textEncoder) putString(s string) error {
	return e.token(s)
}

func (e *textEncoder) putInt(v int64) error {
	return e.token(strconv.FormatInt(v, 10))
}

func (e *textEncoder) putFloat(v float64) error {
	return e.token(strconv.FormatFloat(v, 'g', -1, 64))
}

func (e *textEncoder) putBool(v bool) error {
	return e.token(strconv.FormatBool(v))
}

func (e *textEncoder) putTime(v time.Time) error {
	return e.token(v.Format(time.RFC3339Nano))
}

func (e *textEncoder) putDuration(v time.Duration) error {
	return e.token(strconv.FormatInt(int64(v), 10))
}

func (e *textEncoder) putColor(v color.RGBA) error {
	return e.token(fmt.Sprintf("#%02x%02x%02x%02x", v.R, v.G, v.B, v.A))
}

func (e *textEncoder) endRecord() error {
	e.open = false
	return e.w.WriteByte('\n')
}

type textDecoder struct {
	r    *bufio.Reader
	toks []string
	line int
}

func (d *textDecoder) fail(msg string, err error) error {
	return &FormatError{Msg: msg, Line: d.line, Err: err}
}

// nextLine loads the tokens of the next non-empty line. It returns false at
// the end of the input.
func (d *textDecoder) nextLine() (bool, error) {
	for {
		s, err := d.r.ReadString('\n')
		if err != nil && !(errors.Is(err, io.EOF) && s != "") {
			if errors.Is(err, io.EOF) {
				return false, nil
			}
			return false, err
		}
		d.line++
		s = strings.TrimSuffix(s, "\n")
		s = strings.TrimSuffix(s, "\r")
		if s == "" {
			continue
		}
		d.toks = strings.Split(s, "\t")
		return true, nil
	}
}

func (d *textDecoder) tag() (string, error) {
	if len(d.toks) > 0 {
		return "", d.fail("unterminated record", nil)
	}
	ok, err := d.nextLine()
	if err != nil {
		return "", d.fail("reading tag", err)
	}
	if !ok {
		return "", io.EOF
	}
	return d.token("tag")
}

func (d *textDecoder) token(what string) (string, error) {
	if len(d.toks) == 0 {
		return "", d.fail("missing "+what, io.ErrUnexpectedEOF)
	}
	t := d.toks[0]
	d.toks = d.toks[1:]
	u, err := unescape(t)
	if err != nil {
		return "", d.fail("reading "+what, err)
	}
	return u, nil
}

func (d *textDecoder) getString() (string, error) {
	return d.token("string")
}

func (d *textDecoder) getInt() (int64, error) {
	t, err := d.token("int")
	if err != nil {
		return 0, err
	}
	v, err := strconv.ParseInt(t, 10, 64)
	if err != nil {
		return 0, d.fail("reading int", err)
	}
	return v, nil
}

func (d *textDecoder) getFloat() (float64, error) {
	t, err := d.token("double")
	if err != nil {
		return 0, err
	}
	v, err := strconv.ParseFloat(t, 64)
	if err != nil {
		return 0, d.fail("reading double", err)
	}
	return v, nil
}

func (d *textDecoder) getBool() (bool, error) {
	t, err := d.token("bool")
	if err != nil {
		return false, err
	}
	v, err := strconv.ParseBool(t)
	if err != nil {
		return false, d.fail("reading bool", err)
	}
	return v, nil
}

func (d *textDecoder) getTime() (time.Time, error) {
	t, err := d.token("datetime")
	if err != nil {
		return time.Time{}, err
	}
	v, err := time.Parse(time.RFC3339Nano, t)
	if err != nil {
		return time.Time{}, d.fail("reading datetime", err)
	}
	return v, nil
}

func (d *textDecoder) getDuration() (time.Duration, error) {
	v, err := d.getInt()
	return time.Duration(v), err
}

func (d *textDecoder) getColor() (color.RGBA, error) {
	t, err := d.token("color")
	if err != nil {
		return color.RGBA{}, err
	}
	if len(t) != 9 || t[0] != '#' {
		return color.RGBA{}, d.fail("bad color "+strconv.Quote(t), nil)
	}
	v, err := strconv.ParseUint(t[1:], 16, 32)
	if err != nil {
		return color.RGBA{}, d.fail("bad color "+strconv.Quote(t), err)
	}
	return color.RGBA{R: uint8(v >> 24), G: uint8(v >> 16), B: uint8(v >> 8), A: uint8(v)}, nil
}

func (d *textDecoder) endRecord() error {
	if len(d.toks) > 0 {
		return d.fail("unexpected token "+strconv.Quote(d.toks[0]), nil)
	}
	return nil
}
