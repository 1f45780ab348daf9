package ie

import (
	"bufio"
	"compress/flate"
	"encoding/binary"
	"errors"
	"io"
	"os"
)

// Import reads records from a stream. It is a forward-only cursor: records
// come back in the order they were written.
type Import struct {
	mode    Mode
	version int
	name    string
	factory Factory

	dec decoder
	zr  io.ReadCloser
	c   io.Closer
}

// NewImport creates an Import reading from r. The stream mode is detected
// from its first bytes. Object tags are resolved through f; a nil f means
// Base.
func NewImport(r io.Reader, f Factory) (*Import, error) {
	if f == nil {
		f = Base
	}
	br := bufio.NewReader(r)
	mode, err := detect(br)
	if err != nil {
		return nil, err
	}
	i := &Import{mode: mode, version: Version, factory: f}
	switch mode {
	case Text:
		i.dec = &textDecoder{r: br}
	case RawBinary:
		i.dec = &binaryDecoder{r: br}
	case Binary, Compressed:
		if err := i.header(br); err != nil {
			return nil, err
		}
		if mode == Binary {
			i.dec = &binaryDecoder{r: br}
			break
		}
		i.zr = flate.NewReader(br)
		i.dec = &binaryDecoder{r: bufio.NewReader(i.zr)}
	}
	return i, nil
}

// Open opens the named file and returns an Import reading from it. Closing
// the Import closes the file.
func Open(path string, f Factory) (*Import, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	i, err := NewImport(file, f)
	if err != nil {
		file.Close()
		return nil, err
	}
	i.c = file
	return i, nil
}

func (i *Import) header(br *bufio.Reader) error {
	var buf [4]byte
	if _, err := io.ReadFull(br, buf[:]); err != nil {
		return short("magic", err)
	}
	if _, err := io.ReadFull(br, buf[:]); err != nil {
		return short("version", err)
	}
	i.version = int(int32(binary.LittleEndian.Uint32(buf[:])))
	n, err := binary.ReadUvarint(br)
	if err != nil {
		return short("version name", err)
	}
	if n > maxToken {
		return &FormatError{Msg: "version name out of range"}
	}
	name := make([]byte, n)
	if _, err := io.ReadFull(br, name); err != nil {
		return short("version name", err)
	}
	i.name = string(name)
	return nil
}

// Mode returns the detected mode of the stream.
func (i *Import) Mode() Mode {
	return i.mode
}

// Version returns the format version of the stream.
func (i *Import) Version() int {
	return i.version
}

// VersionName returns the version name from the stream header, or the empty
// string for streams without a header.
func (i *Import) VersionName() string {
	return i.name
}

// Read reads the next record. Built-in tags come back as int64, float64,
// string, bool, time.Time, time.Duration or color.RGBA; object tags are
// constructed through the factory chain and then import their own fields.
//
// When the stream ends where a record should begin, the result is nil with
// no error: running out of records is the end of the input, not a failure.
func (i *Import) Read() (any, error) {
	tag, err := i.dec.tag()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, nil
		}
		return nil, err
	}
	var v any
	switch tag {
	case TagInt:
		v, err = i.dec.getInt()
	case TagDouble, "real":
		v, err = i.dec.getFloat()
	case TagString:
		v, err = i.dec.getString()
	case TagBool:
		v, err = i.dec.getBool()
	case TagDateTime:
		v, err = i.dec.getTime()
	case TagTimeSpan:
		v, err = i.dec.getDuration()
	case TagColor:
		v, err = i.dec.getColor()
	default:
		obj, err := i.factory.CreateObject(tag, i.version)
		if err != nil {
			return nil, err
		}
		if err := i.dec.endRecord(); err != nil {
			return nil, err
		}
		if err := obj.Import(i); err != nil {
			return nil, err
		}
		return obj, nil
	}
	if err != nil {
		return nil, err
	}
	if err := i.dec.endRecord(); err != nil {
		return nil, err
	}
	return v, nil
}

// Close releases the stream and closes the file opened by Open, if any.
func (i *Import) Close() error {
	var errs []error
	if i.zr != nil {
		errs = append(errs, i.zr.Close())
		i.zr = nil
	}
	if i.c != nil {
		errs = append(errs, i.c.Close())
		i.c = nil
	}
	return errors.Join(errs...)
}
