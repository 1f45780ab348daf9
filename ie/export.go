package ie

import (
	"bufio"
	"compress/flate"
	"encoding/binary"
	"errors"
	"fmt"
	"image/color"
	"io"
	"os"
	"time"
)

// Export writes records to a stream. An Export must be closed to flush it.
type Export struct {
	mode  Mode
	name  string
	level int

	w   *bufio.Writer
	zw  *flate.Writer
	c   io.Closer
	enc encoder
}

// ExportOption is an option used when creating an Export.
type ExportOption interface {
	exportOption(*Export)
}

type (
	nameopt  string
	levelopt int
)

func (o nameopt) exportOption(e *Export)  { e.name = string(o) }
func (o levelopt) exportOption(e *Export) { e.level = int(o) }

// VersionName sets the version name written into the stream header. It has no
// effect on text and raw streams.
func VersionName(name string) ExportOption {
	return nameopt(name)
}

// CompressionLevel sets the deflate level of Compressed streams. The default
// is flate.DefaultCompression.
func CompressionLevel(level int) ExportOption {
	return levelopt(level)
}

// NewExport creates an Export writing to w in the given mode. Binary and
// Compressed streams get their header immediately.
func NewExport(w io.Writer, mode Mode, opts ...ExportOption) (*Export, error) {
	e := &Export{
		mode:  mode,
		name:  DefaultVersionName,
		level: flate.DefaultCompression,
		w:     bufio.NewWriter(w),
	}
	for _, opt := range opts {
		if opt != nil {
			opt.exportOption(e)
		}
	}
	switch mode {
	case Text:
		e.enc = &textEncoder{w: e.w}
	case Binary, Compressed:
		if err := e.header(); err != nil {
			return nil, err
		}
		if mode == Binary {
			e.enc = &binaryEncoder{w: e.w}
			break
		}
		zw, err := flate.NewWriter(e.w, e.level)
		if err != nil {
			return nil, err
		}
		e.zw = zw
		e.enc = &binaryEncoder{w: zw}
	case RawBinary:
		e.enc = &binaryEncoder{w: e.w}
	default:
		return nil, errors.New("ie: invalid mode " + mode.String())
	}
	return e, nil
}

// Create creates or truncates the named file and returns an Export writing to
// it. Closing the Export closes the file.
func Create(path string, mode Mode, opts ...ExportOption) (*Export, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, err
	}
	e, err := NewExport(f, mode, opts...)
	if err != nil {
		f.Close()
		return nil, err
	}
	e.c = f
	return e, nil
}

func (e *Export) header() error {
	magic := magicBinary
	if e.mode == Compressed {
		magic = magicCompressed
	}
	var buf [binary.MaxVarintLen64]byte
	if _, err := e.w.Write(magic[:]); err != nil {
		return err
	}
	binary.LittleEndian.PutUint32(buf[:4], uint32(int32(Version)))
	if _, err := e.w.Write(buf[:4]); err != nil {
		return err
	}
	n := binary.PutUvarint(buf[:], uint64(len(e.name)))
	if _, err := e.w.Write(buf[:n]); err != nil {
		return err
	}
	_, err := e.w.WriteString(e.name)
	return err
}

// Mode returns the mode of the stream.
func (e *Export) Mode() Mode {
	return e.mode
}

// Write writes one record. Supported values are int, int64, float64, string,
// bool, time.Time, time.Duration, color.RGBA and Object.
func (e *Export) Write(v any) error {
	var err error
	switch v := v.(type) {
	case int:
		err = e.scalar(TagInt, func() error { return e.enc.putInt(int64(v)) })
	case int64:
		err = e.scalar(TagInt, func() error { return e.enc.putInt(v) })
	case float64:
		err = e.scalar(TagDouble, func() error { return e.enc.putFloat(v) })
	case string:
		err = e.scalar(TagString, func() error { return e.enc.putString(v) })
	case bool:
		err = e.scalar(TagBool, func() error { return e.enc.putBool(v) })
	case time.Time:
		err = e.scalar(TagDateTime, func() error { return e.enc.putTime(v) })
	case time.Duration:
		err = e.scalar(TagTimeSpan, func() error { return e.enc.putDuration(v) })
	case color.RGBA:
		err = e.scalar(TagColor, func() error { return e.enc.putColor(v) })
	case Object:
		if err = e.scalar(v.Tag(), nil); err != nil {
			return err
		}
		err = v.Export(e)
	default:
		return &TypeError{Type: fmt.Sprintf("%T", v)}
	}
	return err
}

// scalar writes a complete record of a tag and an optional payload.
func (e *Export) scalar(tag string, payload func() error) error {
	if err := e.enc.putString(tag); err != nil {
		return err
	}
	if payload != nil {
		if err := payload(); err != nil {
			return err
		}
	}
	return e.enc.endRecord()
}

// Close flushes the stream and closes the file opened by Create, if any.
func (e *Export) Close() error {
	var errs []error
	if e.zw != nil {
		errs = append(errs, e.zw.Close())
		e.zw = nil
	}
	errs = append(errs, e.w.Flush())
	if e.c != nil {
		errs = append(errs, e.c.Close())
		e.c = nil
	}
	return errors.Join(errs...)
}
