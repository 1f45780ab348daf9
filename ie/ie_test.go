package ie_test

import (
	"bytes"
	"errors"
	"image/color"
	"io"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/PavelStransky/expressions/ie"
)

var modes = []ie.Mode{ie.Text, ie.Binary, ie.Compressed, ie.RawBinary}

func export(t *testing.T, mode ie.Mode, vals ...any) []byte {
	t.Helper()
	var buf bytes.Buffer
	e, err := ie.NewExport(&buf, mode)
	require.NoError(t, err)
	for _, v := range vals {
		require.NoError(t, e.Write(v))
	}
	require.NoError(t, e.Close())
	return buf.Bytes()
}

func TestRoundTrip(t *testing.T) {
	when := time.Date(2024, 3, 1, 12, 30, 15, 123456789, time.UTC)
	vals := []any{
		int64(-42),
		3.14,
		"plain",
		"tab\there\nnewline\r\\slash",
		"esc\x1b[0m\x00nul\x7f",
		`\x41 stays literal`,
		"",
		true,
		false,
		when,
		90*time.Minute + 7*time.Nanosecond,
		color.RGBA{R: 1, G: 0x80, B: 0xfe, A: 0xff},
	}
	for _, mode := range modes {
		t.Run(mode.String(), func(t *testing.T) {
			b := export(t, mode, vals...)
			i, err := ie.NewImport(bytes.NewReader(b), nil)
			require.NoError(t, err)
			assert.Equal(t, mode, i.Mode())
			var got []any
			for {
				v, err := i.Read()
				require.NoError(t, err)
				if v == nil {
					break
				}
				got = append(got, v)
			}
			if diff := cmp.Diff(vals, got); diff != "" {
				t.Errorf("round trip mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestParamScenario(t *testing.T) {
	for _, mode := range modes {
		t.Run(mode.String(), func(t *testing.T) {
			var p ie.Param
			p.Add(3.14, "x", "note")
			var buf bytes.Buffer
			e, err := ie.NewExport(&buf, mode)
			require.NoError(t, err)
			require.NoError(t, p.Export(e))
			require.NoError(t, e.Close())

			i, err := ie.NewImport(&buf, nil)
			require.NoError(t, err)
			var p2 ie.Param
			require.NoError(t, p2.Import(i))
			require.Equal(t, 1, p2.Len())
			assert.Equal(t, "x", p2.Item(0).Name)
			assert.Equal(t, "note", p2.Item(0).Comment)
			assert.Equal(t, 3.14, p2.Get(0.0))
		})
	}
}

func TestParamDefaults(t *testing.T) {
	var p ie.Param
	p.Add(int64(1), "a", "").Add("two", "b", "")
	b := func() []byte {
		var buf bytes.Buffer
		e, err := ie.NewExport(&buf, ie.Binary)
		require.NoError(t, err)
		require.NoError(t, p.Export(e))
		require.NoError(t, e.Close())
		return buf.Bytes()
	}()
	i, err := ie.NewImport(bytes.NewReader(b), nil)
	require.NoError(t, err)
	var q ie.Param
	require.NoError(t, q.Import(i))

	a, err := ie.As(&q, 0)
	require.NoError(t, err)
	assert.Equal(t, 1, a)
	s, err := ie.As(&q, "")
	require.NoError(t, err)
	assert.Equal(t, "two", s)
	// A third field appended by newer code is absent from the stream.
	assert.Equal(t, 2.5, q.Get(2.5))
	c, err := ie.As(&q, true)
	require.NoError(t, err)
	assert.True(t, c)
	assert.Equal(t, 0, q.Remaining())

	q.Rewind()
	_, err = ie.As(&q, "wrong")
	var fe *ie.FormatError
	assert.ErrorAs(t, err, &fe)
}

func TestDetect(t *testing.T) {
	cases := []struct {
		name string
		src  []byte
		mode ie.Mode
	}{
		{"empty", nil, ie.Text},
		{"text", []byte("int\t1\n"), ie.Text},
		{"utf8", []byte("string\tžluťoučký\n"), ie.Text},
		{"binary", export(t, ie.Binary, int64(1)), ie.Binary},
		{"compressed", export(t, ie.Compressed, int64(1)), ie.Compressed},
		{"raw", export(t, ie.RawBinary, int64(1)), ie.RawBinary},
		{"control", []byte{'a', 0, 'b'}, ie.RawBinary},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			i, err := ie.NewImport(bytes.NewReader(c.src), nil)
			require.NoError(t, err)
			assert.Equal(t, c.mode, i.Mode())
		})
	}
}

func TestHeader(t *testing.T) {
	var buf bytes.Buffer
	e, err := ie.NewExport(&buf, ie.Compressed, ie.VersionName("test suite"))
	require.NoError(t, err)
	require.NoError(t, e.Write("x"))
	require.NoError(t, e.Close())
	assert.Equal(t, "IEZ1", buf.String()[:4])

	i, err := ie.NewImport(&buf, nil)
	require.NoError(t, err)
	assert.Equal(t, ie.Version, i.Version())
	assert.Equal(t, "test suite", i.VersionName())
}

func TestTextOneRecordPerLine(t *testing.T) {
	b := export(t, ie.Text, "a\nb\tc", int64(7), true)
	lines := strings.Split(strings.TrimSuffix(string(b), "\n"), "\n")
	assert.Equal(t, []string{"string\t" + `a\nb\tc`, "int\t7", "bool\ttrue"}, lines)
}

func TestTextControlBytes(t *testing.T) {
	b := export(t, ie.Text, "esc\x1b\x00")
	assert.Equal(t, "string\t"+`esc\x1b\x00`+"\n", string(b))
	i, err := ie.NewImport(bytes.NewReader(b), nil)
	require.NoError(t, err)
	assert.Equal(t, ie.Text, i.Mode())
}

func TestEndOfInput(t *testing.T) {
	for _, mode := range modes {
		t.Run(mode.String(), func(t *testing.T) {
			b := export(t, mode)
			i, err := ie.NewImport(bytes.NewReader(b), nil)
			require.NoError(t, err)
			v, err := i.Read()
			assert.NoError(t, err)
			assert.Nil(t, v)
		})
	}
}

func TestTruncatedRecord(t *testing.T) {
	b := export(t, ie.RawBinary, 3.5)
	i, err := ie.NewImport(bytes.NewReader(b[:len(b)-3]), nil)
	require.NoError(t, err)
	_, err = i.Read()
	var fe *ie.FormatError
	require.ErrorAs(t, err, &fe)
	assert.True(t, errors.Is(err, io.ErrUnexpectedEOF))

	i, err = ie.NewImport(strings.NewReader("double\n"), nil)
	require.NoError(t, err)
	_, err = i.Read()
	require.ErrorAs(t, err, &fe)
	assert.Equal(t, "line 1", fe.Detail())
}

func TestMalformedText(t *testing.T) {
	cases := []struct {
		name string
		src  string
	}{
		{"bad-int", "int\tx\n"},
		{"bad-bool", "bool\tmaybe\n"},
		{"extra", "int\t1\t2\n"},
		{"bad-color", "color\tred\n"},
		{"bad-time", "datetime\tyesterday\n"},
		{"unknown-escape", "string\ta\\qb\n"},
		{"short-hex-escape", "string\ta\\x4\n"},
		{"bad-hex-escape", "string\t\\xzz\n"},
		{"trailing-backslash", "string\tab\\\n"},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			i, err := ie.NewImport(strings.NewReader(c.src), nil)
			require.NoError(t, err)
			_, err = i.Read()
			var fe *ie.FormatError
			assert.ErrorAs(t, err, &fe)
		})
	}
}

// pair is an object with two nested values.
type pair struct {
	a, b any
}

func (*pair) Tag() string { return "pair" }

func (p *pair) Export(e *ie.Export) error {
	var q ie.Param
	q.Add(p.a, "a", "first").Add(p.b, "b", "second")
	return q.Export(e)
}

func (p *pair) Import(i *ie.Import) error {
	var q ie.Param
	if err := q.Import(i); err != nil {
		return err
	}
	p.a = q.Get(nil)
	p.b = q.Get(nil)
	return nil
}

func TestObjects(t *testing.T) {
	reg := ie.NewRegistry(nil).Register("pair", 1, func() ie.Object { return new(pair) })
	child := ie.NewRegistry(reg)
	want := &pair{a: &pair{a: int64(1), b: "x"}, b: 2.0}
	for _, mode := range modes {
		t.Run(mode.String(), func(t *testing.T) {
			b := export(t, mode, want, "after")
			i, err := ie.NewImport(bytes.NewReader(b), child)
			require.NoError(t, err)
			v, err := i.Read()
			require.NoError(t, err)
			if diff := cmp.Diff(want, v, cmp.AllowUnexported(pair{})); diff != "" {
				t.Errorf("object mismatch (-want +got):\n%s", diff)
			}
			v, err = i.Read()
			require.NoError(t, err)
			assert.Equal(t, "after", v)
		})
	}
}

func TestUnknownTag(t *testing.T) {
	b := export(t, ie.Text, &pair{a: int64(1), b: int64(2)})
	i, err := ie.NewImport(bytes.NewReader(b), ie.NewRegistry(nil))
	require.NoError(t, err)
	_, err = i.Read()
	var te *ie.TagError
	require.ErrorAs(t, err, &te)
	assert.Equal(t, "pair", te.Tag)
}

func TestVersionGate(t *testing.T) {
	reg := ie.NewRegistry(nil).Register("pair", ie.Version+1, func() ie.Object { return new(pair) })
	b := export(t, ie.Binary, &pair{a: int64(1), b: int64(2)})
	i, err := ie.NewImport(bytes.NewReader(b), reg)
	require.NoError(t, err)
	_, err = i.Read()
	var ve *ie.VersionError
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, ie.Version, ve.Version)
}

func TestRegisterTwice(t *testing.T) {
	reg := ie.NewRegistry(nil).Register("pair", 1, func() ie.Object { return new(pair) })
	assert.Panics(t, func() { reg.Register("pair", 1, func() ie.Object { return new(pair) }) })
	assert.Panics(t, func() { reg.Register("int", 1, func() ie.Object { return new(pair) }) })
	assert.Equal(t, []string{"pair"}, reg.Tags())
}

func TestUnsupportedValue(t *testing.T) {
	e, err := ie.NewExport(io.Discard, ie.Text)
	require.NoError(t, err)
	var te *ie.TypeError
	assert.ErrorAs(t, e.Write(struct{}{}), &te)
	assert.ErrorAs(t, e.Write(nil), &te)
}

func TestFiles(t *testing.T) {
	path := filepath.Join(t.TempDir(), "data.ie")
	e, err := ie.Create(path, ie.Compressed)
	require.NoError(t, err)
	require.NoError(t, e.Write("hello"))
	require.NoError(t, e.Close())

	i, err := ie.Open(path, nil)
	require.NoError(t, err)
	defer i.Close()
	v, err := i.Read()
	require.NoError(t, err)
	assert.Equal(t, "hello", v)
}

func TestParseMode(t *testing.T) {
	for _, mode := range modes {
		m, err := ie.ParseMode(strings.ToUpper(mode.String()))
		require.NoError(t, err)
		assert.Equal(t, mode, m)
	}
	_, err := ie.ParseMode("zip")
	assert.Error(t, err)
}
