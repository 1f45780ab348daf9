package ie

import "strconv"

// TagError is an error indicating a record tag that no factory in the chain
// knows how to construct.
type TagError struct {
	// Tag is the unrecognized tag.
	Tag string
}

func (err *TagError) Error() string {
	return "ie: unknown type tag " + strconv.Quote(err.Tag)
}

// VersionError is an error indicating an object tag that did not exist yet
// in the format version of the stream being read.
type VersionError struct {
	Tag string
	// Since is the first format version knowing Tag.
	Since int
	// Version is the version of the stream.
	Version int
}

func (err *VersionError) Error() string {
	return "ie: tag " + strconv.Quote(err.Tag) + " requires format version " +
		strconv.Itoa(err.Since) + ", stream has version " + strconv.Itoa(err.Version)
}

// FormatError is an error indicating a structural problem in a stream.
type FormatError struct {
	// Msg describes the problem.
	Msg string
	// Line is the line of a text stream where the problem was found, or 0.
	Line int
	// Err is the underlying error, if any.
	Err error
}

func (err *FormatError) Error() string {
	s := "ie: malformed stream: " + err.Msg
	if err.Err != nil {
		s += ": " + err.Err.Error()
	}
	return s
}

// Detail returns the position of the problem, if known.
func (err *FormatError) Detail() string {
	if err.Line == 0 {
		return ""
	}
	return "line " + strconv.Itoa(err.Line)
}

func (err *FormatError) Unwrap() error {
	return err.Err
}

// TypeError is an error indicating a Go value that has no record encoding.
type TypeError struct {
	// Type is the name of the Go type.
	Type string
}

func (err *TypeError) Error() string {
	return "ie: cannot export value of type " + err.Type
}
