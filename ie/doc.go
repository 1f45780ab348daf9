// Package ie implements the record stream that values and objects persist
// through.
//
// A stream is a flat, forward-only sequence of records. Each record starts
// with a type tag. Built-in tags (int, double, string, bool, datetime,
// timespan, color) are followed directly by their payload. Any other tag
// names an object: a Factory constructs an empty instance, which then pulls
// its own fields from the same stream, usually through a nested Param block.
// Object graphs are therefore trees expressed by nesting order; there are no
// back-references.
//
// Streams come in three flavors. Binary and Compressed streams begin with a
// four byte magic, a version number and a version name; Compressed streams
// deflate everything after the header. Text streams have no header and hold
// one record per line. A reader picks the flavor by looking at the first
// bytes of the stream.
//
// Param is a positional block. Fields must be read in the order they were
// written, and new fields may only ever be appended: a reader expecting more
// fields than a stream holds gets the defaults it asks for.
package ie
