package ie

import (
	"sort"
	"strconv"
)

// Object is a value that persists itself as a tagged record followed by its
// own fields.
type Object interface {
	// Tag returns the record tag identifying the object's type. The tag is
	// part of the file format and must not change.
	Tag() string
	// Export writes the object's fields.
	Export(e *Export) error
	// Import reads the object's fields in the order Export wrote them.
	Import(i *Import) error
}

// Factory constructs empty objects for record tags. version is the format
// version of the stream being read.
type Factory interface {
	CreateObject(tag string, version int) (Object, error)
}

// FactoryFunc adapts a function to a Factory.
type FactoryFunc func(tag string, version int) (Object, error)

// CreateObject calls f.
func (f FactoryFunc) CreateObject(tag string, version int) (Object, error) {
	return f(tag, version)
}

// Base is the end of every factory chain. It knows no object tags.
var Base Factory = FactoryFunc(func(tag string, version int) (Object, error) {
	return nil, &TagError{Tag: tag}
})

// Registry is a versioned mapping from tags to constructors. Tags a registry
// does not know fall through to its parent, so each subsystem can extend the
// chain with its own types.
type Registry struct {
	parent Factory
	ctors  map[string]registration
}

type registration struct {
	since int
	ctor  func() Object
}

// NewRegistry creates a registry that falls back to parent. A nil parent
// means Base.
func NewRegistry(parent Factory) *Registry {
	if parent == nil {
		parent = Base
	}
	return &Registry{parent: parent, ctors: make(map[string]registration)}
}

// Register adds a constructor for tag, available in streams of format version
// since and later. Registering a tag twice or a built-in tag panics.
func (r *Registry) Register(tag string, since int, ctor func() Object) *Registry {
	if builtin(tag) {
		panic("ie: cannot register built-in tag " + strconv.Quote(tag))
	}
	if _, ok := r.ctors[tag]; ok {
		panic("ie: tag " + strconv.Quote(tag) + " registered twice")
	}
	r.ctors[tag] = registration{since: since, ctor: ctor}
	return r
}

// CreateObject constructs an empty object for tag.
func (r *Registry) CreateObject(tag string, version int) (Object, error) {
	reg, ok := r.ctors[tag]
	if !ok {
		return r.parent.CreateObject(tag, version)
	}
	if version < reg.since {
		return nil, &VersionError{Tag: tag, Since: reg.since, Version: version}
	}
	return reg.ctor(), nil
}

// Tags returns the tags registered directly in r, sorted.
func (r *Registry) Tags() []string {
	tags := make([]string, 0, len(r.ctors))
	for t := range r.ctors {
		tags = append(tags, t)
	}
	sort.Strings(tags)
	return tags
}

// Built-in record tags.
const (
	TagInt      = "int"
	TagDouble   = "double"
	TagString   = "string"
	TagBool     = "bool"
	TagDateTime = "datetime"
	TagTimeSpan = "timespan"
	TagColor    = "color"
)

func builtin(tag string) bool {
	switch tag {
	case TagInt, TagDouble, "real", TagString, TagBool, TagDateTime, TagTimeSpan, TagColor:
		return true
	}
	return false
}
