package query

import "strings"

// FieldKind classifies how a catalog field is matched and compared.
type FieldKind int

const (
	// FieldUnknown is any field name outside the catalog schema. It
	// parses fine and matches nothing at evaluation time.
	FieldUnknown FieldKind = iota

	// FieldText is a scalar text field (filename, path, format,
	// description).
	FieldText

	// FieldTags is the tag list; a predicate matches if any element
	// matches.
	FieldTags

	// FieldNumeric is a plain numeric field (samplerate, bitdepth,
	// channels).
	FieldNumeric

	// FieldDuration is a duration field; literals resolve to seconds.
	FieldDuration

	// FieldSize is a byte-size field; literals resolve to bytes.
	FieldSize
)

// fieldTable maps every accepted field spelling to its canonical name
// and kind. Aliases mirror the common spellings users reach for.
var fieldTable = map[string]struct {
	name string
	kind FieldKind
}{
	"filename":    {"filename", FieldText},
	"name":        {"filename", FieldText},
	"path":        {"path", FieldText},
	"format":      {"format", FieldText},
	"description": {"description", FieldText},
	"tags":        {"tags", FieldTags},
	"samplerate":  {"samplerate", FieldNumeric},
	"sample_rate": {"samplerate", FieldNumeric},
	"bitdepth":    {"bitdepth", FieldNumeric},
	"bit_depth":   {"bitdepth", FieldNumeric},
	"channels":    {"channels", FieldNumeric},
	"duration":    {"duration", FieldDuration},
	"size":        {"size", FieldSize},
}

// CanonicalField resolves a field name to its canonical spelling and
// kind. Unknown names are returned lowercased with FieldUnknown.
func CanonicalField(name string) (string, FieldKind) {
	lower := strings.ToLower(name)
	if f, ok := fieldTable[lower]; ok {
		return f.name, f.kind
	}
	return lower, FieldUnknown
}
