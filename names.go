package fainder

// Index types understood by the search backend.
const (
	IndexRebinning  = "rebinning"
	IndexConversion = "conversion"
)

// KnownIndexTypes lists every index type in the order the backend documents them.
var KnownIndexTypes = []string{IndexRebinning, IndexConversion}

// Output formats.
const (
	FormatText = "text"
	FormatJSON = "json"
	FormatYAML = "yaml"
)

// QueryFileExtension is the extension of files holding one query per line.
const QueryFileExtension = "fq"

// ValidIndexType reports whether name is a known index type.
func ValidIndexType(name string) bool {
	for _, t := range KnownIndexTypes {
		if t == name {
			return true
		}
	}

	return false
}
