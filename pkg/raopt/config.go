package raopt

// Config configures the delimiter and escape characters the attribute
// helpers use to serialize/deserialize AttributeList and Condition payloads.
type Config struct {
	// Delimiter separates attribute names within an AttributeList payload.
	// Defaults to ";" when empty.
	Delimiter string
	// Escape brackets attribute names referenced by a Condition payload.
	// Defaults to "`" when empty.
	Escape string
}

const (
	defaultDelimiter = ";"
	defaultEscape    = "`"
)

func (c Config) delimiter() string {
	if c.Delimiter == "" {
		return defaultDelimiter
	}
	return c.Delimiter
}

func (c Config) escape() string {
	if c.Escape == "" {
		return defaultEscape
	}
	return c.Escape
}
