package row

import (
	"fmt"
	"slices"
	"strings"
)

// Schema is the ordered list of field kinds shared by every row of a segment.
type Schema []Kind

// ParseSchema parses a comma separated kind list such as "int32,int64".
func ParseSchema(s string) (Schema, error) {
	if strings.TrimSpace(s) == "" {
		return nil, fmt.Errorf("row: empty schema")
	}
	parts := strings.Split(s, ",")
	schema := make(Schema, len(parts))
	for i, p := range parts {
		k, err := ParseKind(p)
		if err != nil {
			return nil, err
		}
		schema[i] = k
	}
	return schema, nil
}

// Width returns the encoded width of a row with this schema.
func (s Schema) Width() int {
	w := 0
	for _, k := range s {
		w += k.Width()
	}
	return w
}

func (s Schema) String() string {
	names := make([]string, len(s))
	for i, k := range s {
		names[i] = k.String()
	}
	return strings.Join(names, ",")
}

// NewBuilder returns a builder with the schema's arity.
func (s Schema) NewBuilder() *Builder {
	return NewBuilder(len(s))
}

// Matches reports whether r has exactly the kinds of s, in order.
func (s Schema) Matches(r *Row) bool {
	return slices.Equal([]Kind(s), r.Kinds())
}

// ParseRow converts one text value per field into a row.
func (s Schema) ParseRow(values []string) (*Row, error) {
	if len(values) != len(s) {
		return nil, &ArityError{Expected: len(s), Actual: len(values)}
	}
	b := s.NewBuilder()
	for i, v := range values {
		f, err := ParseField(s[i], v)
		if err != nil {
			return nil, fmt.Errorf("field %d: %w", i, err)
		}
		b.AddField(f)
	}
	return b.Build()
}
