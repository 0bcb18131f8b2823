// Package transfer converts a checklist to and from its exported JSON file.
//
// Export and Import are pure; files.go binds them to the filesystem.
package transfer

import (
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	jsonschema "github.com/santhosh-tekuri/jsonschema/v5"

	"github.com/Makepad-fr/tada/internal/model"
	"github.com/Makepad-fr/tada/internal/store"
)

//go:embed checklist.schema.json
var shapeSchemaJSON string

// The schema only pins the two top-level fields; items are not inspected.
var shapeSchema = jsonschema.MustCompileString("checklist.schema.json", shapeSchemaJSON)

var (
	// ErrParse matches a FormatError for bytes that are not a readable checklist.
	ErrParse = errors.New("invalid checklist file")
	// ErrShape matches a FormatError for valid JSON without a title or items.
	ErrShape = errors.New("invalid checklist format")
)

// Kind classifies a FormatError.
type Kind int

const (
	KindParse Kind = iota
	KindShape
)

// FormatError is returned by Import.
type FormatError struct {
	Kind Kind
	Path string // JSON path of the offending field, shape errors only
	Err  error
}

func (e *FormatError) Error() string {
	prefix := ErrParse.Error()
	if e.Kind == KindShape {
		prefix = ErrShape.Error()
	}
	if e.Path != "" {
		return fmt.Sprintf("%s: %s: %v", prefix, e.Path, e.Err)
	}
	return fmt.Sprintf("%s: %v", prefix, e.Err)
}

func (e *FormatError) Unwrap() error { return e.Err }

func (e *FormatError) Is(target error) bool {
	switch target {
	case ErrParse:
		return e.Kind == KindParse
	case ErrShape:
		return e.Kind == KindShape
	}
	return false
}

// Export renders c as indented JSON.
func Export(c model.Checklist) ([]byte, error) {
	if c.Items == nil {
		c.Items = []model.Item{}
	}
	b, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("json marshal: %w", err)
	}
	return b, nil
}

var whitespaceRun = regexp.MustCompile(`\s+`)

// FileName names an export of a checklist titled title made at now,
// e.g. "weekly-groceries-1700000000000.json".
func FileName(title string, now time.Time) string {
	slug := strings.ToLower(whitespaceRun.ReplaceAllString(title, "-"))
	return slug + "-" + strconv.FormatInt(now.UnixMilli(), 10) + ".json"
}

// Import parses an exported file. Only the presence of a non-empty title and
// an items array is checked; the result is otherwise taken as-is. A numeric
// lastModified is converted the same way stored data is migrated.
//
// Fields are read by their exact key, so a case variant such as "TITLE" is
// ignored rather than overriding the checked field. Item fields are not part
// of the shape check, but an item field of the wrong type (a string
// "completed", say) fails decoding and is reported as a parse error.
func Import(data []byte) (model.Checklist, error) {
	var doc any
	if err := json.Unmarshal(data, &doc); err != nil {
		return model.Checklist{}, &FormatError{Kind: KindParse, Err: err}
	}
	if err := shapeSchema.Validate(doc); err != nil {
		return model.Checklist{}, shapeError(err)
	}

	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil {
		return model.Checklist{}, &FormatError{Kind: KindParse, Err: err}
	}
	var c model.Checklist
	if err := decodeField(fields, "title", &c.Title); err != nil {
		return model.Checklist{}, err
	}
	if c.Title == "" {
		return model.Checklist{}, &FormatError{Kind: KindShape, Path: "title", Err: errors.New("title is empty")}
	}
	if err := decodeField(fields, "items", &c.Items); err != nil {
		return model.Checklist{}, err
	}
	if err := decodeField(fields, "id", &c.ID); err != nil {
		return model.Checklist{}, err
	}
	lm, err := store.MigrateLastModified(fields["lastModified"])
	if err != nil {
		return model.Checklist{}, &FormatError{Kind: KindParse, Err: err}
	}
	c.LastModified = lm
	if c.Items == nil {
		c.Items = []model.Item{}
	}
	return c, nil
}

// decodeField unmarshals fields[key] into dst. A missing key leaves dst as is.
func decodeField(fields map[string]json.RawMessage, key string, dst any) error {
	raw, ok := fields[key]
	if !ok {
		return nil
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		return &FormatError{Kind: KindParse, Path: key, Err: err}
	}
	return nil
}

// shapeError reduces a schema failure to its first leaf cause.
func shapeError(err error) error {
	var ve *jsonschema.ValidationError
	if !errors.As(err, &ve) {
		return &FormatError{Kind: KindShape, Err: err}
	}
	for len(ve.Causes) > 0 {
		ve = ve.Causes[0]
	}
	return &FormatError{
		Kind: KindShape,
		Path: pointerToPath(ve.InstanceLocation),
		Err:  errors.New(ve.Message),
	}
}

func pointerToPath(ptr string) string {
	ptr = strings.TrimPrefix(strings.TrimPrefix(ptr, "#"), "/")
	if ptr == "" {
		return ""
	}
	parts := strings.Split(ptr, "/")
	for i, p := range parts {
		p = strings.ReplaceAll(p, "~1", "/")
		parts[i] = strings.ReplaceAll(p, "~0", "~")
	}
	return strings.Join(parts, ".")
}
