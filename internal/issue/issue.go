// Package issue defines the persisted issue record and its codec.
//
// An issue is one self-contained JSON document. The store manages a small set
// of typed fields (id, schema_version, severity, timestamps); every other
// field is opaque payload carried through encode/decode unchanged, so callers
// can attach data this revision knows nothing about without losing it on the
// next write.
package issue

import (
	"bytes"
	"encoding/json"
	"fmt"
	"time"
)

// SchemaVersion is the single document version this store revision
// understands. Documents carrying any other version fail to decode;
// migration is out of scope.
const SchemaVersion = "v1"

// Valid issue types.
const (
	TypeBug     = "bug"
	TypeFeature = "feature"
	TypeChore   = "chore"
	TypeUnknown = "unknown"
)

//nolint:gochecknoglobals // package-level constant
var validTypes = []string{TypeBug, TypeFeature, TypeChore, TypeUnknown}

// Issue is the unit of persisted data: one bug report stored as one file.
type Issue struct {
	ID            string
	SchemaVersion string
	Title         string
	Description   string
	Severity      Severity
	Type          string
	Tags          []string
	CreatedAt     time.Time
	UpdatedAt     time.Time

	// Extra holds payload fields this revision does not interpret.
	// Preserved byte-for-byte across encode/decode.
	Extra map[string]json.RawMessage
}

// knownKeys are the document keys owned by the store. Everything else lands
// in Extra.
//
//nolint:gochecknoglobals // package-level constant
var knownKeys = map[string]bool{
	"id":             true,
	"schema_version": true,
	"title":          true,
	"description":    true,
	"severity":       true,
	"type":           true,
	"tags":           true,
	"created_at":     true,
	"updated_at":     true,
}

// Encode serializes rec as a pretty-printed JSON document. Key order is
// deterministic (sorted), so identical records produce identical bytes.
func Encode(rec Issue) ([]byte, error) {
	if rec.SchemaVersion != "" && rec.SchemaVersion != SchemaVersion {
		return nil, fmt.Errorf("%w: cannot encode schema_version %q (this revision writes %q)",
			ErrValidation, rec.SchemaVersion, SchemaVersion)
	}

	doc := make(map[string]json.RawMessage, len(rec.Extra)+len(knownKeys))

	for key, raw := range rec.Extra {
		doc[key] = raw
	}

	put := func(key string, value any) error {
		raw, err := json.Marshal(value)
		if err != nil {
			return fmt.Errorf("encoding field %s: %w", key, err)
		}

		doc[key] = raw

		return nil
	}

	fields := []struct {
		key   string
		value any
	}{
		{"id", rec.ID},
		{"schema_version", SchemaVersion},
		{"title", rec.Title},
		{"description", rec.Description},
		{"severity", rec.Severity},
		{"type", rec.Type},
	}

	for _, f := range fields {
		if err := put(f.key, f.value); err != nil {
			return nil, err
		}
	}

	if len(rec.Tags) > 0 {
		if err := put("tags", rec.Tags); err != nil {
			return nil, err
		}
	}

	if !rec.CreatedAt.IsZero() {
		if err := put("created_at", rec.CreatedAt.Format(time.RFC3339Nano)); err != nil {
			return nil, err
		}
	}

	if !rec.UpdatedAt.IsZero() {
		if err := put("updated_at", rec.UpdatedAt.Format(time.RFC3339Nano)); err != nil {
			return nil, err
		}
	}

	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encoding issue: %w", err)
	}

	return append(data, '\n'), nil
}

// Decode parses a JSON issue document. It validates structural
// well-formedness only: the container must parse, schema_version must be
// present and supported, and typed fields must have their declared types.
// Semantic completeness (required title and so on) is the validation stage's
// job, not the codec's.
//
// All failures wrap [ErrDecode] so callers can distinguish a corrupt file
// from a missing one.
func Decode(data []byte) (Issue, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return Issue{}, fmt.Errorf("%w: empty document", ErrDecode)
	}

	var doc map[string]json.RawMessage

	unmarshalErr := json.Unmarshal(data, &doc)
	if unmarshalErr != nil {
		return Issue{}, fmt.Errorf("%w: %w", ErrDecode, unmarshalErr)
	}

	if doc == nil {
		return Issue{}, fmt.Errorf("%w: document is not an object", ErrDecode)
	}

	versionRaw, hasVersion := doc["schema_version"]
	if !hasVersion {
		return Issue{}, fmt.Errorf("%w: missing schema_version", ErrDecode)
	}

	var version string

	versionErr := json.Unmarshal(versionRaw, &version)
	if versionErr != nil {
		return Issue{}, fmt.Errorf("%w: schema_version: %w", ErrDecode, versionErr)
	}

	if version != SchemaVersion {
		return Issue{}, fmt.Errorf("%w: unsupported schema_version %q (want %q)", ErrDecode, version, SchemaVersion)
	}

	rec := Issue{SchemaVersion: version}

	str := func(key string, dst *string) error {
		raw, ok := doc[key]
		if !ok {
			return nil
		}

		if err := json.Unmarshal(raw, dst); err != nil {
			return fmt.Errorf("%w: %s: %w", ErrDecode, key, err)
		}

		return nil
	}

	var severity string

	for _, field := range []struct {
		key string
		dst *string
	}{
		{"id", &rec.ID},
		{"title", &rec.Title},
		{"description", &rec.Description},
		{"severity", &severity},
		{"type", &rec.Type},
	} {
		if err := str(field.key, field.dst); err != nil {
			return Issue{}, err
		}
	}

	rec.Severity = Severity(severity)

	if raw, ok := doc["tags"]; ok {
		if err := json.Unmarshal(raw, &rec.Tags); err != nil {
			return Issue{}, fmt.Errorf("%w: tags: %w", ErrDecode, err)
		}
	}

	createdAt, createdErr := decodeTime(doc, "created_at")
	if createdErr != nil {
		return Issue{}, createdErr
	}

	rec.CreatedAt = createdAt

	updatedAt, updatedErr := decodeTime(doc, "updated_at")
	if updatedErr != nil {
		return Issue{}, updatedErr
	}

	rec.UpdatedAt = updatedAt

	for key, raw := range doc {
		if knownKeys[key] {
			continue
		}

		if rec.Extra == nil {
			rec.Extra = make(map[string]json.RawMessage)
		}

		rec.Extra[key] = append(json.RawMessage(nil), raw...)
	}

	return rec, nil
}

func decodeTime(doc map[string]json.RawMessage, key string) (time.Time, error) {
	raw, ok := doc[key]
	if !ok {
		return time.Time{}, nil
	}

	var value string

	if err := json.Unmarshal(raw, &value); err != nil {
		return time.Time{}, fmt.Errorf("%w: %s: %w", ErrDecode, key, err)
	}

	parsed, parseErr := time.Parse(time.RFC3339Nano, value)
	if parseErr != nil {
		return time.Time{}, fmt.Errorf("%w: %s %q: %w", ErrDecode, key, value, parseErr)
	}

	return parsed, nil
}
