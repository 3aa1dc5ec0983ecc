package preset

import "errors"

// DefaultKey is the backend key the reply presets live under.
const DefaultKey = "watchPresetSettings"

// Set maps a field identifier to its custom reply text. An identifier that is
// absent means "no override, show the placeholder"; it is never stored with
// an empty value.
type Set map[string]string

// Clone returns an independent copy. A nil Set clones to an empty one.
func (s Set) Clone() Set {
	out := make(Set, len(s))
	for k, v := range s {
		out[k] = v
	}
	return out
}

// Equal reports whether both sets hold the same overrides.
func (s Set) Equal(other Set) bool {
	if len(s) != len(other) {
		return false
	}
	for k, v := range s {
		if ov, ok := other[k]; !ok || ov != v {
			return false
		}
	}
	return true
}

// Field is one editable preset slot.
type Field struct {
	ID          string `json:"id" toml:"id" yaml:"id"`
	Placeholder string `json:"placeholder" toml:"placeholder" yaml:"placeholder"`
}

// DefaultFields is the fixed list of quick replies offered on the watch.
var DefaultFields = []Field{
	{ID: "OK", Placeholder: "OK"},
	{ID: "Thanks", Placeholder: "Thanks"},
	{ID: "WhatsUp", Placeholder: "What's up?"},
	{ID: "TalkLater", Placeholder: "Talk later?"},
	{ID: "CantTalk", Placeholder: "Can't talk now..."},
	{ID: "HoldOn", Placeholder: "Hold on a sec..."},
	{ID: "BRB", Placeholder: "Be right back."},
	{ID: "OnMyWay", Placeholder: "I'm on my way."},
}

// Row is what a list renderer draws for one field.
type Row struct {
	ID    string `json:"id"`
	Label string `json:"label"`
	Value string `json:"value"`
}

var (
	// ErrUnavailable is returned when the backend cannot be read or written.
	ErrUnavailable = errors.New("preset store unavailable")
	// ErrUnknownField is returned for identifiers outside the field list.
	ErrUnknownField = errors.New("unknown preset field")
)

// Rows maps set onto fields in field order. Fields without an override get
// an empty Value so the renderer falls back to Label.
func Rows(set Set, fields []Field) []Row {
	rows := make([]Row, 0, len(fields))
	for _, f := range fields {
		rows = append(rows, Row{ID: f.ID, Label: f.Placeholder, Value: set[f.ID]})
	}
	return rows
}

// Apply returns a copy of set with the edit applied: non-empty text replaces
// the override for id, empty text removes it. set itself is not modified.
func Apply(set Set, id, text string) Set {
	out := set.Clone()
	if text != "" {
		out[id] = text
	} else {
		delete(out, id)
	}
	return out
}

// HasField reports whether id is one of fields.
func HasField(fields []Field, id string) bool {
	for _, f := range fields {
		if f.ID == id {
			return true
		}
	}
	return false
}
