package rolemap

// Settings persists the install-wide default container path.
type Settings interface {
	DefaultContainerPath() string
	SetDefaultContainerPath(value string)
}

// DefaultPathField is the edit buffer for the default container path.
// Edits stay in memory; the value is persisted only when the field loses
// focus.
type DefaultPathField struct {
	settings Settings
	value    string
	focused  bool
}

// NewDefaultPathField loads the current value once from settings.
func NewDefaultPathField(settings Settings) *DefaultPathField {
	return &DefaultPathField{
		settings: settings,
		value:    settings.DefaultContainerPath(),
	}
}

func (f *DefaultPathField) Value() string {
	return f.value
}

func (f *DefaultPathField) Focused() bool {
	return f.focused
}

func (f *DefaultPathField) Focus() {
	f.focused = true
}

// Edit replaces the in-memory value. The value is not validated.
func (f *DefaultPathField) Edit(value string) {
	f.value = value
}

// Blur ends editing and persists the current value, even if unchanged.
// Blurring an unfocused field does nothing.
func (f *DefaultPathField) Blur() {
	if !f.focused {
		return
	}
	f.focused = false
	f.settings.SetDefaultContainerPath(f.value)
}
