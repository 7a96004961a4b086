package models

// PolicyUpdate toggles the required-field gates. All three flags travel
// together; the UI always knows the full state.
type PolicyUpdate struct {
	DNI     bool `json:"dni"`
	Celular bool `json:"celular"`
	Codigo  bool `json:"codigo"`
}
