package form

// Status is the validity decoration of a field.
type Status int

const (
	Pristine Status = iota
	Valid
	Invalid
)

func (s Status) String() string {
	switch s {
	case Valid:
		return "valid"
	case Invalid:
		return "invalid"
	}
	return "pristine"
}

// CSS classes applied by the renderer.
const (
	ClassValid     = "is-valid"
	ClassInvalid   = "is-invalid"
	ClassValidated = "was-validated"
)

type FieldState struct {
	Value   string
	Message string
	Status  Status
}

// State is the view-model of one form. It is treated as a value: reducers return a new State.
type State struct {
	Form      string
	Fields    map[string]FieldState
	Validated bool
}

func NewState(d Descriptor) State {
	fields := make(map[string]FieldState, len(d.Fields))
	for _, f := range d.Fields {
		fields[f.ID] = FieldState{}
	}
	return State{Form: d.Name, Fields: fields}
}

func (s State) clone() State {
	fields := make(map[string]FieldState, len(s.Fields))
	for id, fs := range s.Fields {
		fields[id] = fs
	}
	s.Fields = fields
	return s
}

func (s State) field(id string) (FieldState, error) {
	fs, ok := s.Fields[id]
	if !ok {
		return FieldState{}, &MissingFieldError{Form: s.Form, ID: id}
	}
	return fs, nil
}

// ShowError marks the field invalid with msg, replacing any message already shown.
func (s State) ShowError(id, msg string) (State, error) {
	fs, err := s.field(id)
	if err != nil {
		return s, err
	}
	s = s.clone()
	fs.Message = msg
	fs.Status = Invalid
	s.Fields[id] = fs
	return s, nil
}

// ClearError removes the message and marks the field valid.
func (s State) ClearError(id string) (State, error) {
	fs, err := s.field(id)
	if err != nil {
		return s, err
	}
	s = s.clone()
	fs.Message = ""
	fs.Status = Valid
	s.Fields[id] = fs
	return s, nil
}

// Valid reports whether no field is currently marked invalid.
func (s State) Valid() bool {
	for _, fs := range s.Fields {
		if fs.Status == Invalid {
			return false
		}
	}
	return true
}

// Errors returns the shown messages by field ID.
func (s State) Errors() map[string]string {
	errs := make(map[string]string)
	for id, fs := range s.Fields {
		if fs.Status == Invalid {
			errs[id] = fs.Message
		}
	}
	return errs
}

func (s State) Values() map[string]string {
	values := make(map[string]string, len(s.Fields))
	for id, fs := range s.Fields {
		values[id] = fs.Value
	}
	return values
}

type FieldView struct {
	ID       string   `json:"id"`
	Label    string   `json:"label"`
	Kind     Kind     `json:"kind"`
	Required bool     `json:"required"`
	Value    string   `json:"value"`
	Classes  []string `json:"classes"`
	Feedback string   `json:"feedback,omitempty"`
}

type View struct {
	Form    string      `json:"form"`
	Classes []string    `json:"classes"`
	Fields  []FieldView `json:"fields"`
}

// Render derives the view from the descriptor and state. Rendering the same state twice yields the same view.
func Render(d Descriptor, s State) View {
	v := View{Form: d.Name, Classes: []string{}, Fields: make([]FieldView, 0, len(d.Fields))}
	if s.Validated {
		v.Classes = append(v.Classes, ClassValidated)
	}
	for _, f := range d.Fields {
		fs := s.Fields[f.ID]
		fv := FieldView{
			ID:       f.ID,
			Label:    f.Label,
			Kind:     f.Kind,
			Required: f.Required,
			Value:    fs.Value,
			Classes:  []string{},
		}
		switch fs.Status {
		case Valid:
			fv.Classes = append(fv.Classes, ClassValid)
		case Invalid:
			fv.Classes = append(fv.Classes, ClassInvalid)
			fv.Feedback = fs.Message
		}
		v.Fields = append(v.Fields, fv)
	}
	return v
}
