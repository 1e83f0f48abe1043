package form

import "sync"

// Event is something the user does to a form.
type Event interface {
	isEvent()
}

type (
	// Input replaces a field value and drops its validity decoration without re-checking.
	Input struct {
		ID    string
		Value string
	}

	// Blur validates one field eagerly.
	Blur struct {
		ID string
	}

	// Submit validates every field and shows all errors at once.
	Submit struct{}

	// Reset returns the form to its initial state.
	Reset struct{}
)

func (Input) isEvent()  {}
func (Blur) isEvent()   {}
func (Submit) isEvent() {}
func (Reset) isEvent()  {}

// Reduce applies ev to s and returns the new state; s itself is left untouched.
func Reduce(d Descriptor, s State, ev Event) (State, error) {
	switch ev := ev.(type) {
	case Input:
		if _, err := s.field(ev.ID); err != nil {
			return s, err
		}
		s = s.clone()
		s.Fields[ev.ID] = FieldState{Value: ev.Value}
		return s, nil

	case Blur:
		return checkField(d, s, ev.ID)

	case Submit:
		var err error
		for _, f := range d.Fields {
			if s, err = checkField(d, s, f.ID); err != nil {
				return s, err
			}
		}
		s = s.clone()
		s.Validated = true
		return s, nil

	case Reset:
		return NewState(d), nil
	}
	return s, nil
}

func checkField(d Descriptor, s State, id string) (State, error) {
	f, err := d.Field(id)
	if err != nil {
		return s, err
	}
	fs, err := s.field(id)
	if err != nil {
		return s, err
	}
	if valid, msg := Check(f, fs.Value); !valid {
		return s.ShowError(id, msg)
	}
	return s.ClearError(id)
}

// Form is the controller owning the state of one form.
type Form struct {
	desc  Descriptor
	mu    sync.Mutex
	state State
}

func New(d Descriptor) *Form {
	return &Form{desc: d, state: NewState(d)}
}

func (f *Form) Descriptor() Descriptor { return f.desc }

func (f *Form) Dispatch(ev Event) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	s, err := Reduce(f.desc, f.state, ev)
	if err != nil {
		return err
	}
	f.state = s
	return nil
}

func (f *Form) Input(id, value string) error {
	return f.Dispatch(Input{ID: id, Value: value})
}

// Blur validates the field and reports whether it passed.
func (f *Form) Blur(id string) (bool, error) {
	if err := f.Dispatch(Blur{ID: id}); err != nil {
		return false, err
	}
	return f.State().Fields[id].Status == Valid, nil
}

// Submit reports whether the form may be sent.
func (f *Form) Submit() bool {
	_ = f.Dispatch(Submit{})
	return f.State().Valid()
}

func (f *Form) Reset() {
	_ = f.Dispatch(Reset{})
}

// Bind loads a full set of values, as read from the page, into the form.
// Every descriptor field must be present; the first one missing fails with a *MissingFieldError.
func (f *Form) Bind(values map[string]string) error {
	for _, id := range f.desc.IDs() {
		if _, ok := values[id]; !ok {
			return &MissingFieldError{Form: f.desc.Name, ID: id}
		}
	}
	for _, id := range f.desc.IDs() {
		if err := f.Input(id, values[id]); err != nil {
			return err
		}
	}
	return nil
}

func (f *Form) State() State {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.state.clone()
}

func (f *Form) Values() map[string]string { return f.State().Values() }
func (f *Form) Errors() map[string]string { return f.State().Errors() }
func (f *Form) Render() View              { return Render(f.desc, f.State()) }
