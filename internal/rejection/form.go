package rejection

// FormState is a snapshot of the rejection form.
// Touched reports whether the reason has been edited since the last reset, so
// hosts can hold back inline errors on a pristine field.
type FormState struct {
	Reason     string
	Valid      bool
	Err        error
	Touched    bool
	Submitting bool
}

// Form owns the single reason field and the in-flight flag.
// It is not safe for concurrent use; Controller serializes access.
type Form struct {
	state FormState
}

// NewForm returns a form in its default state.
func NewForm() *Form {
	f := &Form{}
	f.Reset()
	return f
}

// State returns the current form snapshot.
func (f *Form) State() FormState {
	return f.state
}

// SetReason replaces the reason text and recomputes validity.
func (f *Form) SetReason(reason string) {
	f.state.Reason = reason
	f.state.Touched = true
	f.validate()
}

// CanSubmit reports whether the submit affordance is enabled.
func (f *Form) CanSubmit() bool {
	return f.state.Valid && !f.state.Submitting
}

// Reset restores the default state: empty reason, invalid, not submitting.
func (f *Form) Reset() {
	f.state = FormState{}
	f.validate()
}

func (f *Form) validate() {
	f.state.Err = ValidateReason(f.state.Reason)
	f.state.Valid = f.state.Err == nil
}

func (f *Form) begin() bool {
	if !f.CanSubmit() {
		return false
	}
	f.state.Submitting = true
	return true
}

func (f *Form) finish() {
	f.state.Submitting = false
}
