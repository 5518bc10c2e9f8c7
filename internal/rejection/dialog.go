package rejection

// OpenIntent is the sentinel value of the inbound open signal that starts the
// dialog open (e.g. ?reject=true on a deep link).
const OpenIntent = "true"

// DialogState is the visibility of the rejection dialog.
type DialogState int

const (
	Closed DialogState = iota
	Open
)

func (s DialogState) String() string {
	if s == Open {
		return "open"
	}
	return "closed"
}

// Dialog holds the open/closed state and resets its form on every close.
// It is not safe for concurrent use; Controller serializes access.
type Dialog struct {
	state   DialogState
	form    *Form
	checked bool
}

// NewDialog creates a closed dialog bound to form and inspects the inbound
// intent once. A later call to Mount is a no-op.
func NewDialog(form *Form, intent string) *Dialog {
	d := &Dialog{form: form}
	d.Mount(intent)
	return d
}

// Mount applies the one-time open intent. Only the first call has any effect.
func (d *Dialog) Mount(intent string) {
	if d.checked {
		return
	}
	d.checked = true
	if intent == OpenIntent {
		d.state = Open
	}
}

// State returns the current visibility.
func (d *Dialog) State() DialogState {
	return d.state
}

// IsOpen reports whether the dialog is visible.
func (d *Dialog) IsOpen() bool {
	return d.state == Open
}

// SetOpen sets the visibility. Closing always resets the form.
func (d *Dialog) SetOpen(open bool) {
	if open {
		d.state = Open
		return
	}
	d.state = Closed
	d.form.Reset()
}

// Toggle flips the visibility, as the trigger control does.
func (d *Dialog) Toggle() {
	d.SetOpen(!d.IsOpen())
}
