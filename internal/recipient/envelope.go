package recipient

// Status values the recipient API reports for a recipient's signing state.
const (
	StatusPending  = "pending"
	StatusSigned   = "signed"
	StatusRejected = "rejected"
)

// Envelope describes the document a recipient token grants access to.
type Envelope struct {
	DocumentID     string `json:"document_id"`
	Title          string `json:"title"`
	RecipientName  string `json:"recipient_name"`
	RecipientEmail string `json:"recipient_email"`
	Status         string `json:"status"`
}

// Rejected reports whether the recipient has already declined the document.
func (e *Envelope) Rejected() bool {
	return e.Status == StatusRejected
}

type rejectBody struct {
	Reason string `json:"reason"`
}

type errorBody struct {
	Error string `json:"error"`
}
