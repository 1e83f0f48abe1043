package client

// Result is the outcome of a call the server answered, or failed to answer.
// It is either Ok or Err.
type Result interface {
	isResult()
}

type (
	Ok struct {
		Message   string
		PaymentID string
	}

	Err struct {
		Reason string
	}
)

func (Ok) isResult()  {}
func (Err) isResult() {}

// User-facing messages of remote failures.
const (
	MsgNetworkError    = "Network error. Please check your connection and try again."
	MsgSubmitFailed    = "Error submitting payment. Please try again."
	MsgToggleFailed    = "Error updating student status."
	MsgDeleteFailed    = "Error deleting result."
	MsgSubmitSucceeded = "Payment information submitted successfully!"
)

// response is the JSON envelope of every portal endpoint.
type response struct {
	Success   bool      `json:"success"`
	Message   string    `json:"message,omitempty"`
	Error     string    `json:"error,omitempty"`
	PaymentID paymentID `json:"payment_id,omitempty"`
}

// paymentID accepts the identifier either quoted or as a bare number.
type paymentID string

func (id *paymentID) UnmarshalJSON(b []byte) error {
	s := string(b)
	if s == "null" {
		return nil
	}
	if len(s) >= 2 && s[0] == '"' && s[len(s)-1] == '"' {
		s = s[1 : len(s)-1]
	}
	*id = paymentID(s)
	return nil
}

func (r response) result(fallback string) Result {
	if !r.Success {
		if r.Error != "" {
			return Err{Reason: r.Error}
		}
		if r.Message != "" {
			return Err{Reason: r.Message}
		}
		return Err{Reason: fallback}
	}
	return Ok{Message: r.Message, PaymentID: string(r.PaymentID)}
}
