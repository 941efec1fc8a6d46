package models

type Contact struct {
	Row         int    `json:"row"`
	Name        string `json:"name"`
	PhoneNumber string `json:"phone_number,omitempty"`
}

const (
	OutcomeSent    = "sent"
	OutcomeFailed  = "failed"
	OutcomeSkipped = "skipped"
)

type ContactOutcome struct {
	Contact    Contact `json:"contact"`
	Status     string  `json:"status"`
	MessageSID string  `json:"message_sid,omitempty"`
	Error      string  `json:"error,omitempty"`
}

type DispatchResult struct {
	Attempted int              `json:"attempted"`
	Skipped   int              `json:"skipped"`
	Succeeded int              `json:"succeeded"`
	Failed    int              `json:"failed"`
	Outcomes  []ContactOutcome `json:"outcomes"`
}

type MessageReceipt struct {
	SID    string `json:"sid"`
	Status string `json:"status"`
}
