package domain

// ChatSession is a saved conversation between the signed-in patient and a
// doctor.
type ChatSession struct {
	ID       ID      `json:"id"`
	UserID   ID      `json:"userId"`
	DoctorID ID      `json:"doctorId"`
	StartAt  string  `json:"startAt,omitempty"`
	EndedAt  string  `json:"endedAt,omitempty"`
	Doctor   *Doctor `json:"doctor,omitempty"`
}

type ChatMessage struct {
	ID         ID     `json:"id"`
	SessionID  ID     `json:"sessionId"`
	SenderType string `json:"senderType"`
	Message    string `json:"message"`
	CreatedAt  string `json:"created_at,omitempty"`
}
