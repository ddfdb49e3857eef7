package feedback

import "time"

type Type struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Feedback is an append-only note from one employee to another. SenderID and
// SenderName are blank when the note is read back by its recipient and
// IsAnonymous is set.
type Feedback struct {
	ID          string    `json:"id"`
	EmployeeID  string    `json:"employeeId"`
	SenderID    string    `json:"senderId,omitempty"`
	SenderName  string    `json:"senderName,omitempty"`
	CycleID     string    `json:"cycleId,omitempty"`
	TypeID      string    `json:"typeId"`
	TypeName    string    `json:"typeName"`
	Content     string    `json:"content"`
	IsAnonymous bool      `json:"isAnonymous"`
	CreatedAt   time.Time `json:"createdAt"`
}

type Input struct {
	EmployeeID  string `json:"employeeId"`
	CycleID     string `json:"cycleId"`
	TypeID      string `json:"typeId"`
	Content     string `json:"content"`
	IsAnonymous bool   `json:"isAnonymous"`
}

// Recipient is what the notice mail needs about the addressee.
type Recipient struct {
	FullName string
	Email    string
	IsActive bool
}
