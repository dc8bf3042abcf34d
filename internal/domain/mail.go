package domain

import "time"

// Mail is a private message between two users. Physical deletion only
// happens once both DeletedBySender and DeletedByRecipient are true.
type Mail struct {
	ID                 int
	SenderID           int
	RecipientID        int
	Subject            string
	Body               string
	IsRead             bool
	DeletedBySender    bool
	DeletedByRecipient bool
	CreatedAt          time.Time
}

// PurgeEligible reports whether both sides have logically deleted the
// message and it may be physically removed.
func (m Mail) PurgeEligible() bool {
	return m.DeletedBySender && m.DeletedByRecipient
}
