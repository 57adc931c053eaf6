package domain

// Payment methods and statuses recorded on a registration.
const (
	PaymentMethodCash = "cash"
	PaymentMethodCard = "card"

	PaymentStatusPending = "pending"
	PaymentStatusPaid    = "paid"

	StatusConfirmed = "confirmed"
)

// Registration Model. The composite unique index on (camp_id, participant_email)
// is what enforces at-most-one registration per participant per camp; the
// application never pre-checks for duplicates.
type Registration struct {
	ID               uint    `gorm:"primaryKey" json:"id"`                                            // Primary key
	CampID           uint    `gorm:"not null;uniqueIndex:idx_camp_participant" json:"campId"`         // Foreign key to Camp
	ParticipantID    uint    `gorm:"not null" json:"participantId"`                                   // Foreign key to User
	ParticipantEmail string  `gorm:"not null;uniqueIndex:idx_camp_participant" json:"participantEmail"` // Registrant email
	ParticipantName  string  `gorm:"not null" json:"participantName"`                                 // Registrant name
	Phone            string  `gorm:"not null" json:"phone"`                                           // Contact phone
	Age              uint    `gorm:"not null" json:"age"`                                             // Registrant age
	Gender           string  `gorm:"not null" json:"gender"`                                          // Registrant gender
	EmergencyContact string  `gorm:"not null" json:"emergencyContact"`                                // Emergency contact phone
	PaymentMethod    string  `gorm:"not null" json:"paymentMethod"`                                   // cash or card
	Status           string  `gorm:"default:confirmed" json:"status"`                                 // Registration status
	PaymentStatus    string  `gorm:"not null" json:"paymentStatus"`                                   // pending or paid
	PaymentIntentID  string  `json:"paymentIntentId,omitempty"`                                       // Processor intent reference for card payments
	AmountPaid       float64 `json:"amountPaid"`                                                      // Settled amount in major units, from the verified intent
	CreatedAt        int64   `gorm:"autoCreateTime:milli" json:"createdAt"`                           // Timestamp of creation in milliseconds
}
