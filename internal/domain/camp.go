package domain

// Camp Model
type Camp struct {
	ID                     uint    `gorm:"primaryKey" json:"id"`                        // Primary key
	Name                   string  `gorm:"not null" json:"name"`                        // Camp name
	Description            string  `json:"description"`                                 // Camp description
	Location               string  `gorm:"not null" json:"location"`                    // Venue
	DateTime               int64   `json:"dateTime"`                                    // Scheduled date in milliseconds
	HealthcareProfessional string  `json:"healthcareProfessional"`                      // Lead professional on site
	Fees                   float64 `gorm:"not null" json:"fees"`                        // Registration fee in major units
	OrganizerEmail         string  `gorm:"index;not null" json:"organizerEmail"`        // Owning organizer
	ParticipantCount       uint    `gorm:"not null;default:0" json:"participantCount"`  // Confirmed registrations; mutated only by atomic increment
	CreatedAt              int64   `gorm:"autoCreateTime:milli" json:"createdAt"`       // Timestamp of creation in milliseconds
}
