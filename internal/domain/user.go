package domain

// Roles assigned at signup. Role is the single source of truth for
// eligibility decisions; no other field encodes it.
const (
	RoleParticipant = "participant" // May register for camps
	RoleOrganizer   = "organizer"   // May publish camps, may not register
)

// User Model
type User struct {
	ID        uint   `gorm:"primaryKey" json:"id"`                  // Primary key
	Email     string `gorm:"unique;not null" json:"email"`          // Unique email, login identifier
	Password  string `gorm:"not null" json:"-"`                     // Hashed password
	Name      string `gorm:"not null" json:"name"`                  // Display name
	Role      string `gorm:"default:participant" json:"role"`       // Role: participant or organizer
	CreatedAt int64  `gorm:"autoCreateTime:milli" json:"createdAt"` // Timestamp of creation in milliseconds
}
