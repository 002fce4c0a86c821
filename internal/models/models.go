package models

const (
	RoleAdmin      = "admin"
	RoleInstructor = "Instructor"

	StatusPending  = "pending"
	StatusApproved = "Approved"
	StatusDenied   = "denied"
)

// IDs are 24 character hex object ids on every backend.

type User struct {
	ID    string `gorm:"primaryKey;size:24" json:"_id"`
	Name  string `json:"name,omitempty"`
	Email string `gorm:"index"              json:"email"`
	Photo string `json:"photo,omitempty"`
	Role  string `json:"role,omitempty"`
}

type Class struct {
	ID               string  `gorm:"primaryKey;size:24" json:"_id"`
	ClassName        string  `json:"className"`
	ClassPhoto       string  `json:"classPhoto"`
	InstructorName   string  `json:"instructorName,omitempty"`
	InstructorEmail  string  `gorm:"index"              json:"instructorEmail"`
	AvailableSet     int     `json:"availableSet"`
	Price            float64 `json:"price"`
	Status           string  `json:"status"`
	EnrolledStudents int     `gorm:"index"              json:"enrolledStudents"`
}

// SelectedClass is one enrollment. Class fields are copied, not referenced.
type SelectedClass struct {
	ID              string  `gorm:"primaryKey;size:24" json:"_id"`
	Email           string  `gorm:"index"              json:"email"`
	ClassID         string  `json:"classId,omitempty"`
	ClassName       string  `json:"className"`
	ClassPhoto      string  `json:"classPhoto,omitempty"`
	InstructorName  string  `json:"instructorName,omitempty"`
	InstructorEmail string  `json:"instructorEmail,omitempty"`
	AvailableSet    int     `json:"availableSet"`
	Price           float64 `json:"price"`
}

type Feedback struct {
	ID      string `gorm:"primaryKey;size:24" json:"_id"`
	ClassID string `json:"classId,omitempty"`
	Email   string `json:"email,omitempty"`
	Content string `json:"content"`
}

func (Feedback) TableName() string { return "feedback" }

// ClassUpdate carries the catalog fields editable after creation. Nil fields are left untouched.
type ClassUpdate struct {
	ClassName    *string
	AvailableSet *int
	Price        *float64
	ClassPhoto   *string
}

func (u ClassUpdate) Empty() bool {
	return u.ClassName == nil && u.AvailableSet == nil && u.Price == nil && u.ClassPhoto == nil
}

// Fields maps the non-nil fields to their JSON names.
func (u ClassUpdate) Fields() map[string]any {
	fields := make(map[string]any, 4)
	if u.ClassName != nil {
		fields["className"] = *u.ClassName
	}
	if u.AvailableSet != nil {
		fields["availableSet"] = *u.AvailableSet
	}
	if u.Price != nil {
		fields["price"] = *u.Price
	}
	if u.ClassPhoto != nil {
		fields["classPhoto"] = *u.ClassPhoto
	}
	return fields
}

// ClassFilter narrows a catalog listing.
type ClassFilter struct {
	InstructorEmail string
	SortByEnrolled  bool
}
