package model

const (
	RoleGuest = "guest"
	RoleStaff = "staff"
)

type Guest struct {
	ID        string `json:"id,omitempty" bson:"_id,omitempty"`
	Email     string `json:"email" bson:"email"`
	FirstName string `json:"first_name" bson:"first_name"`
	LastName  string `json:"last_name" bson:"last_name"`
	Phone     string `json:"phone,omitempty" bson:"phone,omitempty"`
	Role      string `json:"role" bson:"role"`
}

func (g *Guest) IsStaff() bool {
	return g != nil && g.Role == RoleStaff
}
