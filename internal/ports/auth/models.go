package auth

// Role del usuario autenticado.
type Role string

const (
	RoleFarmer   Role = "farmer"
	RoleVet      Role = "vet"
	RoleCustomer Role = "customer"
)

// Claims representa la información extraída del token.
type Claims struct {
	UserID string
	Email  string
	Role   Role
}

// Valid indica si el rol es uno de los conocidos.
func (r Role) Valid() bool {
	switch r {
	case RoleFarmer, RoleVet, RoleCustomer:
		return true
	}
	return false
}
