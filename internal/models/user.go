package models

import "go.mongodb.org/mongo-driver/bson/primitive"

type User struct {
	ID        primitive.ObjectID `json:"_id" bson:"_id,omitempty"`
	Email     string             `json:"email" bson:"email"`
	Name      string             `json:"name,omitempty" bson:"name,omitempty"`
	Role      string             `json:"role,omitempty" bson:"role,omitempty"`
	Location  string             `json:"location,omitempty" bson:"location,omitempty"`
	Phone     string             `json:"phone,omitempty" bson:"phone,omitempty"`
	Education string             `json:"education,omitempty" bson:"education,omitempty"`
	LinkedIn  string             `json:"linkedin,omitempty" bson:"linkedin,omitempty"`
}

// UserProfile is the client-writable part of a user. Role is deliberately absent.
type UserProfile struct {
	Name      string `json:"name,omitempty" bson:"name,omitempty"`
	Location  string `json:"location,omitempty" bson:"location,omitempty"`
	Phone     string `json:"phone,omitempty" bson:"phone,omitempty"`
	Education string `json:"education,omitempty" bson:"education,omitempty"`
	LinkedIn  string `json:"linkedin,omitempty" bson:"linkedin,omitempty"`
}

type Role int

const (
	RoleCustomer Role = iota
	RoleAdmin
)

const (
	roleAdminValue    = "admin"
	roleCustomerValue = "customer"
)

// ParseRole maps a stored role value onto Role. Anything but "admin" is a customer.
func ParseRole(stored string) Role {
	if stored == roleAdminValue {
		return RoleAdmin
	}
	return RoleCustomer
}

func (r Role) String() string {
	if r == RoleAdmin {
		return roleAdminValue
	}
	return roleCustomerValue
}

// RoleOf returns the role of u; a nil user is a customer.
func RoleOf(u *User) Role {
	if u == nil {
		return RoleCustomer
	}
	return ParseRole(u.Role)
}

type UpsertUserResponse struct {
	Result *WriteResult `json:"result"`
	Token  string       `json:"token"`
}

type AdminStatus struct {
	Admin bool `json:"admin"`
}
