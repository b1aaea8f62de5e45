package model

import (
	"time"
)

// Address is a shipping address. It is stored as JSON both on the user and,
// copied, on each order.
type Address struct {
	Street  string `json:"street"`
	City    string `json:"city"`
	Zip     string `json:"zip"`
	Country string `json:"country"`
}

// User represents an account of any role
type User struct {
	ID          uint       `json:"id" gorm:"primaryKey"`
	Username    *string    `json:"username,omitempty" gorm:"type:varchar(100);uniqueIndex"`
	Email       string     `json:"email" gorm:"type:varchar(255);uniqueIndex;not null"`
	Password    string     `json:"-" gorm:"type:varchar(255);not null"`
	Role        Role       `json:"role" gorm:"type:varchar(20);index;not null"`
	IsApproved  bool       `json:"is_approved" gorm:"not null"`
	Name        string     `json:"name" gorm:"type:varchar(255)"`
	Addresses   []Address  `json:"addresses" gorm:"serializer:json;type:text"`
	CartVersion int64      `json:"-" gorm:"not null;default:0"`
	LastLoginAt *time.Time `json:"last_login_at,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`

	Cart     []CartItem     `json:"-" gorm:"foreignKey:UserID"`
	Wishlist []WishlistItem `json:"-" gorm:"foreignKey:UserID"`
}

// NewUser builds an account; approval depends on the role and is fixed here
// rather than by a column default.
func NewUser(username, email, passwordHash string, role Role, name string) *User {
	u := &User{
		Email:      email,
		Password:   passwordHash,
		Role:       role,
		IsApproved: role.ApprovedOnCreation(),
		Name:       name,
		Addresses:  []Address{},
	}
	if username != "" {
		u.Username = &username
	}
	return u
}

// CanLogin reports whether the approval gate lets this account authenticate
func (u *User) CanLogin() bool {
	return u.Role != RoleMerchant || u.IsApproved
}

// PublicUser is the projection of a user that is safe to return to clients
type PublicUser struct {
	ID    uint   `json:"id"`
	Role  Role   `json:"role"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

// Public returns the client safe projection
func (u *User) Public() PublicUser {
	return PublicUser{ID: u.ID, Role: u.Role, Name: u.Name, Email: u.Email}
}

// CustomerContact is the customer information merchants see on their orders
type CustomerContact struct {
	ID        uint      `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Addresses []Address `json:"addresses"`
}

// Contact returns the customer contact projection
func (u *User) Contact() CustomerContact {
	return CustomerContact{ID: u.ID, Name: u.Name, Email: u.Email, Addresses: u.Addresses}
}
