package user

import (
	"strings"

	"github.com/google/uuid"
)

// User is the already-resolved identity handed to the booking engine.
// Accounts are managed elsewhere; this module only reads them.
type User struct {
	id                 uuid.UUID
	email              Email
	title              string
	firstName          string
	lastName           string
	phone              string
	role               Role
	isMember           bool
	paymentCustomerRef *string
}

type Profile struct {
	Title     string
	FirstName string
	LastName  string
	Phone     string
}

func Reconstruct(id uuid.UUID, email Email, profile Profile, role Role, isMember bool, paymentCustomerRef *string) *User {
	return &User{
		id:                 id,
		email:              email,
		title:              strings.TrimSpace(profile.Title),
		firstName:          strings.TrimSpace(profile.FirstName),
		lastName:           strings.TrimSpace(profile.LastName),
		phone:              strings.TrimSpace(profile.Phone),
		role:               role,
		isMember:           isMember,
		paymentCustomerRef: paymentCustomerRef,
	}
}

func (u *User) ID() uuid.UUID               { return u.id }
func (u *User) Email() Email                { return u.email }
func (u *User) Title() string               { return u.title }
func (u *User) FirstName() string           { return u.firstName }
func (u *User) LastName() string            { return u.lastName }
func (u *User) Phone() string               { return u.phone }
func (u *User) Role() Role                  { return u.role }
func (u *User) IsMember() bool              { return u.isMember }
func (u *User) PaymentCustomerRef() *string { return u.paymentCustomerRef }
func (u *User) IsAdmin() bool               { return u.role == RoleAdmin }

// FullName is "Title First Last" with empty parts skipped.
func (u *User) FullName() string {
	parts := make([]string, 0, 3)
	for _, p := range []string{u.title, u.firstName, u.lastName} {
		if p != "" {
			parts = append(parts, p)
		}
	}
	return strings.Join(parts, " ")
}
