//go:build unit || e2e

package builder

import (
	"mikvah-scheduler/internal/domain/user"

	"github.com/google/uuid"
)

type UserBuilder struct {
	ID                 uuid.UUID
	Email              string
	Title              string
	FirstName          string
	LastName           string
	Phone              string
	Role               string
	IsMember           bool
	PaymentCustomerRef *string
}

func NewUserBuilder() *UserBuilder {
	ref := "cus_test"
	return &UserBuilder{
		ID:                 uuid.New(),
		Email:              "test@example.com",
		Title:              "Mrs.",
		FirstName:          "Test",
		LastName:           "User",
		Phone:              "310-555-0100",
		Role:               "viewer",
		PaymentCustomerRef: &ref,
	}
}

func (u *UserBuilder) With(mutate func(*UserBuilder)) *UserBuilder {
	mutate(u)
	return u
}

// Build methods
func (u *UserBuilder) BuildDomain() (*user.User, error) {
	email, err := user.NewEmail(u.Email)
	if err != nil {
		return nil, err
	}

	role, err := user.NewRole(u.Role)
	if err != nil {
		return nil, err
	}

	profile := user.Profile{Title: u.Title, FirstName: u.FirstName, LastName: u.LastName, Phone: u.Phone}
	return user.Reconstruct(u.ID, email, profile, role, u.IsMember, u.PaymentCustomerRef), nil
}

// MustBuildDomain is for tests that only need a valid user.
func (u *UserBuilder) MustBuildDomain() *user.User {
	d, err := u.BuildDomain()
	if err != nil {
		panic(err)
	}
	return d
}

// Fluent builder methods
func (u *UserBuilder) WithEmail(email string) *UserBuilder {
	u.Email = email
	return u
}

func (u *UserBuilder) WithRole(role string) *UserBuilder {
	u.Role = role
	return u
}

func (u *UserBuilder) WithID(id uuid.UUID) *UserBuilder {
	u.ID = id
	return u
}

func (u *UserBuilder) AsMember() *UserBuilder {
	u.IsMember = true
	return u
}

func (u *UserBuilder) WithoutPaymentCustomer() *UserBuilder {
	u.PaymentCustomerRef = nil
	return u
}
