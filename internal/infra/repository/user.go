package repository

import (
	"context"

	"mikvah-scheduler/internal/domain/user"
	"mikvah-scheduler/internal/infra"
	"mikvah-scheduler/internal/infra/db"
	"mikvah-scheduler/internal/pkg/pgconv"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
)

const findUserByIDSQL = `
	SELECT id, email, title, first_name, last_name, phone, role, is_member, payment_customer_ref
	FROM users
	WHERE id = $1`

type UserRow struct {
	ID                 uuid.UUID
	Email              string
	Title              string
	FirstName          string
	LastName           string
	Phone              string
	Role               string
	IsMember           bool
	PaymentCustomerRef pgtype.Text
}

// UserRepository reads accounts owned by the identity provider.
type UserRepository struct {
	db db.DBTX
}

func NewUserRepository(db db.DBTX) *UserRepository {
	return &UserRepository{db: db}
}

func (r *UserRepository) FindByID(ctx context.Context, id uuid.UUID) (*user.User, error) {
	var row UserRow
	err := r.db.QueryRow(ctx, findUserByIDSQL, id).Scan(
		&row.ID, &row.Email, &row.Title, &row.FirstName, &row.LastName,
		&row.Phone, &row.Role, &row.IsMember, &row.PaymentCustomerRef,
	)
	if err != nil {
		return nil, infra.WrapRepoErr("failed to find user by ID", err)
	}
	return toDomainUser(row)
}

func toDomainUser(row UserRow) (*user.User, error) {
	email, err := user.NewEmail(row.Email)
	if err != nil {
		return nil, infra.WrapRepoErr("stored user email is invalid", err, infra.KindDBFailure)
	}
	role, err := user.NewRole(row.Role)
	if err != nil {
		return nil, infra.WrapRepoErr("stored user role is invalid", err, infra.KindDBFailure)
	}
	profile := user.Profile{Title: row.Title, FirstName: row.FirstName, LastName: row.LastName, Phone: row.Phone}
	return user.Reconstruct(row.ID, email, profile, role, row.IsMember, pgconv.StringPtrFromPgtype(row.PaymentCustomerRef)), nil
}
