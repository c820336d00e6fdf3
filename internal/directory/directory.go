// Package directory consumes the account directory: it resolves authenticated
// callers to their role and profile, and exposes the two balance mutations the
// settlement path is allowed to make. Account creation and profile editing
// live outside this service.
package directory

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/cdileep23/XNL-21BCE9435-server/internal/db"
)

// Role of an authenticated caller. The two roles are disjoint: a poster can
// never bid, a freelancer can never post.
type Role string

const (
	RoleJobPoster  Role = "jobPoster"
	RoleFreelancer Role = "freelancer"
)

// ParseRole converts a raw claim value to a Role.
func ParseRole(s string) (Role, error) {
	switch Role(s) {
	case RoleJobPoster, RoleFreelancer:
		return Role(s), nil
	}
	return "", fmt.Errorf("unknown role %q", s)
}

// Caller is the authenticated identity threaded into every core operation by
// the HTTP and realtime layers. It is never read from ambient state.
type Caller struct {
	ID   string
	Role Role
}

// Account is the directory's public view of a user.
type Account struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Email       string    `json:"email"`
	Role        Role      `json:"role"`
	MoneyEarned int64     `json:"money_earned"`
	MoneySpent  int64     `json:"money_spent"`
	CreatedAt   time.Time `json:"created_at"`
}

// GetAccount loads an account by id.
func GetAccount(ctx context.Context, id string) (*Account, error) {
	var a Account
	err := db.Conn.QueryRow(ctx,
		`SELECT id, name, email, role, COALESCE(money_earned, 0), COALESCE(money_spent, 0), created_at
         FROM users WHERE id = $1`, id,
	).Scan(&a.ID, &a.Name, &a.Email, &a.Role, &a.MoneyEarned, &a.MoneySpent, &a.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &a, nil
}

// Email looks up a user's email for notification fan-out. Best-effort callers
// ignore the error.
func Email(ctx context.Context, id string) (string, error) {
	var email string
	err := db.Conn.QueryRow(ctx, `SELECT email FROM users WHERE id = $1`, id).Scan(&email)
	return email, err
}

// CreditEarned adds amount to a freelancer's running money_earned total.
// Only settlement may call this, inside its transaction.
func CreditEarned(ctx context.Context, tx pgx.Tx, freelancerID string, amount int64) error {
	_, err := tx.Exec(ctx,
		`UPDATE users SET money_earned = COALESCE(money_earned, 0) + $1 WHERE id = $2`,
		amount, freelancerID)
	return err
}

// CreditSpent adds amount to a poster's running money_spent total.
// Only settlement may call this, inside its transaction.
func CreditSpent(ctx context.Context, tx pgx.Tx, posterID string, amount int64) error {
	_, err := tx.Exec(ctx,
		`UPDATE users SET money_spent = COALESCE(money_spent, 0) + $1 WHERE id = $2`,
		amount, posterID)
	return err
}
