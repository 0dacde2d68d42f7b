package user

import (
	"time"

	"github.com/shopspring/decimal"
)

// Membership is the tier assigned to a user. Each tier carries a discount
// on dynamic pricing and a ceiling on how many days in advance the user
// may book.
type Membership string

const (
	MembershipNone    Membership = "NONE"
	MembershipBasic   Membership = "BASIC"
	MembershipPremium Membership = "PREMIUM"
	MembershipVIP     Membership = "VIP"
)

func (m Membership) Valid() bool {
	switch m {
	case MembershipNone, MembershipBasic, MembershipPremium, MembershipVIP:
		return true
	}
	return false
}

func (m Membership) DiscountFraction() decimal.Decimal {
	switch m {
	case MembershipBasic:
		return decimal.NewFromFloat(0.10)
	case MembershipPremium:
		return decimal.NewFromFloat(0.20)
	case MembershipVIP:
		return decimal.NewFromFloat(0.30)
	default:
		return decimal.Zero
	}
}

func (m Membership) MaxAdvanceDays() int {
	switch m {
	case MembershipBasic:
		return 14
	case MembershipPremium, MembershipVIP:
		return 30
	default:
		return 7
	}
}

type User struct {
	ID         int64      `db:"id" json:"id"`
	Name       string     `db:"name" json:"name"`
	Email      string     `db:"email" json:"email"`
	Membership Membership `db:"membership" json:"membership"`
	Active     bool       `db:"active" json:"active"`
	CreatedAt  time.Time  `db:"created_at" json:"created_at"`
}

type CreateUserRequest struct {
	Name       string `json:"name" binding:"required"`
	Email      string `json:"email" binding:"required,email"`
	Membership string `json:"membership" binding:"required"`
}

type UpdateUserRequest struct {
	Name       string `json:"name" binding:"required"`
	Membership string `json:"membership" binding:"required"`
	Active     *bool  `json:"active" binding:"required"`
}
