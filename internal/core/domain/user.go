package domain

import "time"

// OrderPreference controls how a client orders the user's note categories.
type OrderPreference string

const (
	OrderByDate      OrderPreference = "date"
	OrderByDateDesc  OrderPreference = "date_desc"
	OrderByTitle     OrderPreference = "title"
	OrderByTitleDesc OrderPreference = "title_desc"

	DefaultOrderPreference = OrderByDate
)

// Valid reports whether p is one of the recognised ordering values.
func (p OrderPreference) Valid() bool {
	switch p {
	case OrderByDate, OrderByDateDesc, OrderByTitle, OrderByTitleDesc:
		return true
	}
	return false
}

// User models a registered account. Username is immutable after creation.
type User struct {
	ID              string          `json:"id"`
	Username        string          `json:"username"`
	PasswordHash    string          `json:"-"`
	OrderCategories OrderPreference `json:"orderCategories"`
	CreatedAt       time.Time       `json:"created_at"`
	UpdatedAt       time.Time       `json:"updated_at"`
}
