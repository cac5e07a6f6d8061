package models

import "time"

// User is the public profile document, keyed by username.
// Credentials live in Account and never travel with the profile.
type User struct {
	Username    string    `json:"username"`
	FirstName   string    `json:"firstName"`
	LastName    string    `json:"lastName"`
	Email       string    `json:"email"`
	PhoneNumber string    `json:"phoneNumber"`
	Country     string    `json:"country"`
	ImageURL    string    `json:"imageUrl,omitempty"`
	CreatedAt   time.Time `json:"createdAt"`
}

type UserPatch struct {
	FirstName   *string `json:"firstName"`
	LastName    *string `json:"lastName"`
	PhoneNumber *string `json:"phoneNumber"`
	Country     *string `json:"country"`
	ImageURL    *string `json:"-"`
}

func (p UserPatch) Apply(u *User) {
	if p.FirstName != nil {
		u.FirstName = *p.FirstName
	}
	if p.LastName != nil {
		u.LastName = *p.LastName
	}
	if p.PhoneNumber != nil {
		u.PhoneNumber = *p.PhoneNumber
	}
	if p.Country != nil {
		u.Country = *p.Country
	}
	if p.ImageURL != nil {
		u.ImageURL = *p.ImageURL
	}
}

func (p UserPatch) Empty() bool {
	return p.FirstName == nil && p.LastName == nil && p.PhoneNumber == nil &&
		p.Country == nil && p.ImageURL == nil
}

// Account is the credential record owned by the auth provider.
type Account struct {
	Email        string
	Username     string
	PasswordHash string
	CreatedAt    time.Time
}
