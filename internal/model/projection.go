package model

import "time"

// PublicProfile is what other users may see: no password hash, email or preferences.
type PublicProfile struct {
	ID        string    `json:"id"`
	Username  string    `json:"username"`
	Profile   Profile   `json:"profile"`
	Stats     Stats     `json:"stats"`
	Role      Role      `json:"role"`
	IsActive  bool      `json:"isActive"`
	CreatedAt time.Time `json:"createdAt"`
}

// SafeProfile is what the owner sees: everything except the password hash.
type SafeProfile struct {
	ID          string      `json:"id"`
	Username    string      `json:"username"`
	Email       string      `json:"email"`
	Profile     Profile     `json:"profile"`
	Preferences Preferences `json:"preferences"`
	Stats       Stats       `json:"stats"`
	Role        Role        `json:"role"`
	IsActive    bool        `json:"isActive"`
	CreatedAt   time.Time   `json:"createdAt"`
	UpdatedAt   time.Time   `json:"updatedAt"`
}

func (a *Account) PublicProfile() PublicProfile {
	return PublicProfile{
		ID:        a.ID,
		Username:  a.Username,
		Profile:   a.Profile.clone(),
		Stats:     a.Stats,
		Role:      a.Role,
		IsActive:  a.IsActive,
		CreatedAt: a.CreatedAt,
	}
}

func (a *Account) SafeProfile() SafeProfile {
	return SafeProfile{
		ID:          a.ID,
		Username:    a.Username,
		Email:       a.Email,
		Profile:     a.Profile.clone(),
		Preferences: a.Preferences,
		Stats:       a.Stats,
		Role:        a.Role,
		IsActive:    a.IsActive,
		CreatedAt:   a.CreatedAt,
		UpdatedAt:   a.UpdatedAt,
	}
}

// clone copies the interests slice so projections never alias the account.
func (p Profile) clone() Profile {
	out := p
	out.Interests = append(Interests{}, p.Interests...)
	return out
}
