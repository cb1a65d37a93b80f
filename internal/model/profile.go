package model

import "time"

type Role string

const (
	RoleCandidate Role = "candidate"
	RoleCompany   Role = "company"
)

type Profile struct {
	ID              string    `json:"id"`
	FullName        string    `json:"full_name"`
	Email           string    `json:"email"`
	Role            Role      `json:"role"`
	AvatarURL       string    `json:"avatar_url"`
	ExperienceLevel string    `json:"experience_level"`
	CreatedAt       time.Time `json:"created_at"`
}

// ProfilePublic is the subset of a profile embedded in messages,
// conversations and application listings.
type ProfilePublic struct {
	ID              string `json:"id"`
	FullName        string `json:"full_name"`
	Email           string `json:"email"`
	AvatarURL       string `json:"avatar_url,omitempty"`
	ExperienceLevel string `json:"experience_level,omitempty"`
}

func (p *Profile) ToPublic() ProfilePublic {
	return ProfilePublic{
		ID:              p.ID,
		FullName:        p.FullName,
		Email:           p.Email,
		AvatarURL:       p.AvatarURL,
		ExperienceLevel: p.ExperienceLevel,
	}
}

// DisplayName is the name shown in conversation lists: full name when the
// profile has one, otherwise the email address.
func (p *ProfilePublic) DisplayName() string {
	if p.FullName != "" {
		return p.FullName
	}
	return p.Email
}
