package domain

import "time"

// User is the identity returned by the identity backend.
type User struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	Name      string    `json:"name,omitempty"`
	AvatarURL string    `json:"avatar_url,omitempty"`
	Provider  string    `json:"provider,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// Handle returns the short public handle derived from the email address.
func (u User) Handle() string {
	for i := 0; i < len(u.Email); i++ {
		if u.Email[i] == '@' {
			if i == 0 {
				break
			}
			return u.Email[:i]
		}
	}
	return "user"
}

// Session is an authenticated session issued by the identity backend.
type Session struct {
	AccessToken  string    `json:"access_token"`
	RefreshToken string    `json:"refresh_token"`
	TokenType    string    `json:"token_type"`
	ExpiresIn    int       `json:"expires_in"`
	ExpiresAt    time.Time `json:"expires_at"`
	User         User      `json:"user"`
}
