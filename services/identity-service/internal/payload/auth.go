package payload

// Form payloads for the password-based flows. Validation failures are
// translated and shown to the user as flash messages.

type SignUpRequest struct {
	Email    string `json:"email"    validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type SignInRequest struct {
	Email    string `json:"email"    validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// PasswordResetRequest carries the address to reset and the replacement
// password that will be staged until the mailed link is confirmed.
type PasswordResetRequest struct {
	Email    string `json:"email"    validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// PlatformLoginRequest is posted by the frontend platform SDKs. For Google
// the ID token is verified server-side; the remaining platforms are trusted
// upstream and post their profile directly.
type PlatformLoginRequest struct {
	IDToken         string `json:"id_token"`
	AccessToken     string `json:"access_token"`
	PlatformUserID  string `json:"platform_user_id"`
	Nickname        string `json:"nickname"`
	ProfileImageURL string `json:"profile_image_url"`
}

type PlatformLoginResponse struct {
	UserID      string `json:"user_id"`
	AccessToken string `json:"access_token"`
}

// SessionResponse reports the identity behind the session cookie, if any.
type SessionResponse struct {
	Authenticated bool   `json:"authenticated"`
	UserID        string `json:"user_id,omitempty"`
	Email         string `json:"email,omitempty"`
	Nickname      string `json:"nickname,omitempty"`
	Verified      bool   `json:"verified,omitempty"`
}
