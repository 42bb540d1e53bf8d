package models

// CaptchaImage is one tile of the 3x3 challenge grid.
type CaptchaImage struct {
	ID  int    `json:"id"`
	URL string `json:"url"`
}

// CaptchaChallenge is served to the client after a failed login attempt. The
// target category is exposed by its display label only; which tiles belong to
// it stays server-side.
type CaptchaChallenge struct {
	ID       string         `json:"challenge_id"`
	Category string         `json:"category"`
	Images   []CaptchaImage `json:"images"`
}

// CaptchaAnswer is the client's selection for a challenge.
type CaptchaAnswer struct {
	Key         string `json:"key"`
	ChallengeID string `json:"challenge_id"`
	Selections  []int  `json:"selections"`
}
