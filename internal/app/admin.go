package app

import "quiz-share/internal/domain"

// AdminGate checks a single shared secret. It is compared in plaintext and
// has no lockout; it gates the admin views, it is not an auth system.
type AdminGate struct {
	secret string
}

func NewAdminGate(secret string) *AdminGate {
	return &AdminGate{secret: secret}
}

// Unlock returns domain.ErrWrongPassword unless secret matches.
// A gate without a configured secret never unlocks.
func (g *AdminGate) Unlock(secret string) error {
	if g == nil || g.secret == "" || secret != g.secret {
		return domain.ErrWrongPassword
	}
	return nil
}
