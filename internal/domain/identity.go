package domain

// Identity is the verified caller, reconstructed from token claims on every
// request. It is never persisted and never crosses request boundaries; an
// anonymous caller is represented by a nil *Identity.
type Identity struct {
	ID       int64
	Username string
	Email    string
}
