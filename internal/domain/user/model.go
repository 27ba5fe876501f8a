package user

// Principal is the authenticated caller resolved by the session verifier.
type Principal struct {
	UserID string
	Email  string
}
