package domain

// Account is one monitored TikTok account. Recomputed every cycle from the
// account source, never persisted.
type Account struct {
	Username string
	Enabled  bool
	Notes    string
}
