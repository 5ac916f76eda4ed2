package ports

// Navigator receives the redirect decisions of the request layer. The host
// application decides what a "view" is; the CLI prints sign-in instructions.
type Navigator interface {
	// ToSignIn sends the user to the sign-in view, keeping the URL that
	// triggered the redirect so it can be returned to after login.
	ToSignIn(returnURL string)
	// ToSafeView sends the user to a safe default view after an
	// authorization failure, carrying a reason code.
	ToSafeView(reason string)
}

// Notifier raises user-visible session notifications. Routine background
// refreshes stay silent; only terminal conditions are announced.
type Notifier interface {
	SessionExpired(reason string)
}
