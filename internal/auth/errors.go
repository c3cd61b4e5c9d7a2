package auth

import "errors"

// Sentinel errors. Use errors.Is(err, auth.ErrAuth) to check.
var (
	// ErrAuth covers every authorization failure: the user aborted the
	// interactive flow, the callback carried an error or a bad state, or the
	// provider rejected a code exchange or refresh.
	ErrAuth = errors.New("auth: authorization failed")

	// ErrCredentialFile means the persisted credential exists but cannot be
	// read or decoded. It is surfaced, never silently replaced; remove the
	// file (grabdoc logout) to force a fresh authorization.
	ErrCredentialFile = errors.New("auth: credential file unusable")

	// ErrClientSecret means neither an explicit client ID nor a readable
	// client secret file is available, so no token endpoint can be reached.
	ErrClientSecret = errors.New("auth: client secret unavailable")
)
