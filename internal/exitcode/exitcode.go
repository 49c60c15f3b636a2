// Package exitcode defines the process exit codes of taskflow.
package exitcode

const (
	Success = 0

	// UserError covers bad arguments, unknown or ambiguous task references
	// and requests the API rejected as invalid.
	UserError = 1

	// AuthError covers a missing or expired session, failed login and an
	// unusable configuration.
	AuthError = 2

	// BackendError covers transport failures and 5xx answers from the API.
	BackendError = 3
)

// Name returns a short label for code, used in debug logs.
func Name(code int) string {
	switch code {
	case Success:
		return "success"
	case UserError:
		return "user"
	case AuthError:
		return "auth"
	case BackendError:
		return "backend"
	default:
		return "unknown"
	}
}
