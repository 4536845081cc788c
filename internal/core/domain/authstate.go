package domain

// AuthState is a snapshot of the process-wide authentication state.
// Invariant: IsAuthenticated == (User != nil) after every settled transition;
// IsLoading is true only while a session check is in flight.
type AuthState struct {
	User            *User
	IsAuthenticated bool
	IsLoading       bool
}
