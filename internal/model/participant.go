package model

// Participant is the per-connection identity used for access decisions
// and stroke authorship. It lives for the duration of one connection
// and is never persisted. Anonymous guests carry an identity derived
// from the connection id and Authenticated=false.
type Participant struct {
	UserID        string `json:"userId"`
	Username      string `json:"username"`
	Email         string `json:"email,omitempty"`
	Authenticated bool   `json:"-"`
}

// GuestParticipant derives a guest identity from a connection id, the
// same way the socket layer names unauthenticated users.
func GuestParticipant(connID string) Participant {
	short := connID
	if len(short) > 6 {
		short = short[:6]
	}
	return Participant{
		UserID:   connID,
		Username: "Guest" + short,
	}
}
