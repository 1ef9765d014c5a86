package domain

// Guild is one entry of the Discord "list my guilds" response.
type Guild struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Icon string `json:"icon,omitempty"`
}

// Membership is the matched guild record for the target server.
// A nil *Membership means the user is not a member; that is a success
// outcome of a lookup, not an error.
type Membership struct {
	Guild
}
