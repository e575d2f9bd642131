package user

// UpdateRequest is a field-level patch: empty fields keep their stored value.
// ProfilePic carries new image data, not a URL; the service uploads it and
// stores the hosted URL.
type UpdateRequest struct {
	Name       string `json:"name"`
	Email      string `json:"email"`
	Username   string `json:"username"`
	Password   string `json:"password"`
	Bio        string `json:"bio"`
	ProfilePic string `json:"profilePic"`
}
