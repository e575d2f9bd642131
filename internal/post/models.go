package post

import "time"

const maxTextLength = 500

type Post struct {
	ID        string    `json:"id"`
	PostedBy  string    `json:"postedBy"`
	Text      string    `json:"text"`
	Img       string    `json:"img,omitempty"`
	Likes     []string  `json:"likes"`
	Replies   []Reply   `json:"replies"`
	CreatedAt time.Time `json:"createdAt"`
}

// Reply is embedded in its post and snapshots the replier's username and
// profile picture as they were at reply time.
type Reply struct {
	UserID     string `json:"userId"`
	Text       string `json:"text"`
	Username   string `json:"username"`
	ProfilePic string `json:"userProfilePic"`
}

type CreateRequest struct {
	PostedBy string `json:"postedBy"`
	Text     string `json:"text"`
	Img      string `json:"img"`
}

type ReplyRequest struct {
	Text string `json:"text"`
}
