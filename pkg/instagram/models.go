package instagram

import "time"

// InstagramResponse represents the top-level response from Instagram API
type InstagramResponse struct {
	RequiresToLogin bool   `json:"requires_to_login"`
	Data            Data   `json:"data"`
	Status          string `json:"status"`
	Message         string `json:"message"`
}

// Data wraps the user information in the response
type Data struct {
	User *User `json:"user"`
}

// User represents an Instagram user profile
type User struct {
	ID                       string                   `json:"id"`
	Username                 string                   `json:"username"`
	FullName                 string                   `json:"full_name"`
	IsPrivate                bool                     `json:"is_private"`
	FollowedByViewer         bool                     `json:"followed_by_viewer"`
	EdgeFollowedBy           Count                    `json:"edge_followed_by"`
	EdgeFollow               Count                    `json:"edge_follow"`
	EdgeOwnerToTimelineMedia EdgeOwnerToTimelineMedia `json:"edge_owner_to_timeline_media"`
}

// Followers returns the follower count
func (u *User) Followers() int {
	return u.EdgeFollowedBy.Count
}

// Hidden reports whether the profile is private and its posts are not
// visible to the viewer. A private profile showing no posts counts as hidden
// even when its post count is zero.
func (u *User) Hidden() bool {
	return u.IsPrivate && !u.FollowedByViewer && len(u.EdgeOwnerToTimelineMedia.Edges) == 0
}

// Count is the {"count": n} object Instagram uses for edge totals
type Count struct {
	Count int `json:"count"`
}

// EdgeOwnerToTimelineMedia contains the user's media information
type EdgeOwnerToTimelineMedia struct {
	Count    int      `json:"count"`
	PageInfo PageInfo `json:"page_info"`
	Edges    []Edge   `json:"edges"`
}

// PageInfo contains pagination information
type PageInfo struct {
	HasNextPage bool   `json:"has_next_page"`
	EndCursor   string `json:"end_cursor"`
}

// Edge wraps a single media node
type Edge struct {
	Node Node `json:"node"`
}

// Node represents a single media item (photo or video)
type Node struct {
	ID                   string       `json:"id"`
	Shortcode            string       `json:"shortcode"`
	DisplayURL           string       `json:"display_url"`
	IsVideo              bool         `json:"is_video"`
	TakenAtTimestamp     int64        `json:"taken_at_timestamp"`
	EdgeLikedBy          Count        `json:"edge_liked_by"`
	EdgeMediaPreviewLike Count        `json:"edge_media_preview_like"`
	EdgeMediaToComment   Count        `json:"edge_media_to_comment"`
	EdgeMediaToCaption   CaptionEdges `json:"edge_media_to_caption"`
}

// CaptionEdges holds the caption of a media node
type CaptionEdges struct {
	Edges []struct {
		Node struct {
			Text string `json:"text"`
		} `json:"node"`
	} `json:"edges"`
}

// Likes returns the like count, preferring the full count over the preview
func (n *Node) Likes() int {
	if n.EdgeLikedBy.Count > 0 {
		return n.EdgeLikedBy.Count
	}
	return n.EdgeMediaPreviewLike.Count
}

// Comments returns the comment count
func (n *Node) Comments() int {
	return n.EdgeMediaToComment.Count
}

// Caption returns the caption text or an empty string
func (n *Node) Caption() string {
	if len(n.EdgeMediaToCaption.Edges) == 0 {
		return ""
	}
	return n.EdgeMediaToCaption.Edges[0].Node.Text
}

// PublishedAt returns the post timestamp in UTC
func (n *Node) PublishedAt() time.Time {
	return time.Unix(n.TakenAtTimestamp, 0).UTC()
}

// loginResponse is the body returned by the ajax login endpoint
type loginResponse struct {
	Authenticated     bool   `json:"authenticated"`
	User              bool   `json:"user"`
	UserID            string `json:"userId"`
	Status            string `json:"status"`
	Message           string `json:"message"`
	CheckpointURL     string `json:"checkpoint_url"`
	TwoFactorRequired bool   `json:"two_factor_required"`
}
