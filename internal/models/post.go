package models

import "time"

// MaxTitleLength bounds BlogPost.Title.
const MaxTitleLength = 256

// BlogPost is a blog entry. Author holds the author's username at creation
// time rather than a foreign key, so renaming a user detaches their posts.
//
// Date is the creation time until the post is first toggled; every
// publish/unpublish moves it to the toggle time.
type BlogPost struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Author    string    `gorm:"size:64;not null" json:"author"`
	Date      time.Time `gorm:"not null;index" json:"date"`
	Title     string    `gorm:"size:256;not null" json:"title"`
	Content   string    `gorm:"type:text;not null" json:"content"`
	Published bool      `gorm:"not null;default:false;index" json:"published"`
}

// State names the lifecycle state of the post.
func (p *BlogPost) State() PostState {
	if p.Published {
		return PostStateLive
	}
	return PostStateDraft
}

// PostState is Draft or Live.
type PostState string

const (
	PostStateDraft PostState = "draft"
	PostStateLive  PostState = "live"
)
