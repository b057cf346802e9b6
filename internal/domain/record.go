// Package domain holds the data model shared by every layer of the engine.
package domain

import (
	"fmt"
	"strings"
	"time"
)

// PostType is the kind of social-media post.
type PostType string

const (
	PostTypeReel     PostType = "reel"
	PostTypeImage    PostType = "image"
	PostTypeCarousel PostType = "carousel"
	PostTypeVideo    PostType = "video"
)

// PostTypes lists every known post type in canonical order.
var PostTypes = []PostType{PostTypeReel, PostTypeImage, PostTypeCarousel, PostTypeVideo}

// ParsePostType validates a raw post type value.
func ParsePostType(s string) (PostType, error) {
	pt := PostType(strings.ToLower(strings.TrimSpace(s)))
	for _, known := range PostTypes {
		if pt == known {
			return pt, nil
		}
	}
	return "", fmt.Errorf("unknown post type %q", s)
}

// Weekday is a day name as it appears in the dataset ("Monday".."Sunday").
type Weekday string

// Weekdays lists days in calendar order starting on Monday.
var Weekdays = []Weekday{"Monday", "Tuesday", "Wednesday", "Thursday", "Friday", "Saturday", "Sunday"}

// ParseWeekday validates a day name, accepting any letter case.
func ParseWeekday(s string) (Weekday, error) {
	s = strings.TrimSpace(s)
	for _, d := range Weekdays {
		if strings.EqualFold(s, string(d)) {
			return d, nil
		}
	}
	return "", fmt.Errorf("unknown day of week %q", s)
}

// WeekdayIndex returns the Monday-based position of d, or len(Weekdays) when unknown.
func WeekdayIndex(d Weekday) int {
	for i, w := range Weekdays {
		if w == d {
			return i
		}
	}
	return len(Weekdays)
}

const (
	DefaultBestHour = 12
	DefaultBestDay  = Weekday("Monday")
)

// Record is a single engagement row. Records are immutable once loaded.
type Record struct {
	PostID    string
	PostType  PostType
	Timestamp time.Time
	Likes     int
	Comments  int
	Shares    int
	Views     int
	Content   string
	DayOfWeek Weekday
	Hour      int
}

// Interactions is likes + comments + shares.
func (r Record) Interactions() int {
	return r.Likes + r.Comments + r.Shares
}

// EngagementRate returns (likes+comments+shares)/views. The second value is
// false when views is zero and the rate is undefined.
func (r Record) EngagementRate() (float64, bool) {
	if r.Views <= 0 {
		return 0, false
	}
	return float64(r.Interactions()) / float64(r.Views), true
}

// Validate checks field ranges.
func (r Record) Validate() error {
	if r.PostID == "" {
		return fmt.Errorf("empty post_id")
	}
	if r.Likes < 0 || r.Comments < 0 || r.Shares < 0 || r.Views < 0 {
		return fmt.Errorf("post %s: negative metric", r.PostID)
	}
	if r.Hour < 0 || r.Hour > 23 {
		return fmt.Errorf("post %s: hour %d out of range", r.PostID, r.Hour)
	}
	return nil
}
