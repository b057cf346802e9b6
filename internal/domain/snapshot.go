package domain

import (
	"fmt"
	"math"
)

// Metric names one of the four raw engagement counters.
type Metric string

const (
	MetricLikes    Metric = "likes"
	MetricComments Metric = "comments"
	MetricShares   Metric = "shares"
	MetricViews    Metric = "views"
)

// Metrics lists the raw counters in display order.
var Metrics = []Metric{MetricLikes, MetricComments, MetricShares, MetricViews}

// Value returns the record's counter for m.
func (r Record) Value(m Metric) int {
	switch m {
	case MetricLikes:
		return r.Likes
	case MetricComments:
		return r.Comments
	case MetricShares:
		return r.Shares
	case MetricViews:
		return r.Views
	}
	return 0
}

// AvgEngagement holds mean counters per post type, one mapping per metric.
type AvgEngagement struct {
	Likes    map[PostType]float64 `json:"likes"`
	Comments map[PostType]float64 `json:"comments"`
	Shares   map[PostType]float64 `json:"shares"`
	Views    map[PostType]float64 `json:"views"`
}

// For returns the per-type means of metric m.
func (a AvgEngagement) For(m Metric) map[PostType]float64 {
	switch m {
	case MetricLikes:
		return a.Likes
	case MetricComments:
		return a.Comments
	case MetricShares:
		return a.Shares
	case MetricViews:
		return a.Views
	}
	return nil
}

// Snapshot is the durable aggregate-statistics artifact derived from a dataset.
type Snapshot struct {
	TotalPosts           int                  `json:"total_posts"`
	PostTypeDistribution map[PostType]int     `json:"post_type_distribution"`
	AvgEngagementByType  AvgEngagement        `json:"avg_engagement_by_type"`
	BestTimeByPostType   map[PostType]int     `json:"best_time_by_post_type"`
	BestDayByPostType    map[PostType]Weekday `json:"best_day_by_post_type"`
	EngagementRateByType map[PostType]float64 `json:"engagement_rate_by_type"`
}

// NewSnapshot returns a snapshot with every mapping allocated.
func NewSnapshot() Snapshot {
	return Snapshot{
		PostTypeDistribution: map[PostType]int{},
		AvgEngagementByType: AvgEngagement{
			Likes:    map[PostType]float64{},
			Comments: map[PostType]float64{},
			Shares:   map[PostType]float64{},
			Views:    map[PostType]float64{},
		},
		BestTimeByPostType:   map[PostType]int{},
		BestDayByPostType:    map[PostType]Weekday{},
		EngagementRateByType: map[PostType]float64{},
	}
}

// PostTypes returns the post types present in the distribution, in canonical order.
func (s Snapshot) PostTypes() []PostType {
	var out []PostType
	for _, pt := range PostTypes {
		if _, ok := s.PostTypeDistribution[pt]; ok {
			out = append(out, pt)
		}
	}
	return out
}

// Validate checks that every post type in the distribution has an entry in
// every sub-mapping and that no value is non-finite.
func (s Snapshot) Validate() error {
	if s.TotalPosts < 0 {
		return fmt.Errorf("negative total_posts")
	}
	sum := 0
	for pt, n := range s.PostTypeDistribution {
		sum += n
		for _, m := range Metrics {
			v, ok := s.AvgEngagementByType.For(m)[pt]
			if !ok {
				return fmt.Errorf("missing avg %s for %s", m, pt)
			}
			if math.IsNaN(v) || math.IsInf(v, 0) {
				return fmt.Errorf("non-finite avg %s for %s", m, pt)
			}
		}
		h, ok := s.BestTimeByPostType[pt]
		if !ok {
			return fmt.Errorf("missing best time for %s", pt)
		}
		if h < 0 || h > 23 {
			return fmt.Errorf("best time %d for %s out of range", h, pt)
		}
		if _, ok := s.BestDayByPostType[pt]; !ok {
			return fmt.Errorf("missing best day for %s", pt)
		}
		r, ok := s.EngagementRateByType[pt]
		if !ok {
			return fmt.Errorf("missing engagement rate for %s", pt)
		}
		if math.IsNaN(r) || math.IsInf(r, 0) {
			return fmt.Errorf("non-finite engagement rate for %s", pt)
		}
	}
	if sum != s.TotalPosts {
		return fmt.Errorf("distribution sums to %d, total_posts is %d", sum, s.TotalPosts)
	}
	return nil
}
