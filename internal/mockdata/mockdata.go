// Package mockdata holds the fixed figures served by the dashboard endpoints
// that are not backed by the analytics engine.
package mockdata

import "engagerag/internal/domain"

type TypeAnalytics struct {
	EngagementRate float64 `json:"engagement_rate"`
	AvgLikes       int     `json:"avg_likes"`
	AvgComments    int     `json:"avg_comments"`
	AvgShares      int     `json:"avg_shares"`
	BestTime       string  `json:"best_time"`
	BestDay        string  `json:"best_day"`
	TotalPosts     int     `json:"total_posts"`
}

type AnalyticsSummary struct {
	EngagementRateByType map[domain.PostType]float64 `json:"engagement_rate_by_type"`
	BestTimes            map[domain.PostType]string  `json:"best_times"`
	BestDays             map[domain.PostType]string  `json:"best_days"`
	PostDistribution     map[domain.PostType]int     `json:"post_distribution"`
}

type BestTime struct {
	Day    string `json:"day"`
	Time   string `json:"time"`
	Reason string `json:"reason"`
}

type MetricsSummary struct {
	TotalPosts        int     `json:"total_posts"`
	TotalLikes        int     `json:"total_likes"`
	TotalComments     int     `json:"total_comments"`
	TotalShares       int     `json:"total_shares"`
	TotalViews        int     `json:"total_views"`
	AvgEngagementRate float64 `json:"avg_engagement_rate"`
	BestPostType      string  `json:"best_post_type"`
	BestTimeOverall   string  `json:"best_time_overall"`
}

var byType = map[domain.PostType]TypeAnalytics{
	domain.PostTypeReel:     {EngagementRate: 4.2, AvgLikes: 420, AvgComments: 32, AvgShares: 57, BestTime: "19:00", BestDay: "Sunday", TotalPosts: 120},
	domain.PostTypeImage:    {EngagementRate: 1.9, AvgLikes: 210, AvgComments: 18, AvgShares: 12, BestTime: "12:00", BestDay: "Wednesday", TotalPosts: 350},
	domain.PostTypeCarousel: {EngagementRate: 3.1, AvgLikes: 315, AvgComments: 28, AvgShares: 25, BestTime: "20:00", BestDay: "Saturday", TotalPosts: 210},
	domain.PostTypeVideo:    {EngagementRate: 2.8, AvgLikes: 280, AvgComments: 24, AvgShares: 35, BestTime: "21:00", BestDay: "Friday", TotalPosts: 90},
}

var bestTimes = map[domain.PostType]BestTime{
	domain.PostTypeReel:     {Day: "Sunday", Time: "19:00", Reason: "31% higher engagement than average"},
	domain.PostTypeImage:    {Day: "Wednesday", Time: "12:00", Reason: "22% higher engagement than average"},
	domain.PostTypeCarousel: {Day: "Saturday", Time: "20:00", Reason: "27% higher engagement than average"},
	domain.PostTypeVideo:    {Day: "Friday", Time: "21:00", Reason: "25% higher engagement than average"},
}

var generalRecommendations = []string{
	"Post at least 3-4 times per week to maintain audience engagement",
	"Use 3-5 relevant hashtags per post to increase discoverability",
	"Include a clear call-to-action in your captions to boost comment rates",
	"Respond to comments within 1 hour to increase follower loyalty",
	"Analyze your top-performing posts monthly and create similar content",
}

var typeRecommendations = map[domain.PostType][]string{
	domain.PostTypeReel: {
		"Keep reels under 30 seconds for highest completion rates",
		"Use trending audio to increase discoverability",
		"Include text overlays for viewers watching without sound",
		"Start with a strong hook in the first 3 seconds",
		"Post reels on Sunday evening between 6-8 PM for maximum reach",
	},
	domain.PostTypeImage: {
		"Use high-quality, bright images that stand out in the feed",
		"Ask a question in the caption to encourage comments",
		"Consider converting some image posts to carousels for higher engagement",
		"Post images mid-week during lunch hours (11 AM - 1 PM)",
		"Include a human element in your images when possible",
	},
	domain.PostTypeCarousel: {
		"Use 3-10 slides for optimal engagement",
		"Put your strongest image first to encourage swipes",
		"Include a mix of informational and visual slides",
		"Add a CTA on the final slide",
		"Use carousels for tutorials and multi-part stories",
	},
	domain.PostTypeVideo: {
		"Keep videos under 2 minutes for highest completion rates",
		"Add captions to increase accessibility",
		"Include a custom thumbnail that entices clicks",
		"Post videos in the evening (7-9 PM) when viewers have more time",
		"Structure videos with a clear beginning, middle and end",
	},
}

// Analytics returns the per-type figures for a known post type and the
// cross-type summary otherwise, together with the chart path for the view.
func Analytics(postType string) (any, string) {
	if pt, err := domain.ParsePostType(postType); err == nil {
		return byType[pt], "/mock-charts/performance_" + string(pt) + ".png"
	}
	s := AnalyticsSummary{
		EngagementRateByType: make(map[domain.PostType]float64, len(byType)),
		BestTimes:            make(map[domain.PostType]string, len(byType)),
		BestDays:             make(map[domain.PostType]string, len(byType)),
		PostDistribution:     make(map[domain.PostType]int, len(byType)),
	}
	for pt, a := range byType {
		s.EngagementRateByType[pt] = a.EngagementRate
		s.BestTimes[pt] = a.BestTime
		s.BestDays[pt] = a.BestDay
		s.PostDistribution[pt] = a.TotalPosts
	}
	chart := "/mock-charts/engagement_by_post_type.png"
	if postType != "" {
		chart = "/mock-charts/performance_" + postType + ".png"
	}
	return s, chart
}

// Recommendations returns tips for postType, or general tips when it is unknown.
func Recommendations(postType string) []string {
	if pt, err := domain.ParsePostType(postType); err == nil {
		return typeRecommendations[pt]
	}
	return generalRecommendations
}

// BestTimes returns the best slot for every post type.
func BestTimes() map[domain.PostType]BestTime {
	out := make(map[domain.PostType]BestTime, len(bestTimes))
	for k, v := range bestTimes {
		out[k] = v
	}
	return out
}

// BestTimeFor returns the best slot for one post type.
func BestTimeFor(postType string) (BestTime, bool) {
	pt, err := domain.ParsePostType(postType)
	if err != nil {
		return BestTime{}, false
	}
	bt, ok := bestTimes[pt]
	return bt, ok
}

// Summary returns the headline metrics across all post types.
func Summary() MetricsSummary {
	return MetricsSummary{
		TotalPosts:        770,
		TotalLikes:        247500,
		TotalComments:     21840,
		TotalShares:       28950,
		TotalViews:        9250000,
		AvgEngagementRate: 3.2,
		BestPostType:      string(domain.PostTypeReel),
		BestTimeOverall:   "19:00 Sunday",
	}
}
