// Package docs turns the dataset and its snapshot into retrievable text documents.
package docs

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
	"unicode/utf8"

	"engagerag/internal/domain"
	"engagerag/internal/stats"
)

// SampleEvery is the stride between sampled posts, in source order.
const SampleEvery = 100

var (
	defaultTopHours    = []int{12, 18, 9}
	defaultTopDays     = []domain.Weekday{"Monday", "Thursday", "Saturday"}
	defaultPeakHours   = []int{12, 18, 9, 19, 20}
	defaultLowestHours = []int{3, 4, 5, 2, 1}
)

// Build synthesizes the document set. The output depends only on its inputs:
// statistics, one analysis per post type, hour and day analyses, one
// recommendation per post type and a sample of every SampleEvery-th record.
func Build(records []domain.Record, snap domain.Snapshot) []domain.Document {
	types := stats.DistinctPostTypes(records)
	out := make([]domain.Document, 0, ExpectedCount(len(types), len(records)))

	out = append(out, domain.Document{
		ID:       "statistics",
		Text:     summary(snap, false),
		Category: domain.CategoryStatistics,
		Tags:     map[string]string{"source": "aggregated_data"},
	})
	for _, pt := range types {
		out = append(out, domain.Document{
			ID:       "post_type_analysis:" + string(pt),
			Text:     postTypeAnalysis(records, snap, pt),
			Category: domain.CategoryPostTypeAnalysis,
			Tags:     map[string]string{"post_type": string(pt)},
		})
	}
	out = append(out, domain.Document{
		ID:       "time_analysis",
		Text:     hourAnalysis(records, snap, types),
		Category: domain.CategoryTimeAnalysis,
	})
	out = append(out, domain.Document{
		ID:       "day_analysis",
		Text:     dayAnalysis(records, snap, types),
		Category: domain.CategoryDayAnalysis,
	})
	for _, pt := range types {
		out = append(out, domain.Document{
			ID:       "recommendations:" + string(pt),
			Text:     recommendations(records, snap, pt),
			Category: domain.CategoryRecommendations,
			Tags:     map[string]string{"post_type": string(pt)},
		})
	}
	for i := 0; i < len(records); i += SampleEvery {
		r := records[i]
		out = append(out, domain.Document{
			ID:       "sample_post:" + strconv.Itoa(i),
			Text:     samplePost(r),
			Category: domain.CategorySamplePost,
			Tags: map[string]string{
				"post_type": string(r.PostType),
				"post_id":   r.PostID,
				"day":       string(r.DayOfWeek),
				"hour":      strconv.Itoa(r.Hour),
			},
		})
	}
	return out
}

// ExpectedCount is 1 + 2*D + 2 + ceil(R/SampleEvery).
func ExpectedCount(distinctTypes, records int) int {
	return 1 + 2*distinctTypes + 2 + (records+SampleEvery-1)/SampleEvery
}

func postTypeAnalysis(records []domain.Record, snap domain.Snapshot, pt domain.PostType) string {
	group := stats.FilterByType(records, pt)
	rate, _ := stats.MeanRate(group)

	topHours := defaultTopHours
	if ranked := stats.RankHours(stats.MeanRateByHour(group)); len(ranked) > 0 {
		topHours = nil
		for i := 0; i < len(ranked) && i < 3; i++ {
			topHours = append(topHours, ranked[i].Hour)
		}
	}
	topDays := defaultTopDays
	if ranked := stats.RankDays(stats.MeanRateByDay(group)); len(ranked) > 0 {
		topDays = nil
		for i := 0; i < len(ranked) && i < 3; i++ {
			topDays = append(topDays, ranked[i].Day)
		}
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Detailed analysis for %s posts:\n", pt)
	for _, m := range domain.Metrics {
		fmt.Fprintf(&b, "Average %s: %.1f\n", m, stats.MeanMetric(group, m))
	}
	fmt.Fprintf(&b, "Engagement rate: %.3f\n", rate)
	fmt.Fprintf(&b, "Best posting hours: %s\n", formatHours(topHours))
	fmt.Fprintf(&b, "Best posting days: %s\n", formatDays(topDays))
	fmt.Fprintf(&b, "Post count: %d\n", len(group))
	fmt.Fprintf(&b, "Performance compared to other types: %s", comparativeRank(snap, pt))
	return b.String()
}

// Rank returns the 1-based position of pt among the snapshot's post types
// when ordered by mean metric m, highest first, and the number of types ranked.
func Rank(snap domain.Snapshot, pt domain.PostType, m domain.Metric) (int, int) {
	means := snap.AvgEngagementByType.For(m)
	types := snap.PostTypes()
	sort.SliceStable(types, func(i, j int) bool { return means[types[i]] > means[types[j]] })
	for i, t := range types {
		if t == pt {
			return i + 1, len(types)
		}
	}
	return len(types), len(types)
}

func comparativeRank(snap domain.Snapshot, pt domain.PostType) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Performance metrics for %s posts:\n", pt)
	for _, m := range domain.Metrics {
		fmt.Fprintf(&b, "- Average %s: %.1f\n", m, snap.AvgEngagementByType.For(m)[pt])
	}
	b.WriteString("\nRanking by metric:\n")
	for _, m := range domain.Metrics {
		rank, total := Rank(snap, pt, m)
		fmt.Fprintf(&b, "- %s: %d of %d\n", m, rank, total)
	}
	return b.String()
}

func hourAnalysis(records []domain.Record, snap domain.Snapshot, types []domain.PostType) string {
	peak, lowest := defaultPeakHours, defaultLowestHours
	if ranked := stats.RankHours(stats.MeanRateByHour(records)); len(ranked) > 0 {
		peak, lowest = nil, nil
		for i := 0; i < len(ranked) && i < 5; i++ {
			peak = append(peak, ranked[i].Hour)
		}
		start := len(ranked) - 5
		if start < 0 {
			start = 0
		}
		for _, hr := range ranked[start:] {
			lowest = append(lowest, hr.Hour)
		}
	}

	var b strings.Builder
	b.WriteString("Hour of day engagement analysis:\n")
	fmt.Fprintf(&b, "Peak engagement hours: %s\n", formatHours(peak))
	fmt.Fprintf(&b, "Lowest engagement hours: %s\n\n", formatHours(lowest))
	b.WriteString("Best hours by post type:\n")
	for _, pt := range types {
		fmt.Fprintf(&b, "- %s: %02d:00\n", pt, bestHour(snap, pt))
	}
	return b.String()
}

func dayAnalysis(records []domain.Record, snap domain.Snapshot, types []domain.PostType) string {
	var b strings.Builder
	b.WriteString("Day of week engagement analysis:\n")
	b.WriteString("Day of week engagement ranking (best to worst):\n")
	ranked := stats.RankDays(stats.MeanRateByDay(records))
	if len(ranked) == 0 {
		b.WriteString("(No day-specific engagement data available)\n")
	}
	for i, dr := range ranked {
		fmt.Fprintf(&b, "%d. %s: %.3f engagement rate\n", i+1, dr.Day, dr.Rate)
	}
	b.WriteString("\nBest days by post type:\n")
	for _, pt := range types {
		fmt.Fprintf(&b, "- %s: %s\n", pt, bestDay(snap, pt))
	}
	return b.String()
}

var tactics = map[domain.PostType][]string{
	domain.PostTypeReel: {
		"Keep videos short (15-30 seconds) to maximize retention",
		"Use trending audio or music to increase discoverability",
		"Include a strong hook in the first 3 seconds",
		"Add text overlays for viewers watching without sound",
	},
	domain.PostTypeImage: {
		"Use high-quality, visually striking images",
		"Incorporate strong color contrast to stand out in feeds",
		"Ask a question in the caption to encourage comments",
		"Consider carousel posts which typically outperform single images",
	},
	domain.PostTypeCarousel: {
		"Put your strongest image first to encourage swipes",
		"Use 3-10 slides for optimal engagement",
		"Tell a coherent story across slides",
		"Include a call-to-action in the final slide",
	},
	domain.PostTypeVideo: {
		"Focus on the first 10 seconds to capture attention",
		"Add captions to increase accessibility and engagement",
		"Keep videos under 2 minutes for highest completion rates",
		"End with a clear call-to-action",
	},
}

// ContentProfile is the mean hashtag count and content length of the
// top-decile posts by engagement rate.
type ContentProfile struct {
	Hashtags float64
	Length   float64
}

// TopDecileProfile looks at the best max(1, n/10) rated posts of group, where n
// counts every post in the group. Both values are 0 when nothing is rated.
func TopDecileProfile(group []domain.Record) ContentProfile {
	type scored struct {
		rec  domain.Record
		rate float64
	}
	var rated []scored
	for _, r := range group {
		if rate, ok := r.EngagementRate(); ok {
			rated = append(rated, scored{r, rate})
		}
	}
	if len(rated) == 0 {
		return ContentProfile{}
	}
	sort.SliceStable(rated, func(i, j int) bool { return rated[i].rate > rated[j].rate })
	n := len(group) / 10
	if n < 1 {
		n = 1
	}
	if n > len(rated) {
		n = len(rated)
	}
	var tags, length float64
	for _, s := range rated[:n] {
		tags += float64(strings.Count(s.rec.Content, "#"))
		length += float64(utf8.RuneCountInString(s.rec.Content))
	}
	return ContentProfile{Hashtags: tags / float64(n), Length: length / float64(n)}
}

func recommendations(records []domain.Record, snap domain.Snapshot, pt domain.PostType) string {
	profile := TopDecileProfile(stats.FilterByType(records, pt))

	var b strings.Builder
	fmt.Fprintf(&b, "Improvement recommendations for %s posts:\n\n", pt)
	b.WriteString("1. Posting Strategy:\n")
	fmt.Fprintf(&b, "   - Best time to post: %d:00\n", bestHour(snap, pt))
	fmt.Fprintf(&b, "   - Best day to post: %s\n", bestDay(snap, pt))
	b.WriteString("   - Consider creating a posting schedule that targets these peak engagement times\n\n")
	b.WriteString("2. Content Strategy:\n")
	fmt.Fprintf(&b, "   - Optimal hashtag count: %.1f hashtags\n", profile.Hashtags)
	fmt.Fprintf(&b, "   - Optimal content length: %.0f characters\n\n", profile.Length)
	b.WriteString("3. Engagement Tactics:\n")
	for _, t := range tactics[pt] {
		fmt.Fprintf(&b, "   - %s\n", t)
	}
	return b.String()
}

func samplePost(r domain.Record) string {
	posted := "unknown time"
	if !r.Timestamp.IsZero() {
		posted = r.Timestamp.Format("2006-01-02 15:04:05")
	}
	rate := "n/a"
	if v, ok := r.EngagementRate(); ok {
		rate = strconv.FormatFloat(v, 'f', 3, 64)
	}
	var b strings.Builder
	fmt.Fprintf(&b, "Sample %s post:\n", r.PostType)
	fmt.Fprintf(&b, "Posted: %s (%s at hour %d)\n", posted, r.DayOfWeek, r.Hour)
	fmt.Fprintf(&b, "Content: %s\n", r.Content)
	fmt.Fprintf(&b, "Performance: %d likes, %d comments, %d shares, %d views\n", r.Likes, r.Comments, r.Shares, r.Views)
	fmt.Fprintf(&b, "Engagement rate: %s\n", rate)
	return b.String()
}

func bestHour(snap domain.Snapshot, pt domain.PostType) int {
	if h, ok := snap.BestTimeByPostType[pt]; ok {
		return h
	}
	return domain.DefaultBestHour
}

func bestDay(snap domain.Snapshot, pt domain.PostType) domain.Weekday {
	if d, ok := snap.BestDayByPostType[pt]; ok {
		return d
	}
	return domain.DefaultBestDay
}
