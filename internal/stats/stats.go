// Package stats computes the aggregate engagement snapshot and keeps it on disk.
package stats

import (
	"sort"

	"engagerag/internal/domain"
)

// HourRate is the mean engagement rate of the rated records posted at Hour.
type HourRate struct {
	Hour int
	Rate float64
	N    int
}

// DayRate is the mean engagement rate of the rated records posted on Day.
type DayRate struct {
	Day  domain.Weekday
	Rate float64
	N    int
}

// Compute aggregates records into a snapshot. With zero records it returns
// ErrEmptyDataset together with an empty, valid snapshot.
func Compute(records []domain.Record) (domain.Snapshot, error) {
	snap := domain.NewSnapshot()
	if len(records) == 0 {
		return snap, domain.ErrEmptyDataset
	}
	snap.TotalPosts = len(records)

	for _, pt := range DistinctPostTypes(records) {
		group := FilterByType(records, pt)
		snap.PostTypeDistribution[pt] = len(group)
		for _, m := range domain.Metrics {
			snap.AvgEngagementByType.For(m)[pt] = MeanMetric(group, m)
		}

		snap.BestTimeByPostType[pt] = domain.DefaultBestHour
		if hours := RankHours(MeanRateByHour(group)); len(hours) > 0 {
			snap.BestTimeByPostType[pt] = hours[0].Hour
		}
		snap.BestDayByPostType[pt] = domain.DefaultBestDay
		if days := RankDays(MeanRateByDay(group)); len(days) > 0 {
			snap.BestDayByPostType[pt] = days[0].Day
		}

		rate, _ := MeanRate(group)
		snap.EngagementRateByType[pt] = rate
	}
	return snap, nil
}

// DistinctPostTypes returns post types in order of first appearance.
func DistinctPostTypes(records []domain.Record) []domain.PostType {
	seen := make(map[domain.PostType]struct{})
	var out []domain.PostType
	for _, r := range records {
		if _, ok := seen[r.PostType]; ok {
			continue
		}
		seen[r.PostType] = struct{}{}
		out = append(out, r.PostType)
	}
	return out
}

// FilterByType keeps the records of one post type, preserving order.
func FilterByType(records []domain.Record, pt domain.PostType) []domain.Record {
	var out []domain.Record
	for _, r := range records {
		if r.PostType == pt {
			out = append(out, r)
		}
	}
	return out
}

// MeanMetric is the arithmetic mean of metric m, 0 for no records.
func MeanMetric(records []domain.Record, m domain.Metric) float64 {
	if len(records) == 0 {
		return 0
	}
	sum := 0.0
	for _, r := range records {
		sum += float64(r.Value(m))
	}
	return sum / float64(len(records))
}

// MeanRate averages the engagement rate over records with views > 0. The
// second value is false when no record could be rated.
func MeanRate(records []domain.Record) (float64, bool) {
	sum, n := 0.0, 0
	for _, r := range records {
		if rate, ok := r.EngagementRate(); ok {
			sum += rate
			n++
		}
	}
	if n == 0 {
		return 0, false
	}
	return sum / float64(n), true
}

// MeanRateByHour groups rated records by hour, ascending. Hours with no rated
// record are omitted.
func MeanRateByHour(records []domain.Record) []HourRate {
	var sums [24]float64
	var counts [24]int
	for _, r := range records {
		rate, ok := r.EngagementRate()
		if !ok || r.Hour < 0 || r.Hour > 23 {
			continue
		}
		sums[r.Hour] += rate
		counts[r.Hour]++
	}
	var out []HourRate
	for h := 0; h < 24; h++ {
		if counts[h] > 0 {
			out = append(out, HourRate{Hour: h, Rate: sums[h] / float64(counts[h]), N: counts[h]})
		}
	}
	return out
}

// MeanRateByDay groups rated records by day, Monday first. Days with no rated
// record are omitted.
func MeanRateByDay(records []domain.Record) []DayRate {
	sums := make([]float64, len(domain.Weekdays))
	counts := make([]int, len(domain.Weekdays))
	for _, r := range records {
		rate, ok := r.EngagementRate()
		if !ok {
			continue
		}
		i := domain.WeekdayIndex(r.DayOfWeek)
		if i >= len(domain.Weekdays) {
			continue
		}
		sums[i] += rate
		counts[i]++
	}
	var out []DayRate
	for i, d := range domain.Weekdays {
		if counts[i] > 0 {
			out = append(out, DayRate{Day: d, Rate: sums[i] / float64(counts[i]), N: counts[i]})
		}
	}
	return out
}

// RankHours sorts by rate descending; equal rates keep ascending hour order.
func RankHours(rates []HourRate) []HourRate {
	out := append([]HourRate(nil), rates...)
	sort.SliceStable(out, func(i, j int) bool { return out[i].Rate > out[j].Rate })
	return out
}

// RankDays sorts by rate descending; equal rates keep Monday-first order.
func RankDays(rates []DayRate) []DayRate {
	out := append([]DayRate(nil), rates...)
	sort.SliceStable(out, func(i, j int) bool { return out[i].Rate > out[j].Rate })
	return out
}
