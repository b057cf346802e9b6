package domain

import (
	"encoding/json"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParsers(t *testing.T) {
	pt, err := ParsePostType(" Carousel ")
	require.NoError(t, err)
	assert.Equal(t, PostTypeCarousel, pt)
	_, err = ParsePostType("story")
	assert.Error(t, err)

	d, err := ParseWeekday("sUNDAY")
	require.NoError(t, err)
	assert.Equal(t, Weekday("Sunday"), d)
	assert.Equal(t, 6, WeekdayIndex(d))
	_, err = ParseWeekday("Funday")
	assert.Error(t, err)
}

func TestRecord_EngagementRate(t *testing.T) {
	r := Record{PostID: "x", Likes: 10, Comments: 5, Shares: 5, Views: 200}
	rate, ok := r.EngagementRate()
	require.True(t, ok)
	assert.InDelta(t, 0.1, rate, 1e-12)
	assert.Equal(t, 20, r.Interactions())
	assert.Equal(t, 200, r.Value(MetricViews))

	r.Views = 0
	_, ok = r.EngagementRate()
	assert.False(t, ok)
}

func TestSnapshot_Validate(t *testing.T) {
	s := NewSnapshot()
	require.NoError(t, s.Validate())

	s.TotalPosts = 1
	s.PostTypeDistribution[PostTypeReel] = 1
	assert.Error(t, s.Validate())

	for _, m := range Metrics {
		s.AvgEngagementByType.For(m)[PostTypeReel] = 1
	}
	s.BestTimeByPostType[PostTypeReel] = 12
	s.BestDayByPostType[PostTypeReel] = "Monday"
	s.EngagementRateByType[PostTypeReel] = 0.1
	require.NoError(t, s.Validate())
	assert.Equal(t, []PostType{PostTypeReel}, s.PostTypes())

	s.EngagementRateByType[PostTypeReel] = math.NaN()
	assert.Error(t, s.Validate())
}

func TestExchange_JSON(t *testing.T) {
	data, err := json.Marshal(UserSaid("hi"))
	require.NoError(t, err)
	assert.JSONEq(t, `{"role":"user","content":"hi"}`, string(data))
}
