package content

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestExtractMeta(t *testing.T) {
	t.Parallel()

	raw := []byte(`<meta x-title="A binary blog">
<meta x-date="2023-04-01">
<meta x-description="Why ship posts &amp; assets in one binary">

# Heading
`)
	meta := ExtractMeta(raw)
	require.NotNil(t, meta.Title)
	require.Equal(t, "A binary blog", *meta.Title)
	require.NotNil(t, meta.Date)
	require.Equal(t, "2023-04-01", *meta.Date)
	require.NotNil(t, meta.Description)
	require.Equal(t, "Why ship posts & assets in one binary", *meta.Description)
}

func TestExtractMetaAbsentMarkers(t *testing.T) {
	t.Parallel()

	meta := ExtractMeta([]byte("# just markdown\n\n<meta name=\"x\">\n"))
	require.Nil(t, meta.Title)
	require.Nil(t, meta.Date)
	require.Nil(t, meta.Description)
}

func TestExtractMetaFirstMarkerWins(t *testing.T) {
	t.Parallel()

	meta := ExtractMeta([]byte(`<meta x-title="first"><meta x-title="second">`))
	require.NotNil(t, meta.Title)
	require.Equal(t, "first", *meta.Title)
}

func TestStripMeta(t *testing.T) {
	t.Parallel()

	raw := []byte("<meta x-title=\"T\">\n  <meta x-date=\"2023-01-01\" />\nbody text\n")
	require.Equal(t, "body text\n", string(StripMeta(raw)))
}

func TestPathDate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		path string
		want time.Time
		ok   bool
	}{
		{"20230706-binary-blog", time.Date(2023, 7, 6, 0, 0, 0, 0, time.UTC), true},
		{"20231399-bad-month", time.Time{}, false},
		{"2023076-short", time.Time{}, false},
		{"binary-blog", time.Time{}, false},
		{"20230706", time.Time{}, false},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.path, func(t *testing.T) {
			t.Parallel()
			got, ok := PathDate(tt.path)
			require.Equal(t, tt.ok, ok)
			require.True(t, tt.want.Equal(got), "got %v want %v", got, tt.want)
		})
	}
}

func TestMarkerDate(t *testing.T) {
	t.Parallel()

	got, ok := MarkerDate("2023-04-01")
	require.True(t, ok)
	require.Equal(t, time.Date(2023, 4, 1, 0, 0, 0, 0, time.UTC), got)

	got, ok = MarkerDate("2023-04-01T10:00:00+02:00")
	require.True(t, ok)
	require.Equal(t, time.Date(2023, 4, 1, 8, 0, 0, 0, time.UTC), got)

	_, ok = MarkerDate("April 1st")
	require.False(t, ok)
}

func TestResolveDatePrecedence(t *testing.T) {
	t.Parallel()

	build := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)
	marker := "2022-02-02"
	bad := "not a date"

	tests := []struct {
		name   string
		path   string
		meta   Meta
		want   time.Time
		source dateSource
	}{
		{
			name:   "path prefix beats marker",
			path:   "20230706-post",
			meta:   Meta{Date: &marker},
			want:   time.Date(2023, 7, 6, 0, 0, 0, 0, time.UTC),
			source: dateFromPath,
		},
		{
			name:   "marker when no prefix",
			path:   "post",
			meta:   Meta{Date: &marker},
			want:   time.Date(2022, 2, 2, 0, 0, 0, 0, time.UTC),
			source: dateFromMarker,
		},
		{
			name:   "malformed prefix falls through to marker",
			path:   "20231340-post",
			meta:   Meta{Date: &marker},
			want:   time.Date(2022, 2, 2, 0, 0, 0, 0, time.UTC),
			source: dateFromMarker,
		},
		{
			name:   "malformed marker falls through to build time",
			path:   "post",
			meta:   Meta{Date: &bad},
			want:   build,
			source: dateFromBuild,
		},
		{
			name:   "nothing at all",
			path:   "post",
			want:   build,
			source: dateFromBuild,
		},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got, source := resolveDate(tt.path, tt.meta, build)
			require.True(t, tt.want.Equal(got), "got %v want %v", got, tt.want)
			require.Equal(t, tt.source, source)
		})
	}
}
