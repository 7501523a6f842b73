package pagination

import (
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/redmonkez12/neonkeys-api/internal/apperror"
)

func TestNewPage_PagesIsCeil(t *testing.T) {
	cases := []struct {
		total, limit, pages int
	}{
		{0, 10, 0},
		{1, 10, 1},
		{10, 10, 1},
		{11, 10, 2},
		{25, 7, 4},
		{100, 1, 100},
	}
	for _, tc := range cases {
		page := NewPage(tc.total, Params{Limit: tc.limit, Offset: 3})
		assert.Equal(t, tc.pages, page.Pages, "total=%d limit=%d", tc.total, tc.limit)
		assert.Equal(t, tc.total, page.Total)
		assert.Equal(t, 3, page.Offset)
	}
}

func TestFromQuery_Defaults(t *testing.T) {
	params, err := FromQuery(url.Values{})
	require.NoError(t, err)
	assert.Equal(t, Params{Limit: DefaultLimit, Offset: 0}, params)
}

func TestFromQuery_Values(t *testing.T) {
	params, err := FromQuery(url.Values{"limit": {"5"}, "offset": {"20"}})
	require.NoError(t, err)
	assert.Equal(t, Params{Limit: 5, Offset: 20}, params)
}

func TestFromQuery_Invalid(t *testing.T) {
	for _, q := range []url.Values{
		{"limit": {"0"}},
		{"limit": {"-1"}},
		{"limit": {"101"}},
		{"limit": {"ten"}},
		{"offset": {"-5"}},
		{"offset": {"x"}},
	} {
		_, err := FromQuery(q)
		assert.Equal(t, apperror.CodeValidation, apperror.CodeOf(err), q.Encode())
	}
}
