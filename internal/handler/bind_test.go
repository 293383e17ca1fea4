package handler

import (
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/require"
)

func jsonContext(t *testing.T, body string) echo.Context {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest("POST", "/", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	return e.NewContext(req, httptest.NewRecorder())
}

func TestDecodeBodyAliases(t *testing.T) {
	c := jsonContext(t, `{"categoryId": 3, "start_price": "500", "immediatePurchasePrice": 2000, "title": "camera"}`)
	m, err := decodeBody(c)
	require.NoError(t, err)

	// camelCase key found under either alias list order.
	id, ok := pickUint(m, "categoryId", "category_id")
	require.True(t, ok)
	require.Equal(t, uint64(3), id)

	// snake_case numeric string still parses.
	start, ok := pickInt(m, "startPrice", "start_price")
	require.True(t, ok)
	require.Equal(t, int64(500), start)

	buyNow, ok := pickInt(m, "immediatePurchasePrice", "immediate_purchase_price")
	require.True(t, ok)
	require.Equal(t, int64(2000), buyNow)

	title, ok := pickString(m, "title")
	require.True(t, ok)
	require.Equal(t, "camera", title)

	_, ok = pickInt(m, "minPrice", "min_price")
	require.False(t, ok)
}

func TestPickIntLargeAmountsSurviveExactly(t *testing.T) {
	// json.Number keeps amounts above 2^53 intact.
	c := jsonContext(t, `{"amount": 9007199254740995}`)
	m, err := decodeBody(c)
	require.NoError(t, err)

	amount, ok := pickInt(m, "amount")
	require.True(t, ok)
	require.Equal(t, int64(9007199254740995), amount)
}

func TestParseTimeValue(t *testing.T) {
	tests := []struct {
		in   string
		want time.Time
		ok   bool
	}{
		{"2026-04-01T10:30:00Z", time.Date(2026, 4, 1, 10, 30, 0, 0, time.UTC), true},
		{"2026-04-01 10:30:00", time.Date(2026, 4, 1, 10, 30, 0, 0, time.UTC), true},
		{"2026-04-01T10:30", time.Date(2026, 4, 1, 10, 30, 0, 0, time.UTC), true},
		{"2026-04-01", time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC), true},
		{"next tuesday", time.Time{}, false},
		{"", time.Time{}, false},
	}
	for _, tt := range tests {
		got, ok := parseTimeValue(tt.in)
		require.Equal(t, tt.ok, ok, "input=%q", tt.in)
		if tt.ok {
			require.True(t, got.Equal(tt.want), "input=%q got=%v", tt.in, got)
		}
	}
}
