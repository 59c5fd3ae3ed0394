package convert

import (
	"strings"
	"testing"
	"time"
	_ "time/tzdata"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCurrencyFormat(t *testing.T) {
	tests := []struct {
		name      string
		thousands string
		decimal   string
		precision int
		want      string
	}{
		{"comma and dot", ",", ".", 2, "#,###.##"},
		{"dot and comma", ".", ",", 2, "#.###,##"},
		{"space token", "space", ",", 2, "# ###,##"},
		{"space token any case", "SPACE", ".", 3, "# ###.##"},
		{"no precision", ",", ".", 0, "#,###"},
		{"no thousands", "", ".", 2, "####.##"},
		{"none token", "none", ",", 0, "####"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, CurrencyFormat(tt.thousands, tt.decimal, tt.precision))
		})
	}
}

func TestCurrencyFormatDecimalSegment(t *testing.T) {
	for precision := 0; precision <= 4; precision++ {
		format := CurrencyFormat(".", ",", precision)
		segments := strings.Count(format, ",##")
		if precision == 0 {
			assert.Equal(t, 0, segments, format)
			assert.NotContains(t, format, ",")
		} else {
			assert.Equal(t, 1, segments, format)
		}
	}
}

func TestAmount(t *testing.T) {
	assert.Equal(t, "100.0000", Amount(100))
	assert.Equal(t, "0.1235", Amount(0.12346))
	assert.Equal(t, "-2.5000", Amount(-2.5))

	v, err := ParseAmount(" 1,250.50 ")
	require.NoError(t, err)
	assert.Equal(t, 1250.5, v)

	v, err = ParseAmount("")
	require.NoError(t, err)
	assert.Zero(t, v)

	_, err = ParseAmount("abc")
	assert.Error(t, err)
}

func TestParseTime(t *testing.T) {
	ny, err := time.LoadLocation("America/New_York")
	require.NoError(t, err)

	t.Run("datetime converts to UTC", func(t *testing.T) {
		got := ParseTime("2023-01-15 10:00:00", ny)
		require.NotNil(t, got)
		assert.Equal(t, "2023-01-15 15:00:00", got.Format(DateTimeLayout))
		assert.Equal(t, time.UTC, got.Location())
	})

	t.Run("plain date", func(t *testing.T) {
		got := ParseTime("2023-06-01", time.UTC)
		require.NotNil(t, got)
		assert.Equal(t, "2023-06-01 00:00:00", got.Format(DateTimeLayout))
	})

	t.Run("unix timestamp", func(t *testing.T) {
		got := ParseTime("1700000000", ny)
		require.NotNil(t, got)
		assert.Equal(t, int64(1700000000), got.Unix())
	})

	t.Run("zero values", func(t *testing.T) {
		for _, v := range []string{"", "0", "0000-00-00", "0000-00-00 00:00:00", "garbage"} {
			assert.Nil(t, ParseTime(v, ny), v)
		}
	})

	t.Run("fallback", func(t *testing.T) {
		fb := time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC)
		assert.Equal(t, fb, ParseTimeOr("", nil, fb))
	})
}

func TestInvoiceStatus(t *testing.T) {
	assert.Equal(t, "draft", InvoiceStatus(InvoiceDraft))
	assert.Equal(t, "active", InvoiceStatus(InvoiceUnpaid))
	assert.Equal(t, "active", InvoiceStatus(InvoicePaid))
	assert.Equal(t, "active", InvoiceStatus(InvoicePartiallyPaid))
	assert.Equal(t, "void", InvoiceStatus(InvoiceVoid))
	assert.Equal(t, "void", InvoiceStatus(InvoiceRefunded))
	assert.Equal(t, "active", InvoiceStatus(99))

	assert.True(t, InvoiceClosed(InvoicePaid))
	assert.False(t, InvoiceClosed(InvoiceDraft))
	assert.False(t, InvoiceClosed(InvoicePartiallyPaid))
}

func TestTransactionStatus(t *testing.T) {
	assert.Equal(t, "approved", TransactionStatus(true, "charge", InvoicePaid))
	assert.Equal(t, "void", TransactionStatus(true, "charge", InvoiceRefunded))
	assert.Equal(t, "refunded", TransactionStatus(true, "refund", InvoiceRefunded))
	assert.Equal(t, "refunded", TransactionStatus(false, " Refund ", InvoicePaid))
	assert.Equal(t, "declined", TransactionStatus(false, "charge", InvoiceRefunded))
}

func TestTicketMaps(t *testing.T) {
	assert.Equal(t, "closed", TicketStatus("4"))
	assert.Equal(t, "open", TicketStatus("0"))
	assert.Equal(t, "open", TicketStatus("1"))
	assert.Equal(t, "in_progress", TicketStatus("2"))
	assert.Equal(t, "open", TicketStatus("42"))

	assert.Equal(t, "high", TicketPriority("1"))
	assert.Equal(t, "low", TicketPriority("3"))
	assert.Equal(t, "medium", TicketPriority(""))

	assert.Equal(t, "reply", ReplyType(0))
	assert.Equal(t, "note", ReplyType(1))
	assert.Equal(t, "log", ReplyType(7))
}

func TestOtherMaps(t *testing.T) {
	assert.Equal(t, "active", ServiceStatus(1))
	assert.Equal(t, "suspended", ServiceStatus(2))
	assert.Equal(t, "pending", ServiceStatus(-9))
	assert.Equal(t, "inactive", ClientStatus(-1))
	assert.Equal(t, "active", ClientStatus(0))
	assert.Equal(t, "public", KBAccess(0))
	assert.Equal(t, "hidden", KBAccess(2))
}

func TestDecodeText(t *testing.T) {
	assert.Equal(t, "Tom & Jerry", DecodeText("  Tom &amp; Jerry "))
	assert.Equal(t, "café", DecodeText("caf\xe9"))
	assert.Equal(t, "Ann O'Neil", FullName(" Ann ", "O&#39;Neil"))
	assert.Equal(t, "Ann", FullName("Ann", ""))
}

func TestSanitizer(t *testing.T) {
	s := NewSanitizer()
	out := s.HTML(`<p onclick="x()">Hello <script>alert(1)</script><b>world</b></p>`)
	assert.Equal(t, "<p>Hello <b>world</b></p>", out)

	assert.Equal(t, "Server down & out", PlainText("<b>Server down</b> &amp; out"))
}
