package metrics

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHandler_ExposesCollectors(t *testing.T) {
	MessagesFormatted.WithLabelValues("cli", "ok").Inc()
	CatalogEntries.WithLabelValues("rooms").Set(3)

	rec := httptest.NewRecorder()
	Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, `msgfmt_messages_formatted_total{outcome="ok",transport="cli"}`)
	assert.Contains(t, body, `msgfmt_catalog_entries{kind="rooms"} 3`)
}
