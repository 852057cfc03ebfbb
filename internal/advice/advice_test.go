package advice

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testLogger() *logrus.Entry {
	log := logrus.New()
	log.SetLevel(logrus.PanicLevel)
	return logrus.NewEntry(log)
}

func TestAdviseDisabledWithoutKey(t *testing.T) {
	c := NewClient("http://localhost", "", "test-model", testLogger())
	assert.False(t, c.Enabled())

	_, err := c.Advise(context.Background(), "facts")
	assert.ErrorIs(t, err, ErrDisabled)
}

func TestAdvise(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1beta/models/test-model:generateContent", r.URL.Path)
		assert.Equal(t, "secret", r.URL.Query().Get("key"))

		var req generateRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		require.Len(t, req.Contents, 1)
		assert.Contains(t, req.Contents[0].Parts[0].Text, "Vehicle: Kia Rio")

		resp := generateResponse{Candidates: []struct {
			Content content `json:"content"`
		}{{Content: content{Parts: []part{{Text: "Check the brake pads. "}, {Text: "Plan a coolant flush."}}}}}}
		json.NewEncoder(w).Encode(resp)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "secret", "test-model", testLogger())
	got, err := c.Advise(context.Background(), "Vehicle: Kia Rio, odometer 90000 km.")
	require.NoError(t, err)
	assert.Equal(t, "Check the brake pads. Plan a coolant flush.", got)
}

func TestAdviseBackendError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "secret", "test-model", testLogger())
	_, err := c.Advise(context.Background(), "facts")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "429")
}

func TestAdviseEmptyCandidates(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"candidates":[]}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "secret", "test-model", testLogger())
	_, err := c.Advise(context.Background(), "facts")
	assert.Error(t, err)
}
