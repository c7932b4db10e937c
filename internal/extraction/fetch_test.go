package extraction

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"shiftwatch/internal/structures"
	"shiftwatch/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestFetcher(ua string) *Fetcher {
	conf := &structures.Config{HTTP: structures.HTTPClientConfig{UserAgent: ua}}
	return NewFetcher(conf, http.DefaultClient, &testutil.MockLogger{})
}

func TestFetcher_Success(t *testing.T) {
	var gotUA string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUA = r.Header.Get("User-Agent")
		_, _ = w.Write([]byte(`[{"code":"ABCDE-FGHIJ-KLMNO-PQRST-UVWXY"}]`))
	}))
	defer srv.Close()

	body, err := newTestFetcher("test-agent").Fetch(context.Background(), Source{ID: SourceFeed, Kind: KindStructuredFeed, URL: srv.URL})
	require.NoError(t, err)
	assert.Contains(t, string(body), "ABCDE")
	assert.Equal(t, "test-agent", gotUA)
}

func TestFetcher_DefaultUserAgent(t *testing.T) {
	var gotUA string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUA = r.Header.Get("User-Agent")
	}))
	defer srv.Close()

	_, err := newTestFetcher("").Fetch(context.Background(), Source{ID: SourceFeed, URL: srv.URL})
	require.NoError(t, err)
	assert.Equal(t, DefaultUserAgent, gotUA)
}

func TestFetcher_BodyCapped(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(strings.Repeat("a", MaxBodyBytes+1024)))
	}))
	defer srv.Close()

	body, err := newTestFetcher("").Fetch(context.Background(), Source{ID: SourceArticle, Kind: KindArticle, URL: srv.URL})
	require.NoError(t, err)
	assert.Len(t, body, MaxBodyBytes)
}

func TestFetcher_StatusClassification(t *testing.T) {
	cases := []struct {
		status int
		class  FailureClass
	}{
		{http.StatusTooManyRequests, ClassRateLimited},
		{http.StatusInternalServerError, ClassServerError},
		{http.StatusServiceUnavailable, ClassServerError},
		{http.StatusNotFound, ClassOther},
		{http.StatusForbidden, ClassOther},
	}
	for _, tc := range cases {
		t.Run(http.StatusText(tc.status), func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tc.status)
			}))
			defer srv.Close()

			_, err := newTestFetcher("").Fetch(context.Background(), Source{ID: SourceSocial, URL: srv.URL})
			require.Error(t, err)

			var fe *FetchError
			require.True(t, errors.As(err, &fe))
			assert.Equal(t, tc.status, fe.StatusCode)
			assert.Equal(t, tc.class, fe.Class)
			assert.Equal(t, SourceSocial, fe.Source)
			assert.Equal(t, tc.class, Classify(err))
		})
	}
}

func TestFetcher_TransportError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := srv.URL
	srv.Close()

	_, err := newTestFetcher("").Fetch(context.Background(), Source{ID: SourceCommunity, URL: url})
	require.Error(t, err)
	assert.Equal(t, ClassOther, Classify(err))

	var fe *FetchError
	require.True(t, errors.As(err, &fe))
	assert.Zero(t, fe.StatusCode)
	assert.Error(t, errors.Unwrap(fe))
}

func TestClassify_PlainError(t *testing.T) {
	assert.Equal(t, ClassOther, Classify(errors.New("boom")))
}
