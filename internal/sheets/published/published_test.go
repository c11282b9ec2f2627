package published

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const feed = "title,month,year,thumbnail,url\r\n" +
	"Clip A,6,2024,thumb.png,https://x/a.mp4\r\n" +
	"Clip B,6,2024,thumb.png,https://youtube.com/embed/b\r\n"

func TestReadRecords_OK(t *testing.T) {
	var gotAccept string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAccept = r.Header.Get("Accept")
		w.Header().Set("Content-Type", "text/csv")
		_, _ = w.Write([]byte(feed))
	}))
	defer srv.Close()

	c := New(srv.URL, 5*time.Second)
	recs, err := c.ReadRecords(context.Background())

	require.NoError(t, err)
	require.Len(t, recs, 2)
	assert.Equal(t, "Clip A", recs[0].Title)
	assert.Equal(t, "https://youtube.com/embed/b", recs[1].URL)
	assert.Contains(t, gotAccept, "text/csv")
	assert.Equal(t, srv.URL, c.URL())
}

func TestReadRecords_NotFound(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	defer srv.Close()

	recs, err := New(srv.URL, 5*time.Second).ReadRecords(context.Background())

	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrStatus))
	assert.Contains(t, err.Error(), "404")
	assert.Nil(t, recs)
}

func TestReadRecords_ConnectionRefused(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	recs, err := New(url, time.Second).ReadRecords(context.Background())

	require.Error(t, err)
	assert.False(t, errors.Is(err, ErrStatus))
	assert.Nil(t, recs)
}

func TestReadRecords_ContextCanceled(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer srv.Close()
	defer close(release)

	ctx, cancel := context.WithCancel(context.Background())
	errc := make(chan error, 1)
	go func() {
		_, err := NewWithHTTPClient(srv.URL, srv.Client()).ReadRecords(ctx)
		errc <- err
	}()
	cancel()

	select {
	case err := <-errc:
		require.Error(t, err)
		assert.True(t, errors.Is(err, context.Canceled))
	case <-time.After(5 * time.Second):
		t.Fatal("read did not return after cancel")
	}
}

func TestReadRecords_HeaderOnly(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("title,month,year,thumbnail,url\n"))
	}))
	defer srv.Close()

	recs, err := New(srv.URL, 0).ReadRecords(context.Background())

	require.NoError(t, err)
	assert.Empty(t, recs)
}

func TestReadRecords_BodyLimit(t *testing.T) {
	const head = "title,month,year,thumbnail,url\nClip A,6,2024,thumb.png,https://x/a.mp4\n"
	// Trailing whitespace forms a blank line, so only the size changes.
	atLimit := head + strings.Repeat(" ", maxBodyBytes-len(head))

	tests := []struct {
		name    string
		body    string
		wantErr error
		wantLen int
	}{
		{name: "exactly at limit", body: atLimit, wantLen: 1},
		{name: "one byte over", body: atLimit + " ", wantErr: ErrTooLarge},
		{name: "many rows over", body: head + strings.Repeat("Clip B,6,2024,thumb.png,https://x/b.mp4\n", maxBodyBytes/40+1), wantErr: ErrTooLarge},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				_, _ = w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			recs, err := New(srv.URL, 10*time.Second).ReadRecords(context.Background())

			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				assert.Nil(t, recs, "an oversized feed must not yield a partial list")
				return
			}
			require.NoError(t, err)
			assert.Len(t, recs, tt.wantLen)
		})
	}
}
