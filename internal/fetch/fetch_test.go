package fetch

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClientGet_Success(t *testing.T) {
	var gotUA string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUA = r.Header.Get("User-Agent")
		w.Header().Set("Content-Type", "text/html")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("<html><body><h1>Test</h1></body></html>"))
	}))
	defer server.Close()

	result, err := NewClient(nil, nil).Get(context.Background(), server.URL)
	require.NoError(t, err)
	assert.Equal(t, server.URL, result.URL)
	assert.Contains(t, result.HTML, "<h1>Test</h1>")
	assert.Equal(t, http.StatusOK, result.StatusCode)
	assert.Equal(t, DefaultUserAgent, gotUA)
}

func TestClientGet_InvalidURL(t *testing.T) {
	_, err := NewClient(nil, nil).Get(context.Background(), "not-a-valid-url")
	require.Error(t, err)

	var fetchErr *Error
	assert.ErrorAs(t, err, &fetchErr)
	assert.Contains(t, err.Error(), "invalid URL")
}

func TestClientGet_UnsupportedScheme(t *testing.T) {
	_, err := NewClient(nil, nil).Get(context.Background(), "mailto://jane@acme.io")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported scheme")
}

func TestClientGet_HTTPError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	result, err := URL(context.Background(), server.URL, nil)
	require.Error(t, err)
	assert.NotNil(t, result) // Result is returned even on error
	assert.Equal(t, http.StatusNotFound, result.StatusCode)

	var fetchErr *Error
	assert.ErrorAs(t, err, &fetchErr)
	assert.Contains(t, err.Error(), "404")
}

func TestClientGet_CustomHeaders(t *testing.T) {
	var got string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = r.Header.Get("Accept-Language")
		_, _ = w.Write([]byte("ok"))
	}))
	defer server.Close()

	opts := DefaultOptions()
	opts.Headers = map[string]string{"Accept-Language": "en-US"}
	_, err := NewClient(opts, nil).Get(context.Background(), server.URL)
	require.NoError(t, err)
	assert.Equal(t, "en-US", got)
}

func TestClientGet_ContextCanceled(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("ok"))
	}))
	defer server.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := NewClient(nil, nil).Get(ctx, server.URL)
	require.Error(t, err)
	var fetchErr *Error
	assert.ErrorAs(t, err, &fetchErr)
}

func TestClientPage_VisibleText(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`<html><head><style>.x{}</style></head><body>
			<script>var hiring = "frontend";</script>
			<h1>Careers</h1>
			<p>We are hiring a   Software Engineer</p>
		</body></html>`))
	}))
	defer server.Close()

	result, err := NewClient(nil, nil).Page(context.Background(), server.URL)
	require.NoError(t, err)
	assert.Contains(t, result.Text, "Careers")
	assert.Contains(t, result.Text, "We are hiring a Software Engineer")
	assert.NotContains(t, result.Text, "hiring = ")
	assert.False(t, result.Rendered)
}

func TestClientPage_BrowserFallback(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`<html><body><div id="root"></div></body></html>`))
	}))
	defer server.Close()

	opts := DefaultOptions()
	opts.UseBrowser = true
	client := NewClient(opts, nil)

	var calls int32
	client.SetRenderer(func(_ context.Context, url string, _ time.Duration) (string, error) {
		atomic.AddInt32(&calls, 1)
		return `<html><body><div id="root">` + strings.Repeat("Join us as a React developer. ", 10) + `</div></body></html>`, nil
	})

	result, err := client.Page(context.Background(), server.URL)
	require.NoError(t, err)
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
	assert.True(t, result.Rendered)
	assert.Contains(t, result.Text, "React developer")
}

func TestClientPage_BrowserDisabled(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`<html><body><div id="root"></div></body></html>`))
	}))
	defer server.Close()

	client := NewClient(nil, nil)
	client.SetRenderer(func(context.Context, string, time.Duration) (string, error) {
		t.Fatal("renderer must not be called")
		return "", nil
	})

	result, err := client.Page(context.Background(), server.URL)
	require.NoError(t, err)
	assert.Empty(t, result.Text)
}

func TestVisibleText(t *testing.T) {
	text, err := VisibleText(`<html><body><nav>Home</nav><main><p>Full  Stack</p></main><noscript>enable js</noscript></body></html>`)
	require.NoError(t, err)
	assert.Contains(t, text, "Home")
	assert.Contains(t, text, "Full Stack")
	assert.NotContains(t, text, "enable js")
}

func TestShouldUseBrowser(t *testing.T) {
	assert.True(t, ShouldUseBrowser("   short   "))
	assert.False(t, ShouldUseBrowser(strings.Repeat("a", MinContentLength)))
}

func TestCleanWhitespace(t *testing.T) {
	assert.Equal(t, "a b\nc", cleanWhitespace("  a \t b \n\n   \n c  "))
}
