package testclient

import (
	"context"
	stderrors "errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"testing"

	"github.com/golang-jwt/jwt/v5"

	"github.com/kbukum/httptestkit/errors"
	"github.com/kbukum/httptestkit/version"
)

func TestMethods_Echo(t *testing.T) {
	c := NewT(t, testService())
	ctx := context.Background()

	tests := []struct {
		name string
		req  *RequestBuilder
		want string
	}{
		{"get", c.Get("/echo/a"), "GET /echo/a"},
		{"post", c.Post("/echo/b"), "POST /echo/b"},
		{"put", c.Put("/echo/c"), "PUT /echo/c"},
		{"patch", c.Patch("/echo/d"), "PATCH /echo/d"},
		{"delete", c.Delete("/echo/e"), "DELETE /echo/e"},
		{"options", c.Options("/echo/f"), "OPTIONS /echo/f"},
		{"custom", c.Method("TRACE", "/echo/g"), "TRACE /echo/g"},
		{"relative path", c.Get("echo/h"), "GET /echo/h"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, err := tt.req.Send(ctx)
			if err != nil {
				t.Fatalf("send: %v", err)
			}
			if resp.Status() != http.StatusOK {
				t.Errorf("expected 200, got %d", resp.Status())
			}
			if got := mustText(t, resp); got != tt.want {
				t.Errorf("got %q, want %q", got, tt.want)
			}
		})
	}
}

func TestHead(t *testing.T) {
	c := NewT(t, testService())
	resp, err := c.Head("/echo/x").Send(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if resp.Status() != http.StatusOK {
		t.Errorf("expected 200, got %d", resp.Status())
	}
	data, err := resp.Bytes()
	if err != nil {
		t.Fatal(err)
	}
	if len(data) != 0 {
		t.Errorf("expected empty HEAD body, got %q", data)
	}
}

func TestHealthAndMissing(t *testing.T) {
	c := NewT(t, testService())
	ctx := context.Background()

	resp, err := c.Get("/health").Send(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if resp.Status() != 200 || resp.StatusText() != "OK" {
		t.Errorf("unexpected status %d %q", resp.Status(), resp.StatusText())
	}
	var body struct {
		OK bool `json:"ok"`
	}
	if err := resp.JSON(&body); err != nil {
		t.Fatal(err)
	}
	if !body.OK {
		t.Error("expected ok=true")
	}

	resp, err = c.Get("/missing").Send(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if resp.Status() != http.StatusNotFound {
		t.Errorf("expected 404, got %d", resp.Status())
	}
	if _, err := resp.Text(); err != nil {
		t.Errorf("expected readable 404 body, got %v", err)
	}
}

func TestJSON_PostReturnsField(t *testing.T) {
	c := NewT(t, testService())
	resp, err := c.Post("/x").JSON(map[string]int{"x": 1}).Send(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if got := mustText(t, resp); got != "1" {
		t.Errorf("got %q, want %q", got, "1")
	}
}

func TestJSON_ContentType(t *testing.T) {
	c := NewT(t, testService())
	ctx := context.Background()

	tests := []struct {
		name string
		req  *RequestBuilder
		want string
	}{
		{"default", c.Post("/mirror").JSON(1), "application/json"},
		{"explicit before", c.Post("/mirror").Header("Content-Type", "application/vnd.api+json").JSON(1), "application/vnd.api+json"},
		{"explicit after", c.Post("/mirror").JSON(1).Header("Content-Type", "text/plain"), "text/plain"},
		{"raw body", c.Post("/mirror").JSON(1).BodyString("1"), ""},
		{"form", c.Post("/mirror").Form(url.Values{"a": {"1"}}), "application/x-www-form-urlencoded"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, err := tt.req.Send(ctx)
			if err != nil {
				t.Fatal(err)
			}
			defer resp.Close()
			if got := resp.Header("X-Request-Content-Type"); got != tt.want {
				t.Errorf("content type %q, want %q", got, tt.want)
			}
		})
	}
}

func TestHeaders_DuplicatesAndSingletons(t *testing.T) {
	c := NewT(t, testService())
	resp, err := c.Get("/headers").
		Header("X-Multi", "a").
		Header("x-multi", "b").
		Header("User-Agent", "first").
		Header("User-Agent", "second").
		Headers(http.Header{"X-Extra": {"e1", "e2"}}).
		Send(context.Background())
	if err != nil {
		t.Fatal(err)
	}

	got, err := DecodeJSON[map[string][]string](resp)
	if err != nil {
		t.Fatal(err)
	}
	if strings.Join(got["X-Multi"], ",") != "a,b" {
		t.Errorf("expected both X-Multi values, got %v", got["X-Multi"])
	}
	if strings.Join(got["User-Agent"], ",") != "second" {
		t.Errorf("expected User-Agent to be replaced, got %v", got["User-Agent"])
	}
	if len(got["X-Extra"]) != 2 {
		t.Errorf("expected two X-Extra values, got %v", got["X-Extra"])
	}
}

func TestDefaultUserAgent(t *testing.T) {
	c := NewT(t, testService())
	resp, err := c.Get("/headers").Send(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	got, err := DecodeJSON[http.Header](resp)
	if err != nil {
		t.Fatal(err)
	}
	if got.Get("User-Agent") != version.UserAgent() {
		t.Errorf("expected %q, got %q", version.UserAgent(), got.Get("User-Agent"))
	}
}

func TestQueryAndHost(t *testing.T) {
	c := NewT(t, testService())
	resp, err := c.Get("/request?a=1").
		Query("b", "2").
		Host("example.test").
		Send(context.Background())
	if err != nil {
		t.Fatal(err)
	}

	var got struct {
		Host  string `json:"host"`
		Query string `json:"query"`
	}
	if err := resp.JSON(&got); err != nil {
		t.Fatal(err)
	}
	if got.Host != "example.test" {
		t.Errorf("host %q", got.Host)
	}
	if got.Query != "a=1&b=2" {
		t.Errorf("query %q", got.Query)
	}
}

func TestForm(t *testing.T) {
	c := NewT(t, testService())
	resp, err := c.Post("/form").
		Form(url.Values{"name": {"gopher"}, "lang": {"go"}}).
		Send(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if got := mustText(t, resp); got != "gopher/go" {
		t.Errorf("got %q", got)
	}
}

func TestMultipart(t *testing.T) {
	c := NewT(t, testService())
	ctx := context.Background()

	tests := []struct {
		name string
		file FileField
		want string
	}{
		{
			name: "data with content type",
			file: FileField{FieldName: "file", FileName: "a.txt", ContentType: "text/plain", Data: []byte("hi")},
			want: "report|a.txt|text/plain|hi",
		},
		{
			name: "reader default content type",
			file: FileField{FieldName: "file", FileName: "b.bin", Reader: strings.NewReader("raw")},
			want: "report|b.bin|application/octet-stream|raw",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, err := c.Post("/upload").Multipart(&MultipartBody{
				Fields: map[string]string{"title": "report"},
				Files:  []FileField{tt.file},
			}).Send(ctx)
			if err != nil {
				t.Fatal(err)
			}
			if got := mustText(t, resp); got != tt.want {
				t.Errorf("got %q, want %q", got, tt.want)
			}
		})
	}
}

func TestEscapeQuotes(t *testing.T) {
	if got := escapeQuotes(`a"b\c`); got != `a\"b\\c` {
		t.Errorf("got %q", got)
	}
}

func TestAuth(t *testing.T) {
	c := NewT(t, testService())
	ctx := context.Background()

	resp, err := c.Get("/me").SignedJWT(jwt.MapClaims{"sub": "user-1"}, jwtKey).Send(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if got := mustText(t, resp); got != "user-1" {
		t.Errorf("got %q", got)
	}

	resp, err = c.Get("/me").SignedJWT(jwt.MapClaims{"sub": "user-1"}, []byte("wrong")).Send(ctx)
	if err != nil {
		t.Fatal(err)
	}
	resp.Close()
	if resp.Status() != http.StatusUnauthorized {
		t.Errorf("expected 401 for wrong key, got %d", resp.Status())
	}

	resp, err = c.Get("/basic").BasicAuth("alice", "s3cret").Send(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if got := mustText(t, resp); got != "alice:s3cret" {
		t.Errorf("got %q", got)
	}

	resp, err = c.Get("/headers").BearerToken("tok").APIKey("", "k").Send(ctx)
	if err != nil {
		t.Fatal(err)
	}
	got, err := DecodeJSON[http.Header](resp)
	if err != nil {
		t.Fatal(err)
	}
	if got.Get("Authorization") != "Bearer tok" || got.Get("X-Api-Key") != "k" {
		t.Errorf("unexpected auth headers %v", got)
	}
}

func TestBuilderErrors(t *testing.T) {
	c := NewT(t, testService())
	ctx := context.Background()

	tests := []struct {
		name string
		req  *RequestBuilder
	}{
		{"bad header name", c.Get("/health").Header("Bad Name", "x")},
		{"bad header value", c.Get("/health").Header("X-Ok", "line\nbreak")},
		{"unencodable json", c.Post("/x").JSON(make(chan int))},
		{"bad method", c.Method("BAD METHOD", "/health")},
		{"empty method", c.Method("", "/health")},
		{"bad path", c.Get("%zz")},
		{"first error wins", c.Get("/health").Header("Bad Name", "x").JSON(make(chan int))},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := tt.req.Send(ctx)
			if !errors.IsInvalidRequest(err) {
				t.Fatalf("expected invalid request error, got %v", err)
			}
		})
	}
}

func TestBuilder_SendTwice(t *testing.T) {
	c := NewT(t, testService())
	ctx := context.Background()

	req := c.Get("/health")
	resp, err := req.Send(ctx)
	if err != nil {
		t.Fatal(err)
	}
	resp.Close()

	_, err = req.Send(ctx)
	if !errors.IsInvalidRequest(err) || !stderrors.Is(err, errors.ErrRequestSent) {
		t.Fatalf("expected request-sent error, got %v", err)
	}
}

func TestSend_ContextCancelled(t *testing.T) {
	c := NewT(t, testService())
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := c.Get("/health").Send(ctx)
	if !errors.IsDispatchError(err) || !stderrors.Is(err, context.Canceled) {
		t.Fatalf("expected dispatch error wrapping context.Canceled, got %v", err)
	}
}

func TestAbsoluteURLPassesThrough(t *testing.T) {
	c := NewT(t, testService())
	other := NewT(t, testService())

	resp, err := c.Get(other.BaseURL() + "/echo/abs").Send(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if got := mustText(t, resp); got != "GET /echo/abs" {
		t.Errorf("got %q", got)
	}
}

// rawEcho replies with the method and the request target exactly as sent.
func rawEcho() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprintf(w, "%s %s", r.Method, r.RequestURI)
	})
}

func TestPath_StaysOnTestServer(t *testing.T) {
	c := NewT(t, rawEcho())
	ctx := context.Background()

	tests := []struct {
		name string
		path string
		want string
	}{
		{"double slash prefix", "//double", "GET //double"},
		{"inner double slash", "/a//b", "GET /a//b"},
		{"triple slash", "///x", "GET ///x"},
		{"no leading slash", "plain", "GET /plain"},
		{"root", "/", "GET /"},
		{"query only path", "/?a=1", "GET /?a=1"},
		{"embedded url in query", "/r?next=http://elsewhere/", "GET /r?next=http://elsewhere/"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, err := c.Get(tt.path).Send(ctx)
			if err != nil {
				t.Fatalf("send %q: %v", tt.path, err)
			}
			if got := mustText(t, resp); got != tt.want {
				t.Errorf("got %q, want %q", got, tt.want)
			}
		})
	}
}

func TestQuery_AppendsToRawQuery(t *testing.T) {
	c := NewT(t, rawEcho())
	ctx := context.Background()

	tests := []struct {
		name string
		req  *RequestBuilder
		want string
	}{
		{"bare key kept", c.Get("/x?q=1&flag").Query("k", "v"), "GET /x?q=1&flag&k=v"},
		{"order kept", c.Get("/x?z=1&a=2").Query("m", "3"), "GET /x?z=1&a=2&m=3"},
		{"no path query", c.Get("/x").Query("a", "1 2"), "GET /x?a=1+2"},
		{"path query untouched", c.Get("/x?a=%2F"), "GET /x?a=%2F"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, err := tt.req.Send(ctx)
			if err != nil {
				t.Fatal(err)
			}
			if got := mustText(t, resp); got != tt.want {
				t.Errorf("got %q, want %q", got, tt.want)
			}
		})
	}
}

func TestResolveTarget(t *testing.T) {
	base, _ := url.Parse("http://127.0.0.1:4000")

	tests := []struct {
		path string
		want string
	}{
		{"//double", "http://127.0.0.1:4000//double"},
		{"/a//b?x=1", "http://127.0.0.1:4000/a//b?x=1"},
		{"http://127.0.0.1:5000/other", "http://127.0.0.1:5000/other"},
		{"HTTPS://example.test/", "https://example.test/"},
		{"ftp://example.test/", "http://127.0.0.1:4000/ftp://example.test/"},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			u, err := resolveTarget(base, tt.path)
			if err != nil {
				t.Fatal(err)
			}
			if u.String() != tt.want {
				t.Errorf("got %q, want %q", u.String(), tt.want)
			}
		})
	}
}
