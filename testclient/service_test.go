package testclient

import (
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"go.opentelemetry.io/otel/trace"

	"github.com/kbukum/httptestkit/observability"
	"github.com/kbukum/httptestkit/server"
)

var jwtKey = []byte("test-secret")

// testService is the service under test shared by the client tests.
func testService() http.Handler {
	engine := server.NewGinEngine()

	engine.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"ok": true})
	})
	engine.Any("/echo/*path", func(c *gin.Context) {
		c.String(http.StatusOK, "%s %s", c.Request.Method, c.Request.URL.Path)
	})
	engine.POST("/x", func(c *gin.Context) {
		var in struct {
			X int `json:"x"`
		}
		if err := c.ShouldBindJSON(&in); err != nil {
			c.String(http.StatusBadRequest, err.Error())
			return
		}
		c.String(http.StatusOK, "%d", in.X)
	})
	engine.POST("/mirror", func(c *gin.Context) {
		data, _ := io.ReadAll(c.Request.Body)
		c.Header("X-Request-Content-Type", c.GetHeader("Content-Type"))
		c.Data(http.StatusOK, "application/octet-stream", data)
	})
	engine.GET("/text", func(c *gin.Context) {
		c.String(http.StatusOK, "hello")
	})
	engine.GET("/binary", func(c *gin.Context) {
		c.Data(http.StatusOK, "application/octet-stream", []byte{0xff, 0xfe, 0xfd})
	})
	engine.GET("/headers", func(c *gin.Context) {
		c.JSON(http.StatusOK, c.Request.Header)
	})
	engine.GET("/request", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"host":  c.Request.Host,
			"query": c.Request.URL.RawQuery,
			"proto": c.Request.Proto,
		})
	})
	engine.POST("/form", func(c *gin.Context) {
		c.String(http.StatusOK, "%s/%s", c.PostForm("name"), c.PostForm("lang"))
	})
	engine.POST("/upload", func(c *gin.Context) {
		fh, err := c.FormFile("file")
		if err != nil {
			c.String(http.StatusBadRequest, err.Error())
			return
		}
		f, err := fh.Open()
		if err != nil {
			c.String(http.StatusInternalServerError, err.Error())
			return
		}
		defer f.Close()
		data, _ := io.ReadAll(f)
		c.String(http.StatusOK, "%s|%s|%s|%s", c.PostForm("title"), fh.Filename, fh.Header.Get("Content-Type"), data)
	})
	engine.GET("/cookie/set", func(c *gin.Context) {
		c.SetCookie("session", "abc123", 3600, "/", "", false, true)
		c.Status(http.StatusNoContent)
	})
	engine.GET("/cookie/get", func(c *gin.Context) {
		v, err := c.Cookie("session")
		if err != nil {
			c.String(http.StatusOK, "none")
			return
		}
		c.String(http.StatusOK, v)
	})
	engine.GET("/redirect", func(c *gin.Context) {
		c.Redirect(http.StatusFound, "/health")
	})
	engine.GET("/events", func(c *gin.Context) {
		c.Header("Content-Type", "text/event-stream")
		for i := 1; i <= 3; i++ {
			fmt.Fprintf(c.Writer, "id: %d\nevent: tick\ndata: %d\n\n", i, i)
			c.Writer.Flush()
		}
	})
	engine.GET("/trace", func(c *gin.Context) {
		ctx := observability.ExtractContext(c.Request.Context(), c.Request.Header)
		sc := trace.SpanContextFromContext(ctx)
		if !sc.IsValid() {
			c.String(http.StatusOK, "none")
			return
		}
		c.String(http.StatusOK, sc.TraceID().String())
	})
	engine.GET("/me", func(c *gin.Context) {
		raw := strings.TrimPrefix(c.GetHeader("Authorization"), "Bearer ")
		token, err := jwt.Parse(raw, func(*jwt.Token) (any, error) { return jwtKey, nil },
			jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
		if err != nil || !token.Valid {
			c.Status(http.StatusUnauthorized)
			return
		}
		sub, _ := token.Claims.GetSubject()
		c.String(http.StatusOK, sub)
	})
	engine.GET("/basic", func(c *gin.Context) {
		user, pass, ok := c.Request.BasicAuth()
		if !ok {
			c.Status(http.StatusUnauthorized)
			return
		}
		c.String(http.StatusOK, "%s:%s", user, pass)
	})

	return engine
}
