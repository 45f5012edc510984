package http_test

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"

	httpserver "github.com/fyrsmithlabs/docref/internal/http"
	"github.com/fyrsmithlabs/docref/internal/reference"
	"github.com/fyrsmithlabs/docref/internal/resolver"
	"go.uber.org/zap"
)

// ExampleServer expands a reference through the HTTP API.
func ExampleServer() {
	docs := resolver.Static{
		"faq": {Filename: "faq.md", Context: "Common questions", Content: "Ask anything."},
	}

	server, err := httpserver.NewServer(nil, &reference.Expander{Resolver: docs}, zap.NewNop(), nil)
	if err != nil {
		panic(err)
	}

	req := httptest.NewRequest(http.MethodPost, "/api/v1/expand",
		strings.NewReader(`{"text":"Read {faq}."}`))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	server.Handler().ServeHTTP(rec, req)

	fmt.Println(rec.Code)
	fmt.Println(strings.Contains(rec.Body.String(), "Read Common questions [faq.md] Ask anything. [/faq.md]."))
	// Output:
	// 200
	// true
}
