// Package e2e provides end-to-end tests that ingest a multi-page PDF and ask questions about it.
package e2e

import (
	"fmt"
	"strings"

	"github.com/hyperjump/docqa/internal/testutil"
)

// Page is one page of the E2E document.
type Page struct {
	Index   int
	Topic   string
	Content string
}

// QuestionCase defines a question and the page whose text must be among the retrieved context.
type QuestionCase struct {
	Question     string
	ExpectedPage int
	Description  string
}

// Corpus holds the pages of one synthetic PDF and the questions asked about it.
type Corpus struct {
	Pages []Page
	Cases []QuestionCase
}

var topics = []struct {
	topic   string
	phrase  string
	content string
}{
	{"Python Guide", "Python programming language", "Python is a high-level programming language. Python programming language is used for web development and data science."},
	{"Kubernetes Docs", "Kubernetes container orchestration", "Kubernetes is an open-source container orchestration platform. Kubernetes container orchestration automates deployment and scaling."},
	{"Go Language", "Go golang concurrency", "Go is a statically typed language. Go golang concurrency is achieved with goroutines and channels."},
	{"PostgreSQL Manual", "PostgreSQL relational database", "PostgreSQL is an advanced relational database. PostgreSQL relational database supports JSON and full-text search."},
	{"Redis Cache", "Redis in-memory cache", "Redis is an in-memory data store. Redis in-memory cache is used for sessions and caching."},
	{"Terraform IaC", "Terraform infrastructure as code", "Terraform manages cloud infrastructure. Terraform infrastructure as code is declarative."},
	{"Prometheus Metrics", "Prometheus monitoring metrics", "Prometheus is a monitoring system. Prometheus monitoring metrics are time-series based."},
	{"gRPC Overview", "gRPC remote procedure calls", "gRPC is a high-performance RPC framework. gRPC remote procedure calls use HTTP/2 and protobuf."},
	{"Apache Kafka", "Apache Kafka streaming", "Apache Kafka is a distributed event stream platform. Apache Kafka streaming handles high throughput."},
	{"Password Hashing", "password hashing bcrypt", "Passwords must be hashed. Password hashing bcrypt is resistant to rainbow tables."},
	{"Chunking Strategy", "chunking strategy overlap", "Chunking splits long documents. Chunking strategy overlap preserves context."},
	{"RAG Overview", "RAG retrieval augmented", "RAG combines retrieval and generation. RAG retrieval augmented grounds LLMs in documents."},
	{"Circuit Breaker", "circuit breaker resilience", "Circuit breaker stops cascading failures. Circuit breaker resilience pattern fails fast."},
	{"Graceful Shutdown", "graceful shutdown signal", "Graceful shutdown drains connections. Graceful shutdown signal handles SIGTERM."},
	{"Eiffel Tower", "Eiffel Tower Paris", "The capital of France is Paris. The Eiffel Tower in Paris was completed in 1889."},
	{"Canary Release", "canary release gradual", "Canary rolls out to a subset. Canary release gradual reduces blast radius."},
}

// BuildCorpus returns a corpus with one page per topic plus a blank page in the middle,
// which must be skipped without shifting the page numbers of later pages.
func BuildCorpus() *Corpus {
	c := &Corpus{}
	blankAt := len(topics) / 2
	idx := 0
	for i, t := range topics {
		if i == blankAt {
			c.Pages = append(c.Pages, Page{Index: idx})
			idx++
		}
		c.Pages = append(c.Pages, Page{Index: idx, Topic: t.topic, Content: t.content})
		c.Cases = append(c.Cases, QuestionCase{
			Question:     fmt.Sprintf("What does the document say about %s?", t.phrase),
			ExpectedPage: idx,
			Description:  fmt.Sprintf("question about %q should retrieve page %d", t.phrase, idx),
		})
		idx++
	}
	return c
}

// PDF renders the corpus as a PDF with one page per Page.
func (c *Corpus) PDF() []byte {
	texts := make([]string, len(c.Pages))
	for i, p := range c.Pages {
		texts[i] = p.Content
	}
	return testutil.BuildPDF(texts...)
}

// NonEmptyPages returns the number of pages that carry text.
func (c *Corpus) NonEmptyPages() int {
	n := 0
	for _, p := range c.Pages {
		if strings.TrimSpace(p.Content) != "" {
			n++
		}
	}
	return n
}
