package models

import (
	"context"
	"errors"
	"fmt"
	"testing"
)

func TestIsRetryable(t *testing.T) {
	wrapped := fmt.Errorf("build: %w", &ProviderError{Reason: ReasonRateLimited, Retryable: true})
	if !IsRetryable(wrapped) {
		t.Error("wrapped retryable provider error should be retryable")
	}
	if IsRetryable(&SynthesisError{Reason: ReasonBadResponse}) {
		t.Error("non-retryable synthesis error reported retryable")
	}
	if IsRetryable(errors.New("plain")) {
		t.Error("plain error reported retryable")
	}
}

func TestLoadError_Unwrap(t *testing.T) {
	inner := errors.New("bad xref")
	err := fmt.Errorf("ingest: %w", &LoadError{Reason: ReasonMalformedDocument, Err: inner})
	var le *LoadError
	if !errors.As(err, &le) {
		t.Fatal("expected LoadError in chain")
	}
	if le.Reason != ReasonMalformedDocument {
		t.Errorf("Reason=%q", le.Reason)
	}
	if !errors.Is(err, inner) {
		t.Error("expected inner error to be reachable")
	}
}

func TestAnswerResult_ContextTexts(t *testing.T) {
	a := &AnswerResult{UsedContext: []Chunk{{Text: "a"}, {Text: "b"}}}
	got := a.ContextTexts()
	if len(got) != 2 || got[0] != "a" || got[1] != "b" {
		t.Errorf("got %v", got)
	}
}

func TestClassifyRemoteError(t *testing.T) {
	cases := []struct {
		err       error
		reason    string
		retryable bool
	}{
		{context.Canceled, ReasonCanceled, false},
		{fmt.Errorf("call: %w", context.DeadlineExceeded), ReasonUnavailable, true},
		{errors.New("API returned unexpected status code: 429: slow down"), ReasonRateLimited, true},
		{errors.New("API returned unexpected status code: 503"), ReasonUnavailable, true},
		{errors.New("API returned unexpected status code: 401: unauthorized"), ReasonBadResponse, false},
		{errors.New("weird"), ReasonBadResponse, false},
	}
	for _, tc := range cases {
		reason, retryable := ClassifyRemoteError(tc.err)
		if reason != tc.reason || retryable != tc.retryable {
			t.Errorf("%v: got (%s, %v), want (%s, %v)", tc.err, reason, retryable, tc.reason, tc.retryable)
		}
	}
}
