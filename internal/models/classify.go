package models

import (
	"context"
	"errors"
	"net"
	"regexp"
	"strconv"
)

var statusCodePattern = regexp.MustCompile(`status code:? (\d{3})`)

// ClassifyRemoteError converts an error from a remote model call into a reason and a
// retryable flag. Rate limits, 5xx responses, timeouts, and network errors are retryable;
// cancellation and other responses are not.
func ClassifyRemoteError(err error) (reason string, retryable bool) {
	switch {
	case errors.Is(err, context.Canceled):
		return ReasonCanceled, false
	case errors.Is(err, context.DeadlineExceeded):
		return ReasonUnavailable, true
	}
	var netErr net.Error
	if errors.As(err, &netErr) {
		return ReasonUnavailable, true
	}
	if m := statusCodePattern.FindStringSubmatch(err.Error()); m != nil {
		code, _ := strconv.Atoi(m[1])
		switch {
		case code == 429:
			return ReasonRateLimited, true
		case code >= 500:
			return ReasonUnavailable, true
		default:
			return ReasonBadResponse, false
		}
	}
	return ReasonBadResponse, false
}
