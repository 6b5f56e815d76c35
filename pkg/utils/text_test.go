package utils

import (
	"testing"
)

func TestTruncate(t *testing.T) {
	if Truncate("hello", 10) != "hello" {
		t.Error("short string unchanged")
	}
	if Truncate("hello world", 5) != "hello..." {
		t.Errorf("got %s", Truncate("hello world", 5))
	}
	if Truncate("x", 0) != "x" {
		t.Error("maxLen 0 returns as-is")
	}
	if Truncate("héllo", 2) != "hé..." {
		t.Errorf("got %s", Truncate("héllo", 2))
	}
}

func TestIsBlank(t *testing.T) {
	if !IsBlank(" \n\t ") {
		t.Error("whitespace should be blank")
	}
	if IsBlank(" a ") {
		t.Error("text should not be blank")
	}
}
