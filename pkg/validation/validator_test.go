package validation

import (
	"encoding/json"
	"errors"
	"testing"
)

func TestToDetails_Nil(t *testing.T) {
	if got := ToDetails(nil); got != nil {
		t.Fatalf("expected nil, got %v", got)
	}
}

func TestToDetails_InvalidJSON(t *testing.T) {
	var dst struct{ A int }
	err := json.Unmarshal([]byte("{"), &dst)
	got := ToDetails(err)
	if got["payload"] != "invalid json" {
		t.Fatalf("expected invalid json detail, got %v", got)
	}
}

func TestToDetails_Fallback(t *testing.T) {
	got := ToDetails(errors.New("something else"))
	if got["payload"] != "invalid payload" {
		t.Fatalf("expected fallback detail, got %v", got)
	}
}
