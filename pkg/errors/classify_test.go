package errors

import (
	"fmt"
	"testing"

	"github.com/matzehuels/cardgrid/pkg/grid"
	"github.com/matzehuels/cardgrid/pkg/grid/history"
	"github.com/matzehuels/cardgrid/pkg/grid/responsive"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want Code
	}{
		{"duplicate id", grid.ErrDuplicateID, ErrCodeDuplicateID},
		{"missing id", grid.ErrInvalidItemID, ErrCodeInvalidLayout},
		{"not found", grid.ErrItemNotFound, ErrCodeItemNotFound},
		{"geometry", grid.ErrBadGeometry, ErrCodeInvalidGeometry},
		{"bounds", grid.ErrOutOfBounds, ErrCodeOutOfBounds},
		{"collision", grid.ErrCollision, ErrCodeCollision},
		{"config", grid.ErrInvalidConfig, ErrCodeInvalidConfig},
		{"history boundary", history.ErrBoundary, ErrCodeHistoryBoundary},
		{"unknown breakpoint", responsive.ErrUnknownBreakpoint, ErrCodeBreakpointNotFound},
		{"no breakpoints", responsive.ErrNoBreakpoints, ErrCodeInvalidConfig},
		{"unrecognized", fmt.Errorf("boom"), ErrCodeInternal},
		{"wrapped sentinel", fmt.Errorf("add: %w", grid.ErrCollision), ErrCodeCollision},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Classify(tt.err)
			if got.Code != tt.want {
				t.Errorf("Classify() code = %s, want %s", got.Code, tt.want)
			}
		})
	}
}

func TestClassify_Nil(t *testing.T) {
	if got := Classify(nil); got != nil {
		t.Errorf("Classify(nil) = %v, want nil", got)
	}
}

func TestClassify_PassesThroughCodedErrors(t *testing.T) {
	orig := New(ErrCodeInvalidName, "bad name")
	got := Classify(fmt.Errorf("save: %w", orig))
	if got.Code != ErrCodeInvalidName {
		t.Errorf("Classify() code = %s, want the original INVALID_NAME", got.Code)
	}
}

func TestValidateLayoutName(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{"plain", "dashboard", false},
		{"with dash and digits", "floor-2", false},
		{"empty", "", true},
		{"traversal", "../etc/passwd", true},
		{"slash", "a/b", true},
		{"backslash", `a\b`, true},
		{"control char", "a\nb", true},
		{"too long", string(make([]byte, 129)), true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateLayoutName(tt.input)
			if tt.wantErr && !Is(err, ErrCodeInvalidName) {
				t.Errorf("ValidateLayoutName(%q) error = %v, want INVALID_NAME", tt.input, err)
			}
			if !tt.wantErr && err != nil {
				t.Errorf("ValidateLayoutName(%q) error = %v, want nil", tt.input, err)
			}
		})
	}
}

func TestErrorFormatting(t *testing.T) {
	plain := New(ErrCodeCollision, "items %s and %s overlap", "a", "b")
	if got := plain.Error(); got != "COLLISION: items a and b overlap" {
		t.Errorf("Error() = %q", got)
	}

	wrapped := Wrap(ErrCodeStoreUnavailable, fmt.Errorf("dial tcp"), "load %s", "dash")
	if GetCode(wrapped) != ErrCodeStoreUnavailable {
		t.Errorf("GetCode() = %s, want STORE_UNAVAILABLE", GetCode(wrapped))
	}
	if UserMessage(wrapped) != "load dash" {
		t.Errorf("UserMessage() = %q, want %q", UserMessage(wrapped), "load dash")
	}
}
