package application

import (
	"errors"
	"testing"
)

func TestValidateRequired(t *testing.T) {
	tests := []struct {
		name    string
		field   string
		value   string
		wantErr bool
	}{
		{"set", "token", "img1.raw", false},
		{"empty", "token", "", true},
		{"blank", "path", " \t ", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateRequired(tt.field, tt.value)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ValidateRequired() error = %v, wantErr %v", err, tt.wantErr)
			}
			var valErr *ValidationError
			if err != nil && (!errors.As(err, &valErr) || valErr.Field != tt.field) {
				t.Errorf("expected ValidationError on %s, got %#v", tt.field, err)
			}
		})
	}
}

func TestValidateRequiredMessage(t *testing.T) {
	err := ValidateRequired("evidenceID", "")
	if err == nil {
		t.Fatal("expected error")
	}
	if err.Error() != "evidenceID: evidence ID is required" {
		t.Errorf("unexpected message: %s", err.Error())
	}
}

func TestValidateEvidenceID(t *testing.T) {
	tests := []struct {
		name    string
		id      string
		wantErr bool
	}{
		{"valid", "E001", false},
		{"long", "E12345", false},
		{"short", "E1", true},
		{"empty", "", true},
		{"token instead of id", "img1.raw", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateEvidenceID("evidenceID", tt.id)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateEvidenceID(%q) error = %v, wantErr %v", tt.id, err, tt.wantErr)
			}
		})
	}
}

func TestValidateStartOffset(t *testing.T) {
	if err := ValidateStartOffset(0); err != nil {
		t.Errorf("expected 0 to be valid, got %v", err)
	}
	if err := ValidateStartOffset(2048); err != nil {
		t.Errorf("expected 2048 to be valid, got %v", err)
	}
	if err := ValidateStartOffset(-1); err == nil {
		t.Error("expected error for negative offset")
	}
}

func TestValidateEvidenceFile(t *testing.T) {
	if err := ValidateEvidenceFile("file", "disk.E01"); err != nil {
		t.Errorf("expected E01 to be accepted, got %v", err)
	}
	err := ValidateEvidenceFile("file", "notes.txt")
	var valErr *ValidationError
	if !errors.As(err, &valErr) {
		t.Fatalf("expected ValidationError, got %T", err)
	}
}

func TestConstructionError(t *testing.T) {
	cause := errors.New("bad superblock")
	err := error(&ConstructionError{Path: "/tmp/x.raw", Backend: "sleuthkit", Err: cause})

	if !errors.Is(err, ErrConstructionFailed) {
		t.Error("expected ConstructionError to match ErrConstructionFailed")
	}
	if !errors.Is(err, cause) {
		t.Error("expected ConstructionError to unwrap to its cause")
	}
	if errors.Is(err, ErrBackendUnavailable) {
		t.Error("did not expect ErrBackendUnavailable")
	}
}
