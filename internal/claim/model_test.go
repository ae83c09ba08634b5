package claim

import (
	"strings"
	"testing"
	"time"
)

func validSubmission() (string, string, time.Time, string, string, string, string) {
	return "2026-000042", "POL-12345", time.Date(2026, 3, 14, 0, 0, 0, 0, time.UTC),
		"PropertyDamage", "123 Main St, Springfield", "Kitchen fire from faulty wiring", "intake@example.com"
}

func TestNew(t *testing.T) {
	t.Parallel()

	number, policy, lossDate, lossType, location, description, submitter := validSubmission()

	c, err := New(number, policy, lossDate, lossType, location, description, submitter)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if c.ID == "" {
		t.Error("expected generated id")
	}
	if c.Status != StatusSubmitted {
		t.Errorf("Status = %q, want %q", c.Status, StatusSubmitted)
	}
	if c.Version != 1 {
		t.Errorf("Version = %d, want 1", c.Version)
	}
	if !c.LossDate.Equal(lossDate) {
		t.Errorf("LossDate = %v, want %v", c.LossDate, lossDate)
	}
}

func TestNew_Validation(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		mutate func(*[7]string, *time.Time)
	}{
		{"empty policy number", func(s *[7]string, _ *time.Time) { s[1] = "" }},
		{"whitespace policy number", func(s *[7]string, _ *time.Time) { s[1] = "   " }},
		{"zero loss date", func(_ *[7]string, d *time.Time) { *d = time.Time{} }},
		{"future loss date", func(_ *[7]string, d *time.Time) { *d = time.Now().UTC().Add(48 * time.Hour) }},
		{"empty loss type", func(s *[7]string, _ *time.Time) { s[2] = "" }},
		{"empty location", func(s *[7]string, _ *time.Time) { s[3] = "" }},
		{"empty description", func(s *[7]string, _ *time.Time) { s[4] = "" }},
		{"empty submitter", func(s *[7]string, _ *time.Time) { s[5] = "" }},
		{"malformed claim number", func(s *[7]string, _ *time.Time) { s[0] = "CLM-1" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			number, policy, lossDate, lossType, location, description, submitter := validSubmission()
			args := [7]string{number, policy, lossType, location, description, submitter, ""}
			tt.mutate(&args, &lossDate)

			_, err := New(args[0], args[1], lossDate, args[2], args[3], args[4], args[5])
			if err == nil {
				t.Fatal("expected validation error")
			}
			if !IsKind(err, ErrValidation) {
				t.Errorf("error kind = %v, want ErrValidation", err)
			}
		})
	}
}

func TestClaim_Lifecycle(t *testing.T) {
	t.Parallel()

	number, policy, lossDate, lossType, location, description, submitter := validSubmission()
	c, err := New(number, policy, lossDate, lossType, location, description, submitter)
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	if err := c.MarkValidated(); err != nil {
		t.Fatalf("MarkValidated: %v", err)
	}
	if c.Status != StatusValidated {
		t.Fatalf("Status = %q, want %q", c.Status, StatusValidated)
	}
	if err := c.MarkVerified(); err != nil {
		t.Fatalf("MarkVerified: %v", err)
	}
	if err := c.MarkTriaged(); err != nil {
		t.Fatalf("MarkTriaged: %v", err)
	}
	if c.Status != StatusTriaged {
		t.Fatalf("Status = %q, want %q", c.Status, StatusTriaged)
	}
}

func TestClaim_InvalidTransitions(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		from       Status
		transition func(*Claim) error
	}{
		{"verify from submitted", StatusSubmitted, (*Claim).MarkVerified},
		{"triage from submitted", StatusSubmitted, (*Claim).MarkTriaged},
		{"triage from validated", StatusValidated, (*Claim).MarkTriaged},
		{"validate from validated", StatusValidated, (*Claim).MarkValidated},
		{"validate from verified", StatusVerified, (*Claim).MarkValidated},
		{"verify from triaged", StatusTriaged, (*Claim).MarkVerified},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			c := &Claim{ID: "c1", Status: tt.from}
			err := tt.transition(c)
			if err == nil {
				t.Fatal("expected transition to fail")
			}
			if !IsKind(err, ErrInvalidState) {
				t.Errorf("error kind = %v, want ErrInvalidState", err)
			}
			if c.Status != tt.from {
				t.Errorf("Status = %q, want unchanged %q", c.Status, tt.from)
			}
		})
	}
}

func TestClaim_UpdateLossDescription(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name        string
		status      Status
		description string
		wantKind    error
	}{
		{"validated ok", StatusValidated, "updated narrative", nil},
		{"verified ok", StatusVerified, "updated narrative", nil},
		{"submitted rejected", StatusSubmitted, "updated narrative", ErrInvalidState},
		{"triaged rejected", StatusTriaged, "updated narrative", ErrInvalidState},
		{"empty description", StatusValidated, "  ", ErrValidation},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			c := &Claim{ID: "c1", Status: tt.status, LossDescription: "original"}
			err := c.UpdateLossDescription(tt.description)
			if tt.wantKind == nil {
				if err != nil {
					t.Fatalf("UpdateLossDescription: %v", err)
				}
				if c.LossDescription != tt.description {
					t.Errorf("LossDescription = %q, want %q", c.LossDescription, tt.description)
				}
				return
			}
			if err == nil {
				t.Fatal("expected error")
			}
			if !IsKind(err, tt.wantKind) {
				t.Errorf("error kind = %v, want %v", err, tt.wantKind)
			}
			if c.LossDescription != "original" {
				t.Errorf("LossDescription = %q, want unchanged", c.LossDescription)
			}
		})
	}
}

func TestNewDocument_Validation(t *testing.T) {
	t.Parallel()

	if _, err := NewDocument("c1", "fnol.pdf", "FNOL", "", 1024, "application/pdf", "intake@example.com"); err != nil {
		t.Fatalf("NewDocument: %v", err)
	}

	tests := []struct {
		name                                                 string
		claimID, fileName, docType, contentType, uploadedBy string
		size                                                 int64
	}{
		{"empty claim id", "", "f.pdf", "FNOL", "application/pdf", "u", 1},
		{"empty file name", "c1", " ", "FNOL", "application/pdf", "u", 1},
		{"empty document type", "c1", "f.pdf", "", "application/pdf", "u", 1},
		{"zero size", "c1", "f.pdf", "FNOL", "application/pdf", "u", 0},
		{"negative size", "c1", "f.pdf", "FNOL", "application/pdf", "u", -5},
		{"empty content type", "c1", "f.pdf", "FNOL", "", "u", 1},
		{"empty uploader", "c1", "f.pdf", "FNOL", "application/pdf", "", 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			_, err := NewDocument(tt.claimID, tt.fileName, tt.docType, "", tt.size, tt.contentType, tt.uploadedBy)
			if !IsKind(err, ErrValidation) {
				t.Errorf("error = %v, want ErrValidation", err)
			}
		})
	}
}

func TestDocument_MarkSuperseded(t *testing.T) {
	t.Parallel()

	d, err := NewDocument("c1", "fnol.pdf", "FNOL", "", 1024, "application/pdf", "intake@example.com")
	if err != nil {
		t.Fatalf("NewDocument: %v", err)
	}
	if err := d.MarkSuperseded(); err != nil {
		t.Fatalf("MarkSuperseded: %v", err)
	}
	if d.Status != DocumentSuperseded {
		t.Errorf("Status = %q, want %q", d.Status, DocumentSuperseded)
	}
	if err := d.MarkSuperseded(); !IsKind(err, ErrInvalidState) {
		t.Errorf("second supersede error = %v, want ErrInvalidState", err)
	}
}

func TestErrorKinds(t *testing.T) {
	t.Parallel()

	err := WrapError(ErrExternal, "policy validation", Errorf(ErrValidation, "bad input"))
	if !IsKind(err, ErrExternal) {
		t.Error("expected ErrExternal kind")
	}
	if !IsKind(err, ErrValidation) {
		t.Error("expected wrapped ErrValidation to survive")
	}
	if !strings.Contains(err.Error(), "policy validation") {
		t.Errorf("error %q missing operation", err)
	}
}
