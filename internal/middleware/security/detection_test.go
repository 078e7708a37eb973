package security

import (
	"net/http/httptest"
	"testing"
)

func TestDetectSuspiciousRequest(t *testing.T) {
	d := NewDetector()

	tests := []struct {
		name string
		path string
		want bool
	}{
		{"normal api call", "/api/trips", false},
		{"path traversal", "/api/../../etc/passwd", true},
		{"env probe", "/.env", true},
		{"wordpress probe", "/wp-admin/setup.php", true},
		{"expense route", "/api/expenses/abc-123", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := httptest.NewRequest("GET", tt.path, nil)
			if got := d.DetectSuspiciousRequest(r); got != tt.want {
				t.Errorf("DetectSuspiciousRequest(%q) = %v, want %v", tt.path, got, tt.want)
			}
		})
	}
}

func TestExtractClientIP(t *testing.T) {
	d := NewDetector()

	t.Run("direct connection", func(t *testing.T) {
		r := httptest.NewRequest("GET", "/", nil)
		r.RemoteAddr = "203.0.113.9:1234"
		if got := d.ExtractClientIP(r); got != "203.0.113.9" {
			t.Errorf("ExtractClientIP = %q, want 203.0.113.9", got)
		}
	})

	t.Run("forwarded via trusted proxy", func(t *testing.T) {
		r := httptest.NewRequest("GET", "/", nil)
		r.RemoteAddr = "10.0.0.5:1234"
		r.Header.Set("X-Forwarded-For", "203.0.113.9, 10.0.0.5")
		if got := d.ExtractClientIP(r); got != "203.0.113.9" {
			t.Errorf("ExtractClientIP = %q, want forwarded client", got)
		}
	})

	t.Run("forwarded header from untrusted peer ignored", func(t *testing.T) {
		r := httptest.NewRequest("GET", "/", nil)
		r.RemoteAddr = "198.51.100.7:1234"
		r.Header.Set("X-Forwarded-For", "203.0.113.9")
		if got := d.ExtractClientIP(r); got != "198.51.100.7" {
			t.Errorf("ExtractClientIP = %q, want direct peer", got)
		}
	})
}
