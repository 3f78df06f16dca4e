package middleware

import "testing"

func TestValidateAssetURL(t *testing.T) {
	tests := []struct {
		name    string
		url     string
		wantErr bool
	}{
		{"https ok", "https://portal.example.gov", false},
		{"http ok", "http://portal.example.gov/services", false},
		{"empty", "", true},
		{"bad scheme", "ftp://portal.example.gov", true},
		{"localhost", "http://localhost:8080", true},
		{"loopback", "http://127.0.0.1/admin", true},
		{"private 10", "http://10.0.0.5", true},
		{"private 192.168", "https://192.168.1.10", true},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			err := ValidateAssetURL(tc.url)
			if (err != nil) != tc.wantErr {
				t.Errorf("ValidateAssetURL(%q): err=%v, wantErr=%v", tc.url, err, tc.wantErr)
			}
		})
	}
}

func TestValidateID(t *testing.T) {
	if err := ValidateID(1); err != nil {
		t.Errorf("ValidateID(1): %v", err)
	}
	if err := ValidateID(0); err == nil {
		t.Error("ValidateID(0): expected error")
	}
	if err := ValidateID(-7); err == nil {
		t.Error("ValidateID(-7): expected error")
	}
}

func TestValidateLimit(t *testing.T) {
	tests := []struct {
		in   int
		want int
	}{
		{0, 20},
		{-5, 20},
		{50, 50},
		{100, 100},
		{500, 100},
	}
	for _, tc := range tests {
		if got := ValidateLimit(tc.in); got != tc.want {
			t.Errorf("ValidateLimit(%d): got %d, want %d", tc.in, got, tc.want)
		}
	}
}
