package middleware

import "testing"

func TestValidateKOLID(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{"valid uuid", "3f0e8a9c-1b2d-4c5e-8f7a-9b0c1d2e3f4a", false},
		{"uppercase uuid", "3F0E8A9C-1B2D-4C5E-8F7A-9B0C1D2E3F4A", false},
		{"empty", "", true},
		{"not a uuid", "kol-123", true},
		{"truncated", "3f0e8a9c-1b2d", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, errMsg := ValidateKOLID(tt.input)
			if (errMsg != "") != tt.wantErr {
				t.Errorf("ValidateKOLID(%q) error = %q, wantErr %v", tt.input, errMsg, tt.wantErr)
			}
		})
	}
}

func TestValidateWallet(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{"empty allowed", "", false},
		{"valid base58", "7xKXtg2CW87d97TXJSDpbD5jBkheTqA83TZRuJosgAsU", false},
		{"anon identity", "anon_1756500000000_k3f9a2b1c", false},
		{"contains zero", "0xKXtg2CW87d97TXJSDpbD5jBkheTqA83TZRuJosgAsU", true},
		{"too short", "abc", true},
		{"malformed anon", "anon_abc_", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, errMsg := ValidateWallet(tt.input)
			if (errMsg != "") != tt.wantErr {
				t.Errorf("ValidateWallet(%q) error = %q, wantErr %v", tt.input, errMsg, tt.wantErr)
			}
		})
	}
}

func TestValidateTwitterHandle(t *testing.T) {
	got, errMsg := ValidateTwitterHandle("@cryptokol")
	if errMsg != "" {
		t.Fatalf("unexpected error: %s", errMsg)
	}
	if got != "cryptokol" {
		t.Errorf("handle = %q, want %q", got, "cryptokol")
	}

	if _, errMsg := ValidateTwitterHandle("way_too_long_for_twitter"); errMsg == "" {
		t.Error("expected error for overlong handle")
	}
	if _, errMsg := ValidateTwitterHandle("has space"); errMsg == "" {
		t.Error("expected error for handle with space")
	}
}

func TestValidateURL(t *testing.T) {
	if _, errMsg := ValidateURL(""); errMsg != "" {
		t.Errorf("empty url should be allowed, got %q", errMsg)
	}
	if _, errMsg := ValidateURL("https://pbs.twimg.com/profile.jpg"); errMsg != "" {
		t.Errorf("unexpected error: %s", errMsg)
	}
	if _, errMsg := ValidateURL("ftp://example.com/x"); errMsg == "" {
		t.Error("expected error for non-http scheme")
	}
}
