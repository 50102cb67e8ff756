package password

import "testing"

func TestValidatePassword(t *testing.T) {
	tests := []struct {
		in   string
		want bool
	}{
		{"short1", false},
		{"onlyletters", false},
		{"12345678", false},
		{"admin12345", true},
	}
	for _, tt := range tests {
		if got := ValidatePassword(tt.in); got != tt.want {
			t.Errorf("ValidatePassword(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestResetToken(t *testing.T) {
	token, hash := NewResetToken()
	if token == "" || hash != HashToken(token) {
		t.Errorf("token %q hash %q", token, hash)
	}
	other, _ := NewResetToken()
	if other == token {
		t.Error("tokens must differ")
	}
}
