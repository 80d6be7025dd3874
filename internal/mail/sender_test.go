package mail

import "testing"

func TestConfigRecipients(t *testing.T) {
	cfg := Config{To: " a@example.com, b@example.com ,, c@example.com"}
	got := cfg.Recipients()
	want := []string{"a@example.com", "b@example.com", "c@example.com"}
	if len(got) != len(want) {
		t.Fatalf("Recipients = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("Recipients[%d] = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestConfigEnabled(t *testing.T) {
	full := Config{
		Host:     "smtp.example.com",
		Port:     465,
		Username: "u",
		Password: "p",
		From:     "reports@example.com",
		To:       "me@example.com",
	}
	if !full.Enabled() {
		t.Fatal("fully configured transport reported disabled")
	}

	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"no host", func(c *Config) { c.Host = "" }},
		{"no password", func(c *Config) { c.Password = "" }},
		{"no recipients", func(c *Config) { c.To = " , " }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := full
			tt.mutate(&cfg)
			if cfg.Enabled() {
				t.Fatal("incomplete transport reported enabled")
			}
		})
	}
}
