package chat

import "testing"

func TestNormalizeRole(t *testing.T) {
	tests := []struct {
		in   string
		want Role
	}{
		{"user", RoleUser},
		{"model", RoleModel},
		{"assistant", RoleModel},
		{"ASSISTANT", RoleModel},
		{" model ", RoleModel},
		{"system", RoleUser},
		{"tool", RoleUser},
		{"", RoleUser},
		{"anything-else", RoleUser},
	}
	for _, tt := range tests {
		if got := NormalizeRole(tt.in); got != tt.want {
			t.Errorf("NormalizeRole(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestNormalizeRole_Idempotent(t *testing.T) {
	for _, in := range []string{"user", "model", "assistant", "junk"} {
		once := NormalizeRole(in)
		twice := NormalizeRole(string(once))
		if once != twice {
			t.Errorf("NormalizeRole not idempotent for %q: %q then %q", in, once, twice)
		}
	}
}

func TestMessageText(t *testing.T) {
	tests := []struct {
		name string
		msg  Message
		want string
	}{
		{"content only", Message{Content: "hello"}, "hello"},
		{"parts only", Message{Parts: []string{"a", "b"}}, "a\nb"},
		{"content wins over parts", Message{Content: "c", Parts: []string{"x"}}, "c"},
		{"empty", Message{}, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.msg.Text(); got != tt.want {
				t.Errorf("Text() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestGenerationConfigDefaults(t *testing.T) {
	temp := 0.2
	if got := Float(&temp, 0.7); got != 0.2 {
		t.Errorf("Float(set) = %v, want 0.2", got)
	}
	if got := Float(nil, 0.7); got != 0.7 {
		t.Errorf("Float(nil) = %v, want 0.7", got)
	}
	n := 256
	if got := Int(&n, 1000); got != 256 {
		t.Errorf("Int(set) = %v, want 256", got)
	}
	if got := Int(nil, 1000); got != 1000 {
		t.Errorf("Int(nil) = %v, want 1000", got)
	}
}
