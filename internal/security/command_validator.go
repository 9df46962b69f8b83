package security

import (
	"fmt"
	"regexp"
	"strings"
)

// CommandValidator checks shell commands against a destructive-pattern
// blocklist before they are offered for execution. A match fails closed:
// the command is rejected outright and never reaches the approval stage.
//
// The default rule set is a starting policy, not a security guarantee;
// callers can extend it via the Add* methods or configuration.
type CommandValidator struct {
	// blockedCommands are exact command strings that are blocked
	blockedCommands []string
	// blockedSubstrings are substrings that indicate destructive commands
	blockedSubstrings []string
	// blockedPatterns are regex patterns that should never be allowed
	blockedPatterns []*regexp.Regexp
}

// NewCommandValidator creates a new CommandValidator with the default rules.
func NewCommandValidator() *CommandValidator {
	cv := &CommandValidator{
		blockedCommands: []string{
			// Classic fork bombs
			":(){:|:&};:",
			":(){ :|:& };:",
		},
		blockedSubstrings: []string{
			// Destructive filesystem operations
			"rm -rf /",
			"rm -rf /*",
			"rm -rf ~",
			"rm -rf $HOME",
			"rm -fr /",
			// Disk operations
			"mkfs.",
			"mkfs ",
			"dd if=/dev/zero of=/dev/",
			"dd if=/dev/urandom of=/dev/",
			"> /dev/sda",
			"> /dev/nvme",
			// Permission attacks
			"chmod -R 777 /",
			"chmod 777 /",
			// Reverse shells
			"nc -e",
			"ncat -e",
			"bash -i >& /dev/tcp",
			"/dev/tcp/",
			"/dev/udp/",
			// Sensitive file access
			"/etc/shadow",
			".ssh/id_rsa",
			".aws/credentials",
		},
	}

	cv.blockedPatterns = []*regexp.Regexp{
		// Fork bomb patterns
		regexp.MustCompile(`:\s*\(\s*\)\s*\{`),
		regexp.MustCompile(`while\s+true\s*;\s*do.*&`),
		// Recursive deletion of root-ish or expanded targets
		regexp.MustCompile(`rm\s+(-[rRf]+\s+)+/`),
		regexp.MustCompile(`rm\s+(-[rRf]+\s+)+\$`),
		// dd to block devices
		regexp.MustCompile(`dd\s+.*of=/dev/[snhv]d`),
		// Network download piped to a shell
		regexp.MustCompile(`(?i)(wget|curl)\s+.*\|\s*(ba)?sh`),
		regexp.MustCompile(`base64\s+-d.*\|\s*(ba)?sh`),
	}

	return cv
}

// ValidationResult contains the result of command validation.
type ValidationResult struct {
	Valid   bool
	Reason  string
	Pattern string // The pattern that matched, if any
}

// Validate checks if a command is safe to offer for execution.
func (cv *CommandValidator) Validate(command string) ValidationResult {
	if strings.TrimSpace(command) == "" {
		return ValidationResult{
			Valid:  false,
			Reason: "empty command",
		}
	}

	normalizedCmd := strings.ToLower(command)

	for _, blocked := range cv.blockedCommands {
		if command == blocked || normalizedCmd == strings.ToLower(blocked) {
			return ValidationResult{
				Valid:   false,
				Reason:  "blocked command",
				Pattern: blocked,
			}
		}
	}

	for _, substr := range cv.blockedSubstrings {
		if strings.Contains(normalizedCmd, strings.ToLower(substr)) {
			return ValidationResult{
				Valid:   false,
				Reason:  fmt.Sprintf("contains blocked pattern: %s", substr),
				Pattern: substr,
			}
		}
	}

	for _, pattern := range cv.blockedPatterns {
		if pattern.MatchString(command) {
			return ValidationResult{
				Valid:   false,
				Reason:  "matches destructive pattern",
				Pattern: pattern.String(),
			}
		}
	}

	return ValidationResult{
		Valid:  true,
		Reason: "command passed validation",
	}
}

// AddBlockedCommand adds an exact command to the blocklist.
func (cv *CommandValidator) AddBlockedCommand(cmd string) {
	cv.blockedCommands = append(cv.blockedCommands, cmd)
}

// AddBlockedSubstring adds a substring pattern to the blocklist.
func (cv *CommandValidator) AddBlockedSubstring(substr string) {
	cv.blockedSubstrings = append(cv.blockedSubstrings, substr)
}

// AddBlockedPattern adds a regex pattern to the blocklist.
func (cv *CommandValidator) AddBlockedPattern(pattern string) error {
	re, err := regexp.Compile(pattern)
	if err != nil {
		return fmt.Errorf("invalid regex pattern: %w", err)
	}
	cv.blockedPatterns = append(cv.blockedPatterns, re)
	return nil
}
