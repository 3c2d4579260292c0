package executor

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"os/exec"
	"regexp"
	"time"
)

// denyPatterns blocks destructive, exfiltrating, or privilege-escalating
// commands before they ever reach the shell. Defense-in-depth alongside
// whatever sandboxing the deployment wraps the workspace in.
// Sources: OWASP Agentic AI Top 10, MITRE ATT&CK, PayloadsAllTheThings.
var denyPatterns = []*regexp.Regexp{
	// Destructive file operations
	regexp.MustCompile(`\brm\s+-[rf]{1,2}\b`),
	regexp.MustCompile(`\brm\s+.*--recursive`),
	regexp.MustCompile(`\brm\s+.*--force`),
	regexp.MustCompile(`\b(mkfs|diskpart)\b|\bformat\s`),
	regexp.MustCompile(`\bdd\s+if=`),
	regexp.MustCompile(`>\s*/dev/sd[a-z]\b`),
	regexp.MustCompile(`\b(shutdown|reboot|poweroff)\b`),
	regexp.MustCompile(`:\(\)\s*\{.*\};\s*:`), // fork bomb

	// Data exfiltration
	regexp.MustCompile(`\bcurl\b.*\|\s*(ba)?sh\b`),
	regexp.MustCompile(`\bcurl\b.*(-d\b|-F\b|--data|--upload|--form|-T\b|-X\s*P(UT|OST|ATCH))`),
	regexp.MustCompile(`\bwget\b.*-O\s*-\s*\|\s*(ba)?sh\b`),
	regexp.MustCompile(`\bwget\b.*--post-(data|file)`),
	regexp.MustCompile(`/dev/tcp/`),

	// Reverse shells
	regexp.MustCompile(`\b(nc|ncat|netcat)\b.*-[el]\b`),
	regexp.MustCompile(`\bsocat\b`),
	regexp.MustCompile(`\bopenssl\b.*s_client`),
	regexp.MustCompile(`\bpython[23]?\b.*\bimport\s+(socket|http\.client|urllib|requests)\b`),
	regexp.MustCompile(`\bmkfifo\b`),

	// Privilege escalation
	regexp.MustCompile(`\bsudo\b`),
	regexp.MustCompile(`\bsu\s+-`),
	regexp.MustCompile(`\bnsenter\b`),
	regexp.MustCompile(`\bunshare\b`),
	regexp.MustCompile(`\b(mount|umount)\b`),

	// Environment variable injection
	regexp.MustCompile(`\bLD_PRELOAD\s*=`),
	regexp.MustCompile(`\bLD_LIBRARY_PATH\s*=`),
	regexp.MustCompile(`\bBASH_ENV\s*=`),

	// Container escape
	regexp.MustCompile(`/var/run/docker\.sock|docker\.(sock|socket)`),
	regexp.MustCompile(`/proc/sys/(kernel|fs|net)/`),
	regexp.MustCompile(`/sys/(kernel|fs|class|devices)/`),

	// Persistence
	regexp.MustCompile(`\bcrontab\b`),
	regexp.MustCompile(`>\s*~/?\.(bashrc|bash_profile|profile|zshrc)`),

	// Process manipulation
	regexp.MustCompile(`\bkill\s+-9\s`),
	regexp.MustCompile(`\b(killall|pkill)\b`),

	// Environment dumping — secrets live in env vars (API keys).
	regexp.MustCompile(`^\s*env\s*$`),
	regexp.MustCompile(`^\s*env\s*\|`),
	regexp.MustCompile(`\bprintenv\b`),
}

// IsDenied reports whether cmd matches a deny pattern, along with the
// pattern it matched (for the error message).
func IsDenied(cmd string) (bool, string) {
	for _, p := range denyPatterns {
		if p.MatchString(cmd) {
			return true, p.String()
		}
	}
	return false, ""
}

// Local runs commands directly on the host inside a fixed working directory.
type Local struct {
	WorkDir string
}

// NewLocal constructs a Local executor rooted at workDir.
func NewLocal(workDir string) *Local {
	return &Local{WorkDir: workDir}
}

func (l *Local) Execute(ctx context.Context, cmd string, timeoutSecs int) (string, int) {
	if denied, pattern := IsDenied(cmd); denied {
		return fmt.Sprintf("command denied by safety policy: matches pattern %s", pattern), 1
	}

	if timeoutSecs <= 0 {
		timeoutSecs = 30
	}
	runCtx, cancel := context.WithTimeout(ctx, time.Duration(timeoutSecs)*time.Second)
	defer cancel()

	c := exec.CommandContext(runCtx, "sh", "-c", cmd)
	c.Dir = l.WorkDir

	var out bytes.Buffer
	c.Stdout = &out
	c.Stderr = &out

	err := c.Run()
	output := out.String()

	if runCtx.Err() == context.DeadlineExceeded {
		return fmt.Sprintf("Command timed out after %d seconds", timeoutSecs), 124
	}
	if err != nil {
		exitCode := 1
		if exitErr, ok := err.(*exec.ExitError); ok {
			exitCode = exitErr.ExitCode()
		}
		if output == "" {
			output = err.Error()
		}
		return output, exitCode
	}
	return output, 0
}

func (l *Local) ExecuteBackground(ctx context.Context, cmd string) {
	if denied, _ := IsDenied(cmd); denied {
		return
	}
	c := exec.Command("sh", "-c", cmd)
	c.Dir = l.WorkDir
	if err := c.Start(); err != nil {
		slog.Debug("background command failed to start", "error", err)
	}
}
