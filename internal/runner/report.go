package runner

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/hamed0406/llamaprobe/internal/domain"
	"github.com/hamed0406/llamaprobe/internal/probe"
)

func printHealth(w io.Writer, res domain.ProbeResult) {
	if res.OK() {
		fmt.Fprintf(w, "Health check: %d\n", res.StatusCode)
		if len(res.Body) > 0 {
			fmt.Fprintf(w, "Health response: %s\n", compact(res.Body))
		}
		return
	}
	last := "no response"
	if res.StatusCode != 0 {
		last = fmt.Sprintf("last status %d", res.StatusCode)
	}
	fmt.Fprintf(w, "Health check failed: %s (%d attempts, %s)\n", res.Reason, res.Attempts, last)
}

func printDiagnostics(w io.Writer, results []probe.CheckResult) {
	for _, d := range results {
		mark := "ok"
		if !d.Success {
			mark = "FAIL"
		}
		fmt.Fprintf(w, "  %s %s: %s\n", d.Name, mark, d.Message)
	}
}

func printPrompt(w io.Writer, res domain.ProbeResult) {
	if res.StatusCode == 0 {
		fmt.Fprintf(w, "Error: %s\n", res.Reason)
		return
	}
	fmt.Fprintf(w, "Status code: %d\n", res.StatusCode)
	switch {
	case res.OK():
		fmt.Fprintf(w, "Response: %s\n", indent(res.Body))
	case domain.KindOf(res.Err) == domain.KindParse:
		fmt.Fprintf(w, "Malformed response: %s\n", res.Reason)
	default:
		fmt.Fprintf(w, "Error response: %s\n", res.Reason)
	}
}

func indent(body []byte) string {
	var buf bytes.Buffer
	if err := json.Indent(&buf, body, "", "  "); err != nil {
		return string(body)
	}
	return buf.String()
}

func compact(body []byte) string {
	var buf bytes.Buffer
	if err := json.Compact(&buf, body); err != nil {
		return strings.TrimSpace(string(body))
	}
	return buf.String()
}

func healthSummary(tgt domain.ProbeTarget, res domain.ProbeResult, diag []probe.CheckResult) string {
	var b strings.Builder
	fmt.Fprintf(&b, "URL: %s\nAttempts: %d\nLast status: %s\n", tgt.HealthURL(), res.Attempts, statusText(res.StatusCode))
	for _, d := range diag {
		fmt.Fprintf(&b, "%s: %s\n", d.Name, d.Message)
	}
	fmt.Fprintf(&b, "Checked: %s", time.Now().UTC().Format(time.RFC3339))
	return b.String()
}

func promptSummary(tgt domain.ProbeTarget, res domain.ProbeResult) string {
	text := fmt.Sprintf("URL: %s\nHTTP: %s\nLatency: %.0f ms",
		tgt.URL, statusText(res.StatusCode), float64(res.Latency)/float64(time.Millisecond))
	if !res.OK() {
		text += "\nReason: " + truncate(res.Reason, 300)
	}
	return text
}

func statusText(code int) string {
	if code == 0 {
		return "n/a"
	}
	return fmt.Sprintf("%d", code)
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
