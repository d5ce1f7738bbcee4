package report

import (
	"fmt"
	"html/template"
	"os"
	"path/filepath"
	"time"
)

// WriteHTML renders the run result as a standalone report.html.
func WriteHTML(outputDir string, result *RunResult) (string, error) {
	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return "", fmt.Errorf("failed to create output dir: %w", err)
	}

	path := filepath.Join(outputDir, "report.html")
	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("failed to create report file: %w", err)
	}
	defer f.Close()

	if err := htmlTemplate.Execute(f, result); err != nil {
		return "", fmt.Errorf("failed to render report: %w", err)
	}
	return path, nil
}

var htmlTemplate = template.Must(template.New("report").Funcs(template.FuncMap{
	"fmtDuration": func(d time.Duration) string {
		return d.Round(time.Millisecond).String()
	},
	"fmtTime": func(t time.Time) string {
		return t.Format("2006-01-02 15:04:05")
	},
}).Parse(`<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<title>fitrunner report {{.RunID}}</title>
<style>
  body { font-family: -apple-system, Segoe UI, sans-serif; margin: 2em; color: #222; }
  h1 { font-size: 1.4em; }
  .summary span { margin-right: 1.5em; }
  .passed { color: #1a7f37; }
  .failed { color: #cf222e; }
  .skipped { color: #6e7781; }
  .warned { color: #9a6700; }
  .flaky { color: #9a6700; }
  table { border-collapse: collapse; width: 100%; margin-top: 1em; }
  th, td { text-align: left; padding: 6px 10px; border-bottom: 1px solid #d0d7de; }
  td.error { font-family: monospace; font-size: 0.85em; color: #cf222e; }
  .tag { background: #eef; border-radius: 8px; padding: 1px 8px; margin-right: 4px; font-size: 0.8em; }
</style>
</head>
<body>
<h1>{{.Name}} &mdash; run {{.RunID}}</h1>
<p>Started {{fmtTime .StartTime}}, took {{fmtDuration .Duration}}.
{{with .PlatformInfo}}Device: {{.DeviceName}} ({{.Platform}} {{.OSVersion}}), app {{.AppID}}.{{end}}</p>
<div class="summary">
  <span>Total: {{.TotalSpecs}}</span>
  <span class="passed">Passed: {{.PassedSpecs}}</span>
  <span class="failed">Failed: {{.FailedSpecs}}</span>
  <span class="skipped">Skipped: {{.SkippedSpecs}}</span>
  {{if .FlakySpecs}}<span class="flaky">Flaky: {{.FlakySpecs}}</span>{{end}}
</div>
<table>
<tr><th>Spec</th><th>Status</th><th>Duration</th><th>Attempts</th><th>Error</th></tr>
{{range .Specs}}
<tr>
  <td>{{.Name}} {{range .Tags}}<span class="tag">{{.}}</span>{{end}}</td>
  <td class="{{.Status}}">{{.Status}}{{if .Flaky}} (flaky){{end}}</td>
  <td>{{fmtDuration .Duration}}</td>
  <td>{{.Attempt}}/{{.MaxAttempts}}</td>
  <td class="error">{{.Error}}</td>
</tr>
{{end}}
</table>
</body>
</html>
`))
