package cmd

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/KaramelBytes/sheetdash-cli/internal/analysis"
	"github.com/KaramelBytes/sheetdash-cli/internal/render"
	"github.com/spf13/pflag"
	"github.com/xuri/excelize/v2"
)

// resetFlags clears values and Changed state left over from a previous invocation.
func resetFlags() {
	for _, c := range rootCmd.Commands() {
		c.Flags().VisitAll(func(f *pflag.Flag) {
			_ = f.Value.Set(f.DefValue)
			f.Changed = false
		})
		for _, sub := range c.Commands() {
			sub.Flags().VisitAll(func(f *pflag.Flag) {
				_ = f.Value.Set(f.DefValue)
				f.Changed = false
			})
		}
	}
	cfg = nil
}

// runCmd executes the root command with args and returns its stdout.
func runCmd(t *testing.T, args ...string) string {
	t.Helper()
	out, err := execCmd(args...)
	if err != nil {
		t.Fatalf("command %v failed: %v", args, err)
	}
	return out
}

func execCmd(args ...string) (string, error) {
	resetFlags()
	var out, errOut bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&errOut)
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return out.String(), err
}

func setupHome(t *testing.T) string {
	t.Helper()
	home := t.TempDir()
	t.Setenv("HOME", home)
	chdir(t, home)
	return home
}

func writeFile(t *testing.T, path, body string) string {
	t.Helper()
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
	return path
}

func TestCLI_AnalyzeMarkdownAndJSON(t *testing.T) {
	home := setupHome(t)
	p := writeFile(t, filepath.Join(home, "example.csv"), "A,B\nx,1\ny,2\nz,n/a\n")

	md := runCmd(t, "analyze", p)
	for _, want := range []string{"File: example.csv", "Rows: 3", "Columns: A, B", "Numeric Columns: B"} {
		if !strings.Contains(md, want) {
			t.Fatalf("markdown missing %q:\n%s", want, md)
		}
	}

	js := runCmd(t, "analyze", p, "--format", "json")
	var res analysis.Result
	if err := json.Unmarshal([]byte(js), &res); err != nil {
		t.Fatalf("unmarshal: %v\n%s", err, js)
	}
	b := res.SummaryStats["B"]
	if res.TotalRows != 3 || b.Count != 2 || b.Mean == nil || *b.Mean != 1.5 {
		t.Fatalf("json result = %+v / %+v", res, b)
	}
	if res.SummaryStats["A"].Mean != nil {
		t.Fatalf("A mean should be null")
	}
}

func TestCLI_AnalyzeGlobWritesOutput(t *testing.T) {
	home := setupHome(t)
	writeFile(t, filepath.Join(home, "a.csv"), "k;v\nx;1,5\ny;2,5\n")
	writeFile(t, filepath.Join(home, "b.csv"), "k;v\nx;3,5\n")
	out := filepath.Join(home, "reports", "all.json")

	msg := runCmd(t, "analyze", filepath.Join(home, "*.csv"), "--decimal", "comma", "--format", "json", "-o", out, "-q")
	if !strings.Contains(msg, "✓ Wrote analysis to") {
		t.Fatalf("unexpected output: %s", msg)
	}
	body, err := os.ReadFile(out)
	if err != nil {
		t.Fatalf("read output: %v", err)
	}
	var results []analysis.Result
	if err := json.Unmarshal(body, &results); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if len(results) != 2 || results[0].Name != "a.csv" || results[1].Name != "b.csv" {
		t.Fatalf("results = %+v", results)
	}
	if m := results[0].SummaryStats["v"].Mean; m == nil || *m != 2 {
		t.Fatalf("comma decimals not applied: %+v", results[0].SummaryStats["v"])
	}
}

func TestCLI_AnalyzeWorkbookSheet(t *testing.T) {
	home := setupHome(t)
	f := excelize.NewFile()
	if _, err := f.NewSheet("Q2"); err != nil {
		t.Fatal(err)
	}
	if err := f.SetSheetRow("Q2", "A1", &[]any{"Item", "Qty"}); err != nil {
		t.Fatal(err)
	}
	if err := f.SetSheetRow("Q2", "A2", &[]any{"bolts", 12}); err != nil {
		t.Fatal(err)
	}
	p := filepath.Join(home, "stock.xlsx")
	if err := f.SaveAs(p); err != nil {
		t.Fatal(err)
	}
	_ = f.Close()

	md := runCmd(t, "analyze", p, "--sheet-name", "Q2")
	if !strings.Contains(md, "File: stock.xlsx (sheet: Q2)") || !strings.Contains(md, "Numeric Columns: Qty") {
		t.Fatalf("markdown:\n%s", md)
	}
	if _, err := execCmd("analyze", p, "--sheet-name", "Nope"); err == nil || !strings.Contains(err.Error(), "Available sheets") {
		t.Fatalf("expected missing sheet error, got %v", err)
	}
}

func TestCLI_ChartFormats(t *testing.T) {
	home := setupHome(t)
	p := writeFile(t, filepath.Join(home, "sales.csv"), "Region,Revenue,Units\nNorth,10,1\nSouth,20,2\nEast,n/a,3\n")

	js := runCmd(t, "chart", p)
	var payload render.Payload
	if err := json.Unmarshal([]byte(js), &payload); err != nil {
		t.Fatalf("unmarshal: %v\n%s", err, js)
	}
	if payload.Kind != "bar" || payload.XTitle != "Region" || payload.YTitle != "Revenue" || len(payload.Values) != 2 {
		t.Fatalf("default chart = %+v", payload)
	}

	js = runCmd(t, "chart", p, "--y", "Units", "--type", "LINE")
	if err := json.Unmarshal([]byte(js), &payload); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if payload.Kind != "line" || len(payload.Values) != 3 {
		t.Fatalf("units chart = %+v", payload)
	}

	cj := runCmd(t, "chart", p, "--type", "pie", "--format", "chartjs")
	if !strings.Contains(cj, `"type": "pie"`) || !strings.Contains(cj, `"scales": {}`) {
		t.Fatalf("chartjs:\n%s", cj)
	}

	img := filepath.Join(home, "out", "sales.png")
	msg := runCmd(t, "chart", p, "--format", "png", "-o", img, "--width", "320", "--height", "200")
	if !strings.Contains(msg, "BAR Chart: Region vs Revenue (2 points)") {
		t.Fatalf("message = %s", msg)
	}
	b, err := os.ReadFile(img)
	if err != nil || !bytes.HasPrefix(b, []byte("\x89PNG")) {
		t.Fatalf("png not written: %v", err)
	}

	mp := filepath.Join(home, "sales.msgpack")
	runCmd(t, "chart", p, "--format", "msgpack", "-o", mp)
	raw, err := os.ReadFile(mp)
	if err != nil {
		t.Fatalf("read msgpack: %v", err)
	}
	decoded, err := render.DecodeMsgpack(raw)
	if err != nil || decoded.YTitle != "Revenue" {
		t.Fatalf("msgpack = %+v, %v", decoded, err)
	}
}

func TestCLI_ChartConfigErrors(t *testing.T) {
	home := setupHome(t)
	p := writeFile(t, filepath.Join(home, "names.csv"), "Name,Team\nann,red\nbob,blue\n")

	if _, err := execCmd("chart", p); err == nil || err.Error() != "Please select X and Y axes" {
		t.Fatalf("expected axis placeholder, got %v", err)
	}
	if _, err := execCmd("chart", p, "--y", "Team", "--type", "area"); err == nil || !strings.Contains(err.Error(), "Unknown chart type") {
		t.Fatalf("expected unknown type, got %v", err)
	}
	if _, err := execCmd("chart", p, "--format", "png"); err == nil || !strings.Contains(err.Error(), "--output") {
		t.Fatalf("expected --output requirement, got %v", err)
	}
	if _, err := execCmd("chart", p, "--y", "Team", "--format", "png", "-o", filepath.Join(home, "x.png")); err == nil || !strings.Contains(err.Error(), "No numeric values") {
		t.Fatalf("expected empty series placeholder, got %v", err)
	}
}

func TestCLI_ConfigSetAndShow(t *testing.T) {
	home := setupHome(t)
	runCmd(t, "config", "set", "default_chart_type", "Doughnut")
	runCmd(t, "config", "set", "max_sessions", "4")
	if _, err := os.Stat(filepath.Join(home, ".sheetdash", "config.yaml")); err != nil {
		t.Fatalf("config not saved: %v", err)
	}
	if _, err := execCmd("config", "set", "default_chart_type", "area"); err == nil {
		t.Fatalf("invalid chart type should be rejected")
	}
	out := runCmd(t, "config", "show")
	for _, want := range []string{"default_chart_type: doughnut", "max_sessions: 4", "server_addr: 127.0.0.1:8080"} {
		if !strings.Contains(out, want) {
			t.Fatalf("show missing %q:\n%s", want, out)
		}
	}
}

// chdir changes the working directory for the duration of the test and
// restores it on cleanup (equivalent to testing.T.Chdir from Go 1.24).
func chdir(t *testing.T, dir string) {
	t.Helper()
	old, err := os.Getwd()
	if err != nil {
		t.Fatal(err)
	}
	if err := os.Chdir(dir); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() {
		if err := os.Chdir(old); err != nil {
			t.Fatal(err)
		}
	})
}
