package formengine

import (
	"bytes"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func render(t *testing.T, f *Form, mode ViewMode) string {
	t.Helper()
	var buf bytes.Buffer
	if err := Render(&buf, f, mode); err != nil {
		t.Fatalf("Render(%s): %v", mode, err)
	}
	return buf.String()
}

func TestRenderEditMode(t *testing.T) {
	f := NewForm()
	mustSet(t, f, map[string]string{"kvk_name": `KVK "<b>"`, "kvk_address": "Main Road"})

	html := render(t, f, ModeEdit)
	for _, want := range []string{
		`name="kvk_name" value="KVK &#34;&lt;b&gt;&#34;"`,
		`<textarea name="kvk_address" class="form-control" required>Main Road</textarea>`,
		`type="number" name="oft_farmers_target"`,
		`type="date" name="report_date"`,
		`name="staff_position_1" value="Senior Scientist &amp; Head"`,
		`data-action="add-row" data-table="cereals"`,
		`data-action="delete-row" data-table="staff" data-row="1"`,
		`<button type="submit">Submit Report</button>`,
	} {
		if !strings.Contains(html, want) {
			t.Fatalf("edit render missing %q", want)
		}
	}
}

func TestRenderViewMode(t *testing.T) {
	f := NewForm()
	mustSet(t, f, map[string]string{"kvk_name": "KVK <Alpha>", "staff_name_1": "Jane Doe"})
	f.AddRow("staff")
	before, _ := f.Extract()

	html := render(t, f, ModeView)
	for _, banned := range []string{"<input", "<textarea", "<button", `data-row="2"`} {
		if strings.Contains(html, banned) {
			t.Fatalf("view render contains %q", banned)
		}
	}
	for _, want := range []string{
		`<span class="form-value" data-input="kvk_name">KVK &lt;Alpha&gt;</span>`,
		`<span class="form-value" data-input="staff_name_1">Jane Doe</span>`,
		`class="mode-view"`,
	} {
		if !strings.Contains(html, want) {
			t.Fatalf("view render missing %q", want)
		}
	}

	after, _ := f.Extract()
	if diff := cmp.Diff(before, after); diff != "" {
		t.Fatalf("render changed form state:\n%s", diff)
	}
	if f.Rows("staff") != 2 {
		t.Fatalf("render dropped a row from the form")
	}
}
