package formengine

import (
	"html/template"
	"io"
	"strconv"
)

// ViewMode selects editable controls or read-only text. Rendering never mutates the form.
type ViewMode int

const (
	ModeEdit ViewMode = iota
	ModeView
)

type fieldView struct {
	Input     string
	Label     string
	Value     string
	Type      string
	Required  bool
	Multiline bool
}

type sectionView struct {
	Title  string
	Fields []fieldView
}

type rowView struct {
	N     int
	Cells []fieldView
}

type tableView struct {
	Prefix  string
	Title   string
	Headers []string
	Rows    []rowView
}

type pageView struct {
	Edit     bool
	Sections []sectionView
	Tables   []tableView
}

var formTemplate = template.Must(template.New("form").Parse(`
{{- define "control" -}}
{{- if .Multiline -}}
<textarea name="{{.Input}}" class="form-control"{{if .Required}} required{{end}}>{{.Value}}</textarea>
{{- else -}}
<input type="{{.Type}}" name="{{.Input}}" value="{{.Value}}" class="form-control"{{if .Required}} required{{end}}>
{{- end -}}
{{- end -}}

{{- define "value" -}}
<span class="form-value" data-input="{{.Input}}">{{.Value}}</span>
{{- end -}}

<form id="annualReportForm" class="{{if .Edit}}mode-edit{{else}}mode-view{{end}}">
{{- range .Sections}}
<fieldset>
<legend>{{.Title}}</legend>
{{- range .Fields}}
<div class="form-group">
<label>{{.Label}}{{if and $.Edit .Required}} *{{end}}</label>
{{if $.Edit}}{{template "control" .}}{{else}}{{template "value" .}}{{end}}
</div>
{{- end}}
</fieldset>
{{- end}}
{{- range .Tables}}
<fieldset data-table="{{.Prefix}}">
<legend>{{.Title}}</legend>
<table class="table">
<thead><tr><th>#</th>{{range .Headers}}<th>{{.}}</th>{{end}}{{if $.Edit}}<th></th>{{end}}</tr></thead>
<tbody id="{{.Prefix}}Table">
{{- $prefix := .Prefix}}
{{- range .Rows}}
<tr data-row="{{.N}}"><td>{{.N}}</td>
{{- range .Cells}}<td>{{if $.Edit}}{{template "control" .}}{{else}}{{template "value" .}}{{end}}</td>{{end}}
{{- if $.Edit}}<td><button type="button" data-action="delete-row" data-table="{{$prefix}}" data-row="{{.N}}">Delete</button></td>{{end}}</tr>
{{- end}}
</tbody>
</table>
{{- if $.Edit}}
<button type="button" data-action="add-row" data-table="{{.Prefix}}">Add Row</button>
{{- end}}
</fieldset>
{{- end}}
{{- if .Edit}}
<button type="button" data-action="save-draft">Save as Draft</button>
<button type="submit">Submit Report</button>
{{- end}}
</form>
`))

func (f *Form) view(mode ViewMode) pageView {
	page := pageView{Edit: mode == ModeEdit}
	index := map[string]int{}
	for _, b := range Bindings {
		i, ok := index[b.Section]
		if !ok {
			i = len(page.Sections)
			index[b.Section] = i
			page.Sections = append(page.Sections, sectionView{Title: b.Section})
		}
		page.Sections[i].Fields = append(page.Sections[i].Fields, fieldView{
			Input:     b.Input,
			Label:     b.Label,
			Value:     f.values[b.Input],
			Type:      b.kind.inputType(),
			Required:  b.Required,
			Multiline: b.kind.multiline(),
		})
	}
	for _, t := range RowTables {
		tv := tableView{Prefix: t.Prefix(), Title: t.Title()}
		for _, field := range t.Fields() {
			tv.Headers = append(tv.Headers, field.Label)
		}
		for n := 1; n <= f.rows[t.Prefix()]; n++ {
			if mode == ModeView && blankRow(f.rowCells(t, n)) {
				continue
			}
			row := rowView{N: n}
			for _, field := range t.Fields() {
				input := RowInput(t, field.Suffix, n)
				row.Cells = append(row.Cells, fieldView{
					Input:     input,
					Label:     field.Label,
					Value:     f.values[input],
					Type:      field.Kind.inputType(),
					Multiline: field.Kind.multiline(),
				})
			}
			tv.Rows = append(tv.Rows, row)
		}
		page.Tables = append(page.Tables, tv)
	}
	return page
}

// Render writes the form as HTML: inputs in ModeEdit, plain text in ModeView.
func Render(w io.Writer, f *Form, mode ViewMode) error {
	return formTemplate.Execute(w, f.view(mode))
}

func (m ViewMode) String() string {
	switch m {
	case ModeEdit:
		return "edit"
	case ModeView:
		return "view"
	}
	return "ViewMode(" + strconv.Itoa(int(m)) + ")"
}
