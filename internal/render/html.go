package render

import (
	"bytes"
	"html/template"
	"strings"
)

var fragments = template.Must(template.New("fragments").Funcs(template.FuncMap{
	"cell":     FormatCell,
	"fixed":    FormatFixed,
	"date":     FormatDate,
	"datetime": FormatDateTime,
}).Parse(fragmentTemplates))

const fragmentTemplates = `
{{define "message"}}<p class="{{if .IsError}}text-danger{{else}}text-muted{{end}}">{{.Text}}</p>{{end}}

{{define "options"}}<option value="">{{.Placeholder}}</option>
{{- range .Options}}
<option value="{{.Value}}"{{if eq .Value $.Selected}} selected{{end}}>{{.Text}}</option>
{{- end}}{{end}}

{{define "table"}}<table><tr><th>Chỉ tiêu</th>
{{- range .Headers}}<th>{{.}}</th>{{end}}</tr>
{{- range .Rows}}
<tr><td>{{.Item}}</td>{{range .Cells}}<td>{{.}}</td>{{end}}</tr>
{{- end}}
</table>{{end}}

{{define "canvas"}}
{{- if eq .Kind "plotly"}}<div id="{{.Canvas}}-figure" class="plotly-figure" data-chart-kind="plotly" data-chart="{{.JSON}}"></div>
{{- else}}<canvas id="{{.Canvas}}" data-chart-kind="{{.Kind}}" data-chart="{{.JSON}}"></canvas>{{end}}
{{- end}}

{{define "buttons"}}
{{- range .}}<button type="button" name="line_item_id" value="{{.LineItemID}}"{{if .Active}} class="active"{{end}}>{{.Label}}</button>{{end}}
{{- end}}

{{define "index-board"}}
{{- range .}}
<div class="col-md-4 mb-4"><div class="index-card d-flex align-items-center">
<div class="index-info"><h5 class="index-name">{{.Name}}</h5>
{{- if eq .Kind "success"}}
<p class="index-value">{{.Value}}</p><p class="index-change {{.ChangeClass}}">{{.ChangeText}}</p>
{{- else if eq .Kind "warning"}}
<p class="index-value">{{.Value}}</p><p class="text-warning small">{{.Message}}</p>
{{- else}}
<p class="text-danger">{{.Message}}</p>
{{- end}}
</div>
{{- if .HasChart}}
<canvas id="{{.CanvasID}}" class="mini-chart" data-chart-kind="chartjs" data-chart="{{.ChartJSON}}"></canvas>
<noscript><img class="mini-chart" alt="{{.Name}}" src="/charts/mini/{{.Key}}.png"></noscript>
{{- end}}
</div></div>
{{- end}}
{{- end}}

{{define "news-list"}}
{{- range .}}
<div class="news-item" hx-post="/priceboard/news/{{.IDParam}}">
<h3>{{if .Title}}{{.Title}}{{else}}No Title{{end}}</h3>
{{- if .Published}}<p>{{date .Published}}</p>{{end}}
</div>
{{- end}}
{{- end}}

{{define "news-popup"}}<h2 id="popupTitle">{{if .Title}}{{.Title}}{{else}}N/A{{end}}</h2>
<p id="popupPublished">{{if .Published}}Published: {{datetime .Published}}{{else}}Published: N/A{{end}}</p>
<div id="popupContent">{{if .Content}}{{.Content}}{{else}}N/A{{end}}</div>
{{- if .Link}}
<a id="popupLink" href="{{.Link}}" target="_blank" rel="noopener">Read More</a>
{{- end}}
<button type="button" hx-post="/priceboard/popup/close" hx-vals='{"via":"button"}'>&times;</button>{{end}}

{{define "capital"}}<p>Năm: <span id="resultYear">{{.Year}}</span></p>
<p>Quý: <span id="resultQuarter">{{.Quarter}}</span></p>
<p>Line Item ID: <span id="resultLineItemId">{{.LineItemID}}</span></p>
<p>Tổng nguồn vốn: <strong id="tongNguonVonValue">{{.Value}}</strong></p>{{end}}
`

func execute(name string, data any) template.HTML {
	var buf bytes.Buffer
	if err := fragments.ExecuteTemplate(&buf, name, data); err != nil {
		return Message("render error: "+err.Error(), true)
	}
	return template.HTML(strings.TrimSpace(buf.String()))
}

// Message renders a textual placeholder or error paragraph.
func Message(text string, isError bool) template.HTML {
	var buf bytes.Buffer
	if err := fragments.ExecuteTemplate(&buf, "message", struct {
		Text    string
		IsError bool
	}{text, isError}); err != nil {
		return template.HTML(template.HTMLEscapeString(text))
	}
	return template.HTML(buf.String())
}

// Option is a select option.
type Option struct {
	Value string
	Text  string
}

// SelectOptions renders a placeholder option followed by opts, marking selected.
func SelectOptions(placeholder string, opts []Option, selected string) template.HTML {
	return execute("options", struct {
		Placeholder string
		Options     []Option
		Selected    string
	}{placeholder, opts, selected})
}
