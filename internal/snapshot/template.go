package snapshot

import "html/template"

type indexRow struct {
	Name        string
	Kind        string
	Value       string
	ChangeText  string
	ChangeClass string
	Message     string
	Sparkline   template.URL
}

type document struct {
	Symbol      string
	Report      string
	Period      string
	GeneratedAt string
	Table       template.HTML

	ShowIndices  bool
	Indices      []indexRow
	IndexMessage string
}

var page = template.Must(template.New("snapshot").Parse(`<!DOCTYPE html>
<html lang="vi">
<head>
<meta charset="utf-8">
<title>{{.Symbol}} · {{.Report}} · {{.Period}}</title>
<style>
body{font-family:sans-serif;margin:2rem}
table{border-collapse:collapse}
th,td{border:1px solid #ccc;padding:4px 8px;text-align:right}
td:first-child,th:first-child{text-align:left}
.positive{color:#198754}.negative{color:#dc3545}
.text-danger{color:#dc3545}.text-warning{color:#b58100}.text-muted{color:#6c757d}
</style>
</head>
<body>
<h1>{{.Symbol}}</h1>
<p class="text-muted">Loại báo cáo {{.Report}} · {{.Period}} · {{.GeneratedAt}} UTC</p>
<section id="financial-table">{{.Table}}</section>
{{- if .ShowIndices}}
<section id="index-board">
<h2>Chỉ số thị trường</h2>
{{- if .IndexMessage}}<p class="text-danger">{{.IndexMessage}}</p>{{end}}
{{- if .Indices}}
<table>
{{- range .Indices}}
<tr><td>{{.Name}}</td>
{{- if eq .Kind "error"}}<td colspan="3" class="text-danger">{{.Message}}</td>
{{- else}}<td>{{.Value}}</td><td class="{{.ChangeClass}}">{{.ChangeText}}{{if .Message}} <span class="text-warning">{{.Message}}</span>{{end}}</td>
<td>{{if .Sparkline}}<img alt="{{.Name}}" src="{{.Sparkline}}">{{end}}</td>{{end}}</tr>
{{- end}}
</table>
{{- end}}
</section>
{{- end}}
</body>
</html>
`))
