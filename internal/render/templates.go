package render

import "html/template"

var (
	indexTmpl = template.Must(template.New("index").Parse(indexTemplate))
	fileTmpl  = template.Must(template.New("file").Parse(fileTemplate))
)

const pageStyle = `
body { font-family: -apple-system, "Segoe UI", Roboto, sans-serif; margin: 0; background: #f7f7f8; color: #24292f; }
main { max-width: 1080px; margin: 0 auto; padding: 24px; }
h1 { font-size: 22px; }
h2 { font-size: 17px; margin-top: 32px; }
a { color: #0969da; text-decoration: none; }
a:hover { text-decoration: underline; }
.cards { display: flex; gap: 16px; flex-wrap: wrap; }
.card { background: #fff; border: 1px solid #d0d7de; border-radius: 6px; padding: 16px 20px; }
.card .value { font-size: 26px; font-weight: 600; }
.card .label { font-size: 12px; color: #57606a; }
table { border-collapse: collapse; background: #fff; }
th, td { border: 1px solid #d0d7de; padding: 6px 12px; font-size: 13px; text-align: right; }
th { background: #f6f8fa; }
td.name, th.name { text-align: left; }
.lang { font-size: 12px; color: #57606a; margin-left: 8px; }
.chart-box { background: #fff; border: 1px solid #d0d7de; border-radius: 6px; padding: 8px; }
.block { background: #fff; border: 1px solid #d0d7de; border-radius: 6px; margin: 12px 0; overflow: hidden; }
.block header { display: flex; gap: 12px; align-items: baseline; padding: 6px 12px; background: #f6f8fa; font-size: 13px; }
.block pre { margin: 0; padding: 8px 12px; font-size: 12px; overflow-x: auto; }
.ln { display: inline-block; width: 48px; color: #8c959f; user-select: none; }
.badge { border-radius: 10px; padding: 1px 8px; font-size: 12px; font-weight: 600; }
.badge.karma { background: #dafbe1; color: #116329; }
.badge.none { background: #ffebe9; color: #a40e26; }
`

const indexTemplate = `<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<title>karma report</title>
<script src="https://go-echarts.github.io/go-echarts-assets/assets/echarts.min.js"></script>
<style>{{.Style}}</style>
</head>
<body>
<main>
<h1>karma report</h1>
<p>commit {{if .CommitHref}}<a href="{{.CommitHref}}"><code>{{.CommitShort}}</code></a>{{else}}<code>{{.CommitShort}}</code>{{end}}</p>

<div class="cards">
	<div class="card"><div class="value">{{.FilesPct}}%</div><div class="label">files fully attributed ({{.FilesWithFullKarma}}/{{.FilesTotal}})</div></div>
	<div class="card"><div class="value">{{.LinesPct}}%</div><div class="label">lines with karma ({{.TotalKarmaLines}}/{{.TotalLines}})</div></div>
	<div class="card"><div class="value">{{.AuthorCount}}</div><div class="label">authors</div></div>
</div>

<h2>Same-commit blocks</h2>
{{.BlockChart}}

<h2>Cross-commit karma runs</h2>
{{.RunChart}}

<h2>Distribution</h2>
<table>
<tr><th class="name">span &ge;</th><th>blocks</th><th>% blocks</th><th>block lines</th><th>% lines</th><th>runs</th><th>% runs</th><th>run lines</th><th>% lines</th></tr>
{{range .Distribution}}<tr><td class="name">{{.Threshold}}</td><td>{{.BlockGroups}}</td><td>{{.BlockGroupPct}}</td><td>{{.BlockLines}}</td><td>{{.BlockLinePct}}</td><td>{{.RunGroups}}</td><td>{{.RunGroupPct}}</td><td>{{.RunLines}}</td><td>{{.RunLinePct}}</td></tr>
{{end}}</table>

{{if .Files}}<h2>Files</h2>
<ul>
{{range .Files}}<li><a href="{{.Href}}">{{.Path}}</a>{{if .Language}}<span class="lang">{{.Language}}</span>{{end}}</li>
{{end}}</ul>{{end}}
</main>
</body>
</html>
`

const fileTemplate = `<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<title>{{.Path}}</title>
<style>{{.Style}}</style>
</head>
<body>
<main>
<p><a href="{{.IndexHref}}">&larr; report</a></p>
<h1>{{.Path}}{{if .Language}}<span class="lang">{{.Language}}</span>{{end}}</h1>

{{range .Blocks}}<div class="block">
<header>
	{{if .CommitHref}}<a href="{{.CommitHref}}"><code>{{.CommitShort}}</code></a>{{else}}<code>{{.CommitShort}}</code>{{end}}
	{{if .AuthorHref}}<a href="{{.AuthorHref}}">{{.Author}}</a>{{else}}<span>{{.Author}}</span>{{end}}
	<span>{{.Summary}}</span>
	{{if .HasKarma}}<span class="badge karma">karma {{.Karma}}</span>{{else}}<span class="badge none">no karma</span>{{end}}
</header>
<pre>{{range .Lines}}<span class="ln">{{.Number}}</span>{{.Text}}
{{end}}</pre>
</div>
{{end}}
</main>
</body>
</html>
`
