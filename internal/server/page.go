package server

import (
	"bytes"
	"fmt"
	"html/template"
	"log/slog"
	"net/http"
	"net/url"

	"github.com/KaramelBytes/casedash/internal/analysis"
	"github.com/KaramelBytes/casedash/internal/dataset"
	"github.com/KaramelBytes/casedash/internal/filter"
)

type categoryRow struct {
	Category string
	Total    float64
	Share    float64
}

type option struct {
	Value    string
	Selected bool
}

type pageData struct {
	D          *analysis.Dashboard
	Categories []categoryRow
	// filter controls
	StateOptions    []option
	AllStates       bool
	CategoryOptions []option
	AllCategories   bool
	GeoURL     string
	FormAction string
	NoCorr     string
	Error      string
}

var pageFuncs = template.FuncMap{
	"count": analysis.FormatCount,
	"r2":    func(v float64) string { return fmt.Sprintf("%.2f", v) },
	"pct":   func(v float64) string { return fmt.Sprintf("%.1f%%", v) },
	"inc":   func(i int) int { return i + 1 },
}

var pageTmpl = template.Must(template.New("page").Funcs(pageFuncs).Parse(pageHTML))

// Page renders the dashboard as a single HTML document.
func (h *Handler) Page(w http.ResponseWriter, r *http.Request) {
	data := pageData{FormAction: h.config.FormAction, GeoURL: "/api/geo", NoCorr: analysis.MsgNoCorr}
	if raw := r.URL.RawQuery; raw != "" {
		data.GeoURL += "?" + raw
	}
	status := http.StatusOK
	d, err := h.build(r.URL.Query())
	if err != nil {
		status = http.StatusBadRequest
		data.Error = err.Error()
	} else {
		data.D = d
		data.Categories = categoryRows(d.Categories.Totals)
		q := r.URL.Query()
		data.AllStates = selectsAll(q, "state")
		data.AllCategories = selectsAll(q, "category")
		data.StateOptions = options(dataset.States(h.legacy, h.summary), d.Selection.States, data.AllStates)
		data.CategoryOptions = options(analysis.AvailableCategories(h.legacy, dataset.OffenderCategories), d.Selection.Categories, data.AllCategories)
	}

	var buf bytes.Buffer
	if err := pageTmpl.Execute(&buf, data); err != nil {
		slog.Error("render page", "error", err)
		http.Error(w, "render failed", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = w.Write(buf.Bytes())
}

// selectsAll reports whether the query leaves key at its "all" default.
func selectsAll(q url.Values, key string) bool {
	if _, ok := q[key]; !ok {
		return true
	}
	return filter.ParseSelection(q[key]).IsAll()
}

// options marks the selected names; nothing is marked when all is chosen.
func options(universe, selected []string, all bool) []option {
	in := make(map[string]struct{}, len(selected))
	for _, s := range selected {
		in[s] = struct{}{}
	}
	out := make([]option, 0, len(universe))
	for _, u := range universe {
		_, ok := in[u]
		out = append(out, option{Value: u, Selected: ok && !all})
	}
	return out
}

func categoryRows(totals []analysis.CategoryTotal) []categoryRow {
	var sum float64
	for _, t := range totals {
		sum += t.Total
	}
	out := make([]categoryRow, 0, len(totals))
	for _, t := range totals {
		row := categoryRow{Category: t.Category, Total: t.Total}
		if sum > 0 {
			row.Share = t.Total * 100 / sum
		}
		out = append(out, row)
	}
	return out
}

const pageHTML = `<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>Sexual Assault &amp; Rape Case Analytics in India</title>
<style>
body { font-family: sans-serif; margin: 2rem; }
.tiles { display: flex; flex-wrap: wrap; gap: 1rem; }
.tile { border: 1px solid #ccc; border-radius: 6px; padding: 1rem; min-width: 12rem; }
.tile .value { font-size: 1.6rem; font-weight: bold; }
.placeholder { padding: .8rem; background: #f4f4f4; border-left: 4px solid #d7191c; }
table { border-collapse: collapse; margin: .5rem 0; }
td, th { border: 1px solid #ddd; padding: .25rem .6rem; text-align: right; }
th:first-child, td:first-child { text-align: left; }
</style>
</head>
<body>
<h1>Sexual Assault &amp; Rape Case Analytics in India</h1>
{{if .Error}}
<p class="placeholder">{{.Error}}</p>
{{else}}{{with .D}}
<form method="GET" action="/">
  <label>From <input type="number" name="from" value="{{.Selection.YearMin}}"></label>
  <label>To <input type="number" name="to" value="{{.Selection.YearMax}}"></label>
  <label>States/UT <select name="state" multiple size="8">
    <option value="all"{{if $.AllStates}} selected{{end}}>All</option>
{{range $.StateOptions}}    <option value="{{.Value}}"{{if .Selected}} selected{{end}}>{{.Value}}</option>
{{end}}  </select></label>
  <label>Offender categories <select name="category" multiple size="6">
    <option value="all"{{if $.AllCategories}} selected{{end}}>All</option>
{{range $.CategoryOptions}}    <option value="{{.Value}}"{{if .Selected}} selected{{end}}>{{.Value}}</option>
{{end}}  </select></label>
  <button type="submit">Apply</button>
</form>

<h2>Key Performance Indicators</h2>
<div class="tiles">
{{range .Tiles}}<div class="tile"><div class="label">{{.Label}}</div><div class="value">{{.Value}}</div></div>
{{end}}</div>

<h3>1. Total Reported Cases Nationwide</h3>
{{if .Yearly.Placeholder}}<p class="placeholder">{{.Yearly.Placeholder}}</p>{{else}}
<table><tr><th>Year</th><th>Total Cases</th></tr>
{{range .Yearly.Points}}<tr><td>{{.Year}}</td><td>{{count .Total}}</td></tr>
{{end}}</table>{{end}}

<h3>2. Yearly Trends by Offender Category (1999-2013)</h3>
{{if .Trends.Placeholder}}<p class="placeholder">{{.Trends.Placeholder}}</p>{{else}}
<table><tr><th>Year</th>{{range .Trends.Columns}}<th>{{.}}</th>{{end}}</tr>
{{range .Trends.Rows}}<tr><td>{{.Year}}</td>{{range .Values}}<td>{{count .}}</td>{{end}}</tr>
{{end}}</table>{{end}}

<h3>3. Top States by Total Cases Reported</h3>
{{if .Ranking.Placeholder}}<p class="placeholder">{{.Ranking.Placeholder}}</p>{{else}}
<h4>1999-2013</h4>
<table><tr><th>State/UT</th><th>Total Cases</th></tr>
{{range .Ranking.Legacy}}<tr><td>{{.State}}</td><td>{{count .Total}}</td></tr>
{{end}}</table>
<h4>2015-2020</h4>
<table><tr><th>State/UT</th><th>Total Cases</th></tr>
{{range .Ranking.Summary}}<tr><td>{{.State}}</td><td>{{count .Total}}</td></tr>
{{end}}</table>{{end}}

<h3>4. Offender Category Distribution (1999-2013)</h3>
{{if .Categories.Placeholder}}<p class="placeholder">{{.Categories.Placeholder}}</p>{{else}}
<table><tr><th>Category</th><th>Cases</th><th>Share</th></tr>
{{range $.Categories}}<tr><td>{{.Category}}</td><td>{{count .Total}}</td><td>{{pct .Share}}</td></tr>
{{end}}</table>{{end}}

<h3>5. Correlation Between Offender Categories (1999-2013)</h3>
{{if lt (len .Correlation.Columns) 2}}<p class="placeholder">{{$.NoCorr}}</p>{{else}}
{{if eq .Correlation.Source "full-table"}}<p>No rows matched; computed over the full 1999-2013 table.</p>{{end}}
<table><tr><th></th>{{range .Correlation.Columns}}<th>{{.}}</th>{{end}}</tr>
{{$cols := .Correlation.Columns}}{{range $i, $row := .Correlation.Values}}<tr><td>{{index $cols $i}}</td>{{range $row}}<td>{{r2 .}}</td>{{end}}</tr>
{{end}}</table>{{end}}

<h3>6. Geospatial Distribution of Total Cases</h3>
<p>Annotated boundaries: <a href="{{$.GeoURL}}">GeoJSON</a></p>
<table><tr><th>State/UT</th><th>Total Cases</th></tr>
{{range .States}}<tr><td>{{.State}}</td><td>{{count .Total}}</td></tr>
{{end}}</table>
{{end}}{{end}}

<h2>Feedback</h2>
<form action="{{.FormAction}}" method="POST">
  <input type="hidden" name="_captcha" value="false">
  <input type="text" name="name" placeholder="Your name" required>
  <input type="email" name="email" placeholder="Your email" required>
  <textarea name="message" placeholder="Your message here" required></textarea>
  <button type="submit">Send</button>
</form>
</body>
</html>
`
