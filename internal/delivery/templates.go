package delivery

import (
	"html/template"
	"strings"

	"shieldboard/internal/domain"
	"shieldboard/internal/drilldown"
	"shieldboard/internal/presenter"
)

type option struct {
	Value    string
	Label    string
	Selected bool
}

// pageData is what the dashboard template renders.
type pageData struct {
	StateResponse
	Plans         []option
	Providers     []option
	Subscriptions []option
	Closing       bool
}

func newPageData(state StateResponse) pageData {
	return pageData{
		StateResponse: state,
		Plans:         options(state.Draft.Plan, "all", "free", "pro"),
		Providers:     options(state.Draft.Provider, "all", "google", "local"),
		Subscriptions: options(state.Draft.Subscription, "all", "trialing", "incomplete", "active", "canceled"),
		Closing:       state.Drilldown.Phase == drilldown.PhaseClosing,
	}
}

func options(selected string, values ...string) []option {
	out := make([]option, len(values))
	for i, v := range values {
		label := presenter.Capitalize(v)
		if v == domain.FilterAll {
			label = "All"
		}
		out[i] = option{Value: v, Label: label, Selected: v == selected}
	}
	return out
}

var funcMap = template.FuncMap{
	"upper": strings.ToUpper,
	// css marks values built by the presenter from fixed palettes and numbers.
	"css": func(s string) template.CSS { return template.CSS(s) },
}

var dashboardTemplate = template.Must(template.New("dashboard").Funcs(funcMap).Parse(dashboardHTML))

const dashboardHTML = `<!DOCTYPE html>
<html lang="en">
<head>
    <meta charset="UTF-8">
    <meta name="viewport" content="width=device-width, initial-scale=1.0">
    <title>ShieldMail · Investor Dashboard</title>
    <script src="https://cdn.tailwindcss.com"></script>
    <style>body { background-color: #f6f7f4; color: #0d2818; }{{if .Drilldown.Visible}} body { overflow: hidden; }{{end}}</style>
</head>
<body class="min-h-screen">
{{if .Error}}
<div class="bg-red-100 border-b border-red-300 text-red-800 px-6 py-3 text-sm" role="alert">{{.Error}}</div>
{{end}}
<header class="bg-white border-b border-gray-200 px-6 py-4">
    <div class="max-w-7xl mx-auto flex items-center justify-between">
        <div>
            <h1 class="text-xl font-bold">Investor Dashboard</h1>
            <p class="text-xs text-gray-500">Last synced: {{if .View}}{{.View.LastSynced}}{{else}}—{{end}}</p>
        </div>
        <form method="post" action="/api/v1/refresh">
            <button class="px-3 py-2 text-sm rounded border border-gray-300 hover:bg-gray-100">Refresh</button>
        </form>
    </div>
    <form method="post" action="/api/v1/filters/apply" class="max-w-7xl mx-auto mt-4 flex flex-wrap gap-3 items-end text-sm">
        <label class="flex flex-col">From<input type="date" name="from" value="{{.Draft.From}}" class="border rounded px-2 py-1"></label>
        <label class="flex flex-col">To<input type="date" name="to" value="{{.Draft.To}}" class="border rounded px-2 py-1"></label>
        <label class="flex flex-col">Plan<select name="plan" class="border rounded px-2 py-1">
            {{range .Plans}}<option value="{{.Value}}"{{if .Selected}} selected{{end}}>{{.Label}}</option>{{end}}
        </select></label>
        <label class="flex flex-col">Provider<select name="provider" class="border rounded px-2 py-1">
            {{range .Providers}}<option value="{{.Value}}"{{if .Selected}} selected{{end}}>{{.Label}}</option>{{end}}
        </select></label>
        <label class="flex flex-col">Subscription<select name="subscription" class="border rounded px-2 py-1">
            {{range .Subscriptions}}<option value="{{.Value}}"{{if .Selected}} selected{{end}}>{{.Label}}</option>{{end}}
        </select></label>
        <button class="px-4 py-2 rounded bg-green-900 text-white disabled:opacity-50"{{if .Loading}} disabled{{end}}>{{if .Loading}}Loading…{{else}}Apply{{end}}</button>
    </form>
</header>
<main class="max-w-7xl mx-auto px-6 py-8">
{{if .Loading}}{{if not .View}}
<div class="text-center text-gray-500 py-24">Loading dashboard…</div>
{{end}}{{end}}
{{with .View}}
<section class="grid grid-cols-2 md:grid-cols-4 gap-4 mb-8">
    {{range .Summary}}
    <div class="bg-white rounded-lg p-4 border border-gray-200">
        <div class="text-xs text-gray-500">{{.Label}}</div>
        <div class="text-2xl font-bold{{if .Positive}} text-green-700{{end}}">{{.Value}}</div>
        <div class="text-xs text-gray-400">{{.Sub}}</div>
    </div>
    {{end}}
</section>
<section class="grid grid-cols-1 md:grid-cols-5 gap-4 mb-8">
    {{range .Cards}}
    <form method="post" action="/api/v1/metrics/{{.Metric}}/select">
        <button class="w-full text-left bg-white rounded-lg p-4 border {{if .Selected}}border-green-700{{else}}border-gray-200{{end}} hover:border-green-700">
            <div class="text-xs text-gray-500">{{.Title}}</div>
            <div class="text-3xl font-bold">{{.Value}}</div>
            <div class="text-xs text-gray-400">{{.Sub}}</div>
            {{if .Trend}}<div class="text-xs {{if .TrendUp}}text-green-700{{else}}text-orange-600{{end}}">{{.Trend}}</div>{{end}}
        </button>
    </form>
    {{end}}
</section>
<section class="grid grid-cols-1 md:grid-cols-2 gap-6 mb-8">
    <div class="bg-white rounded-lg p-6 border border-gray-200">
        <h2 class="font-bold mb-4">Signups over time</h2>
        <div class="flex items-end gap-2 h-40">
            {{range .SignupsChart}}
            <div class="flex-1 flex flex-col items-center justify-end h-full" title="{{.Count}}">
                <div class="w-full bg-green-800 rounded-t" style="height: {{css .HeightCSS}}"></div>
                <span class="text-xs text-gray-500 mt-1">{{.Label}}</span>
            </div>
            {{else}}<p class="text-gray-400 text-sm">No signups in range</p>{{end}}
        </div>
    </div>
    <div class="bg-white rounded-lg p-6 border border-gray-200">
        <h2 class="font-bold mb-4">Plan distribution</h2>
        <div class="flex items-center gap-6">
            <div class="relative w-32 h-32 rounded-full" style="background: {{css .PlanDonut.Gradient}}">
                <div class="absolute inset-6 bg-white rounded-full flex items-center justify-center font-bold">{{.PlanDonut.Total}}</div>
            </div>
            <ul class="text-sm space-y-1">
                {{range .PlanDonut.Slices}}<li><span class="inline-block w-3 h-3 rounded-full mr-2" style="background: {{css .Color}}"></span>{{.Legend}}</li>{{end}}
            </ul>
        </div>
    </div>
    <div class="bg-white rounded-lg p-6 border border-gray-200">
        <h2 class="font-bold mb-4">Signup provider</h2>
        {{template "bars" .Providers}}
    </div>
    <div class="bg-white rounded-lg p-6 border border-gray-200">
        <h2 class="font-bold mb-4">Free trial</h2>
        {{template "bars" .FreeTrial}}
    </div>
</section>
<section class="grid grid-cols-1 md:grid-cols-3 gap-6 mb-8">
    <div class="bg-white rounded-lg p-6 border border-gray-200">
        <h2 class="font-bold mb-4">Recent signups</h2>
        {{range .RecentSignups}}
        <div class="flex items-center gap-3 py-2 border-b border-gray-100">
            <span class="w-8 h-8 rounded-full bg-green-900 text-white text-xs flex items-center justify-center">{{.Initials}}</span>
            <div class="flex-1"><div class="text-sm">{{.Name}}</div><div class="text-xs text-gray-400">{{.Date}}</div></div>
            <span class="text-xs px-2 py-1 rounded {{if eq .Plan "pro"}}bg-orange-100 text-orange-700{{else}}bg-gray-100 text-gray-600{{end}}">{{upper .Plan}}</span>
        </div>
        {{else}}<p class="text-gray-400 text-sm">No recent signups</p>{{end}}
    </div>
    <div class="bg-white rounded-lg p-6 border border-gray-200">
        <h2 class="font-bold mb-4">Subscription status</h2>
        {{template "rows" .SubscriptionStatus}}
        <h2 class="font-bold my-4">Referral &amp; credits</h2>
        {{template "rows" .Referral}}
    </div>
    <div class="bg-white rounded-lg p-6 border border-gray-200">
        <h2 class="font-bold mb-4">Platform</h2>
        {{template "rows" .Platform}}
    </div>
</section>
{{end}}
{{with .Detail}}
<div class="fixed inset-0 bg-black/40 flex justify-end{{if $.Closing}} opacity-0 transition-opacity{{end}}">
    <aside class="bg-white w-full max-w-lg h-full overflow-y-auto p-6">
        <div class="flex justify-between items-start mb-4">
            <div>
                <h2 class="text-lg font-bold">{{.Title}}</h2>
                <div class="text-3xl font-bold">{{.Headline}}</div>
                <p class="text-sm text-gray-500">{{.Caption}}</p>
            </div>
            <form method="post" action="/api/v1/drilldown/close"><button class="text-gray-500 hover:text-black" aria-label="Close">✕</button></form>
        </div>
        {{range .Sections}}
        <section class="mb-6">
            <h3 class="font-bold text-sm mb-2">{{.Title}}</h3>
            {{with .Donut}}<div class="w-20 h-20 rounded-full mb-2" style="background: {{css .Gradient}}"></div>{{end}}
            {{template "rows" .Rows}}
            {{range .Signups}}
            <div class="flex justify-between text-sm py-1 border-b border-gray-100"><span>{{.Name}}</span><span class="text-gray-400">{{.Date}} · {{.Plan}}</span></div>
            {{end}}
        </section>
        {{end}}
    </aside>
</div>
{{end}}
</main>
<footer class="max-w-7xl mx-auto px-6 py-6 text-xs text-gray-400">Figures are computed by the backend; refreshed automatically.</footer>
</body>
</html>
{{define "bars"}}{{range .}}
<div class="mb-2">
    <div class="flex justify-between text-sm"><span>{{.Label}}</span><span class="text-gray-500">{{.Value}}</span></div>
    <div class="h-2 bg-gray-100 rounded"><div class="h-2 bg-green-700 rounded" style="width: {{css .WidthCSS}}"></div></div>
</div>
{{else}}<p class="text-gray-400 text-sm">No data</p>{{end}}{{end}}
{{define "rows"}}{{range .}}
<div class="flex justify-between text-sm py-1 border-b border-gray-100"><span>{{.Label}}</span><span class="font-medium">{{.Value}}</span></div>
{{end}}{{end}}`
