package web

import (
	"fmt"
	"html/template"
	"io"
	"time"

	"github.com/sweeney/pin-tracker/internal/pin"
	"github.com/sweeney/pin-tracker/internal/tracker"
)

var indexTmpl = template.Must(template.New("index").Funcs(template.FuncMap{
	"uptime": func(d time.Duration) string {
		d = d.Truncate(time.Second)
		days := int(d.Hours()) / 24
		h := int(d.Hours()) % 24
		m := int(d.Minutes()) % 60
		s := int(d.Seconds()) % 60
		if days > 0 {
			return fmt.Sprintf("%dd %dh %dm %ds", days, h, m, s)
		}
		if h > 0 {
			return fmt.Sprintf("%dh %dm %ds", h, m, s)
		}
		if m > 0 {
			return fmt.Sprintf("%dm %ds", m, s)
		}
		return fmt.Sprintf("%ds", s)
	},
	"value": func(v pin.Value) string {
		switch v := v.(type) {
		case pin.Temperature:
			return fmt.Sprintf("%.2f°", float64(v))
		case pin.Analog:
			return fmt.Sprintf("analog %d", uint16(v))
		case pin.Digital:
			if v {
				return "digital 1"
			}
			return "digital 0"
		}
		return "—"
	},
	"stateClass": func(s string) string {
		switch s {
		case "ON":
			return "on"
		case "OFF":
			return "off"
		}
		return "unknown"
	},
	"rfc3339": func(t time.Time) string {
		if t.IsZero() {
			return "—"
		}
		return t.UTC().Format("2006-01-02T15:04:05Z")
	},
	"avg": func(p tracker.PinStatus) string {
		if !p.HasAvgTemp {
			return "—"
		}
		return fmt.Sprintf("%.2f°", float64(p.AvgTemp))
	},
}).Parse(indexHTML))

const indexHTML = `<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<meta name="viewport" content="width=device-width, initial-scale=1">
<title>Pin Tracker</title>
<style>
body { font-family: monospace; max-width: 800px; margin: 2em auto; padding: 0 1em; }
h1 { font-size: 1.4em; }
table { border-collapse: collapse; width: 100%; margin: 1em 0; }
td, th { text-align: left; padding: 4px 8px; border-bottom: 1px solid #ddd; }
.on { color: green; font-weight: bold; }
.off { color: #888; }
.unknown { color: orange; }
.connected { color: green; }
.disconnected { color: red; }
</style>
</head>
<body>
<h1>Pin Tracker</h1>

<h2>Pins</h2>
{{if .Pins}}<table>
<tr><th>Node</th><th>Pin</th><th>State</th><th>Last value</th><th>Last changed</th><th>Avg temp</th><th>Seen</th></tr>
{{range .Pins}}<tr>
<td>{{.Node}}</td>
<td>{{.Pin}}</td>
<td class="{{stateClass .State}}">{{.State}}</td>
<td>{{if .LastValue}}{{value .LastValue}}{{else}}—{{end}}</td>
<td>{{rfc3339 .LastChangedAt}}</td>
<td>{{avg .}}</td>
<td>{{.Observations}}</td>
</tr>
{{end}}</table>{{else}}<p>No pins seen yet.</p>{{end}}

<h2>Connectivity</h2>
<table>
<tr><th>MQTT</th><td class="{{if .MQTTConnected}}connected{{else}}disconnected{{end}}">{{if .MQTTConnected}}connected{{else}}disconnected{{end}}</td></tr>
<tr><th>Broker</th><td>{{.Config.Broker}}</td></tr>
<tr><th>Filter</th><td>{{.Config.Filter}}</td></tr>
</table>

<h2>System</h2>
<table>
<tr><th>Uptime</th><td>{{uptime .Uptime}}</td></tr>
<tr><th>Started</th><td>{{rfc3339 .StartTime}}</td></tr>
<tr><th>HTTP</th><td>{{.Config.HTTPAddr}}</td></tr>
</table>

<p><a href="/index.json">JSON</a></p>
</body>
</html>
`

func renderHTML(w io.Writer, snap tracker.Snapshot) {
	// Snapshot has an Uptime() method but the template wants a field.
	data := struct {
		tracker.Snapshot
		Uptime time.Duration
	}{
		Snapshot: snap,
		Uptime:   snap.Uptime(),
	}
	indexTmpl.Execute(w, data)
}
