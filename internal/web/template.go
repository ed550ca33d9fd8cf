package web

import (
	"fmt"
	"html/template"
	"io"
	"time"

	"github.com/sweeney/coffee-scale/internal/status"
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
	"grams": func(g float64) string {
		return fmt.Sprintf("%.1f g", g)
	},
	"stopwatch": func(d time.Duration) string {
		tenths := d.Milliseconds() / 100
		return fmt.Sprintf("%02d:%02d.%d", tenths/600, (tenths/10)%60, tenths%10)
	},
}).Parse(indexHTML))

const indexHTML = `<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<meta name="viewport" content="width=device-width, initial-scale=1">
<title>Coffee Scale</title>
<style>
body { font-family: monospace; max-width: 600px; margin: 2em auto; padding: 0 1em; }
h1 { font-size: 1.4em; }
table { border-collapse: collapse; width: 100%; margin: 1em 0; }
td, th { text-align: left; padding: 4px 8px; border-bottom: 1px solid #ddd; }
th { width: 40%; }
.running { color: green; font-weight: bold; }
.stopped { color: #888; }
.asleep { color: orange; }
.connected { color: green; }
.disconnected { color: red; }
</style>
</head>
<body>
<h1>Coffee Scale</h1>

<h2>State</h2>
<table>
<tr><th>Mode</th><td{{if .Asleep}} class="asleep"{{end}}>{{.Mode.Label}}{{if .Asleep}} (asleep){{end}}</td></tr>
<tr><th>Weight</th><td>{{grams .Grams}}</td></tr>
<tr><th>Timer</th><td class="{{if .TimerRunning}}running{{else}}stopped{{end}}">{{stopwatch .TimerElapsed}}{{if .TimerRunning}} (running){{end}}</td></tr>
</table>

<h2>Connectivity</h2>
<table>
<tr><th>MQTT</th><td class="{{if .MQTTConnected}}connected{{else}}disconnected{{end}}">{{if .MQTTConnected}}connected{{else}}disconnected{{end}}</td></tr>
<tr><th>Broker</th><td>{{.Config.Broker}}</td></tr>
<tr><th>Display</th><td>{{.Config.DisplayPort}}</td></tr>
</table>

<h2>Event Counts</h2>
<table>
<tr><th>Tares</th><td>{{.Counts.Tares}}</td></tr>
<tr><th>Mode Changes</th><td>{{.Counts.ModeChanges}}</td></tr>
<tr><th>Timer Starts</th><td>{{.Counts.TimerStarts}}</td></tr>
<tr><th>Timer Stops</th><td>{{.Counts.TimerStops}}</td></tr>
<tr><th>Sleeps</th><td>{{.Counts.Sleeps}}</td></tr>
<tr><th>Wakes</th><td>{{.Counts.Wakes}}</td></tr>
</table>

<h2>System</h2>
<table>
<tr><th>Uptime</th><td>{{uptime .Uptime}}</td></tr>
<tr><th>Started</th><td>{{.StartTime.UTC.Format "2006-01-02T15:04:05Z"}}</td></tr>
<tr><th>Poll</th><td>{{.Config.PollMs}}ms awake / {{.Config.SleepPollMs}}ms asleep</td></tr>
<tr><th>Debounce</th><td>{{.Config.DebounceMs}}ms</td></tr>
<tr><th>Heartbeat</th><td>{{if eq .Config.HeartbeatMs 0}}disabled{{else}}{{.Config.HeartbeatMs}}ms{{end}}</td></tr>
<tr><th>HTTP</th><td>{{.Config.HTTPAddr}}</td></tr>
</table>

<p><a href="/index.json">JSON</a></p>
</body>
</html>
`

func renderHTML(w io.Writer, snap status.Snapshot) {
	// Snapshot has Uptime() method but template needs a Duration field.
	data := struct {
		status.Snapshot
		Uptime time.Duration
	}{
		Snapshot: snap,
		Uptime:   snap.Uptime(),
	}
	indexTmpl.Execute(w, data)
}
