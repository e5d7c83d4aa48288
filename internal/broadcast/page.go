package broadcast

import "net/http"

const indexPage = `<!doctype html>
<html>
<head>
<meta charset="utf-8">
<title>tuirsvp</title>
<style>
body { background: #111; color: #f0f0f0; font-family: monospace; margin: 0; }
#stage { display: grid; grid-template-columns: 1fr auto 1fr; font-size: 4rem; margin-top: 30vh; }
#prefix { text-align: right; }
#anchor { color: #ff4d4f; }
#status { text-align: center; color: #6e6e6e; margin-top: 2rem; }
</style>
</head>
<body>
<div id="stage"><span id="prefix"></span><span id="anchor"></span><span id="suffix"></span></div>
<div id="status"></div>
<script>
const ws = new WebSocket((location.protocol === "https:" ? "wss://" : "ws://") + location.host + "/ws");
const $ = (id) => document.getElementById(id);
ws.onmessage = (ev) => {
  const msg = JSON.parse(ev.data);
  if (msg.type !== "snapshot") { $("status").textContent = msg.data; return; }
  const f = msg.data;
  if (f.countdown !== undefined) {
    $("prefix").textContent = ""; $("anchor").textContent = f.countdown; $("suffix").textContent = "";
  } else {
    $("prefix").textContent = f.prefix; $("anchor").textContent = f.anchor; $("suffix").textContent = f.suffix;
  }
  $("status").textContent = f.status + "  " + f.rate + " WPM  " + (f.index + 1) + "/" + f.total + "  [space] " + f.toggleLabel;
};
const send = (intent) => ws.send(JSON.stringify({type: "intent", data: intent}));
document.addEventListener("keydown", (ev) => {
  if (ev.key === " ") { send({action: "toggle"}); ev.preventDefault(); }
  if (ev.key === "Escape") { send({action: "escape"}); }
});
</script>
</body>
</html>
`

// PageHandler serves a minimal browser client for the hub at /ws.
func PageHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/" {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		if _, err := w.Write([]byte(indexPage)); err != nil {
			// Client went away.
			_ = err
		}
	})
}
