package view

import (
	"context"
	"io"

	"github.com/a-h/templ"

	"github.com/freeeve/hordestats/internal/model"
)

// IndexData is shown on the landing page.
type IndexData struct {
	Input  string
	Error  string
	Recent []model.Lookup
}

// Index renders the game lookup form and the recently viewed games.
func Index(data IndexData) templ.Component {
	return templ.ComponentFunc(func(_ context.Context, w io.Writer) error {
		h := &htmlWriter{w: w}
		h.raw(`<form method="post" action="/"><label for="game">Warfish game URL or id</label> `)
		h.raw(`<input id="game" name="game" size="50" autofocus`)
		h.attr("value", data.Input)
		h.raw(`> <button type="submit">Show stats</button></form>`)
		if data.Error != "" {
			h.raw(`<p class="error">`)
			h.text(data.Error)
			h.raw(`</p>`)
		}
		if len(data.Recent) > 0 {
			h.raw(`<h2>Recently viewed</h2><ul>`)
			for _, l := range data.Recent {
				h.raw(`<li><a`)
				h.url("href", "/game/"+l.GameID)
				h.raw(`>Game `)
				h.text(l.GameID)
				h.raw(`</a> <span class="muted">`)
				h.num(l.Players)
				h.raw(` players, viewed `)
				h.text(l.ViewedAt.UTC().Format("2006-01-02 15:04 MST"))
				h.raw(`</span></li>`)
			}
			h.raw(`</ul>`)
		}
		return h.err
	})
}

// Stats renders the players table and a detail panel per player.
func Stats(data StatsData) templ.Component {
	return templ.ComponentFunc(func(_ context.Context, w io.Writer) error {
		h := &htmlWriter{w: w}
		h.raw(`<h2>Game <a`)
		h.url("href", data.GameURL)
		h.raw(`>`)
		h.text(data.GameID)
		h.raw(`</a></h2><p class="muted" id="status"`)
		h.attr("data-watch", data.WatchURL)
		h.attr("data-players", data.Baseline)
		h.raw(`>`)
		h.num(data.TotalUnits)
		h.raw(` units on the board</p>`)

		if len(data.Players) == 0 {
			h.raw(`<p>No player has units on the board.</p>`)
			return h.err
		}

		h.raw(`<table><thead><tr><th>Player</th><th class="num">Units</th>`)
		h.raw(`<th class="num">Territories</th><th class="num">Continents</th>`)
		h.raw(`<th class="num">Next turn</th></tr></thead><tbody>`)
		for _, p := range data.Players {
			h.raw(`<tr><td>`)
			h.text(p.Name)
			h.raw(`</td><td class="num">`)
			h.num(p.TotalUnits)
			h.raw(`</td><td class="num">`)
			h.num(p.Territories)
			h.raw(`</td><td class="num">`)
			h.num(p.Continents)
			h.raw(`</td><td class="num">`)
			h.num(p.NextTurnUnits)
			h.raw(`</td></tr>`)
		}
		h.raw(`</tbody></table>`)

		for _, p := range data.Players {
			h.raw(`<details><summary>`)
			h.text(p.Name)
			h.raw(`</summary>`)
			if len(p.Bonuses) == 0 {
				h.raw(`<p class="muted">No continent bonuses.</p></details>`)
				continue
			}
			h.raw(`<ul>`)
			for _, b := range p.Bonuses {
				h.raw(`<li><a`)
				h.url("href", b.URL)
				h.raw(`>`)
				h.text(b.Name)
				h.raw(`</a> +`)
				h.num(b.BonusUnits)
				h.raw(` <span class="muted">(`)
				h.num(b.Units)
				h.raw(` units)</span></li>`)
			}
			h.raw(`</ul></details>`)
		}
		h.raw(watchScript)
		return h.err
	})
}

// Error renders a failure message with a way back to the form.
func Error(message string) templ.Component {
	return templ.ComponentFunc(func(_ context.Context, w io.Writer) error {
		h := &htmlWriter{w: w}
		h.raw(`<p class="error">`)
		h.text(message)
		h.raw(`</p><p><a href="/">Look up another game</a></p>`)
		return h.err
	})
}

// Tells the reader when the pushed statistics differ from the ones shown.
const watchScript = `<script>
(function(){
  var el=document.getElementById("status");
  if(!el||!window.WebSocket){return;}
  var proto=location.protocol==="https:"?"wss://":"ws://";
  var ws=new WebSocket(proto+location.host+el.dataset.watch);
  var shown=el.dataset.players?JSON.stringify(JSON.parse(el.dataset.players)):null;
  ws.onmessage=function(m){
    var ev=JSON.parse(m.data);
    if(ev.type==="stats_error"){el.textContent=ev.data.error;return;}
    if(ev.type!=="stats_updated"){return;}
    var players=JSON.stringify(ev.data.players);
    if(shown===null){shown=players;return;}
    if(players!==shown){el.innerHTML='The game has moved on. <a href="">Reload</a>';}
  };
})();
</script>`
