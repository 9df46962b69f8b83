package builder

import (
	"fmt"
	"strings"
)

// templateCode renders a working app from static templates when no
// model output is available. The result always loads and runs.
func templateCode(spec AppSpec) map[string]string {
	hasViz := false
	for _, f := range spec.Features {
		if f == "visualization" {
			hasViz = true
		}
	}

	statsSection := ""
	if hasViz {
		statsSection = `
            <section class="stats-section">
                <div class="stat-card"><span class="stat-value" id="totalCount">0</span><span class="stat-label">Total</span></div>
                <div class="stat-card"><span class="stat-value" id="todayCount">0</span><span class="stat-label">Today</span></div>
            </section>`
	}

	html := fmt.Sprintf(`<!DOCTYPE html>
<html lang="en">
<head>
    <meta charset="UTF-8">
    <meta name="viewport" content="width=device-width, initial-scale=1.0">
    <title>%s</title>
    <link rel="stylesheet" href="styles.css">
</head>
<body>
    <div class="app">
        <header class="header">
            <h1>%s</h1>
            <p class="tagline">Built through conversation</p>
        </header>
        <main class="main">
            <section class="input-section">
                <input type="text" id="newItem" placeholder="Add new entry...">
                <button onclick="addItem()">Add</button>
            </section>
            <section class="content-section">
                <div id="itemList" class="item-list"></div>
            </section>%s
        </main>
    </div>
    <script src="app.js"></script>
</body>
</html>`, spec.Name, spec.Name, statsSection)

	css := `* { margin: 0; padding: 0; box-sizing: border-box; }
:root { --bg: #0f0f14; --surface: #1a1a22; --text: #e8e8ed; --text-dim: #888899; --accent: #6366f1; --success: #22c55e; }
body { font-family: system-ui, sans-serif; background: var(--bg); color: var(--text); min-height: 100vh; }
.app { max-width: 600px; margin: 0 auto; padding: 40px 20px; }
.header { text-align: center; margin-bottom: 40px; }
.header h1 { font-size: 32px; font-weight: 600; margin-bottom: 8px; }
.tagline { color: var(--text-dim); font-size: 14px; }
.input-section { display: flex; gap: 12px; margin-bottom: 32px; }
.input-section input { flex: 1; padding: 14px 18px; background: var(--surface); border: 1px solid rgba(255,255,255,0.1); border-radius: 10px; color: var(--text); font-size: 15px; }
.input-section input:focus { outline: none; border-color: var(--accent); }
.input-section button { padding: 14px 24px; background: var(--accent); border: none; border-radius: 10px; color: white; font-weight: 600; cursor: pointer; }
.item-list { display: flex; flex-direction: column; gap: 12px; }
.item { padding: 16px 20px; background: var(--surface); border-radius: 12px; display: flex; align-items: center; justify-content: space-between; }
.item-text { font-size: 15px; }
.item-meta { font-size: 12px; color: var(--text-dim); }
.stats-section { display: grid; grid-template-columns: repeat(2, 1fr); gap: 16px; margin-top: 32px; }
.stat-card { padding: 24px; background: var(--surface); border-radius: 12px; text-align: center; }
.stat-value { display: block; font-size: 36px; font-weight: 600; color: var(--accent); }
.stat-label { font-size: 13px; color: var(--text-dim); }`

	if spec.Theme == "light" {
		css = strings.Replace(css,
			`:root { --bg: #0f0f14; --surface: #1a1a22; --text: #e8e8ed; --text-dim: #888899; --accent: #6366f1; --success: #22c55e; }`,
			`:root { --bg: #f6f6f9; --surface: #ffffff; --text: #17171c; --text-dim: #6b6b76; --accent: #6366f1; --success: #16a34a; }`, 1)
	}

	storageKey := strings.ReplaceAll(strings.ToLower(spec.Name), " ", "_") + "_data"
	js := fmt.Sprintf(`const APP_KEY = '%s';
let items = [];
document.addEventListener('DOMContentLoaded', () => { loadData(); render(); });
function loadData() { const s = localStorage.getItem(APP_KEY); if (s) items = JSON.parse(s); }
function saveData() { localStorage.setItem(APP_KEY, JSON.stringify(items)); }
function addItem() {
  const input = document.getElementById('newItem');
  const text = input.value.trim();
  if (!text) return;
  items.unshift({ id: Date.now(), text, createdAt: new Date().toISOString(), completed: false });
  input.value = ''; saveData(); render();
}
function toggleItem(id) { const i = items.find(x => x.id === id); if (i) { i.completed = !i.completed; saveData(); render(); } }
function deleteItem(id) { items = items.filter(x => x.id !== id); saveData(); render(); }
function render() {
  const list = document.getElementById('itemList');
  if (items.length === 0) { list.innerHTML = '<p style="text-align:center;color:var(--text-dim);padding:40px">No items yet.</p>'; return; }
  list.innerHTML = items.map(i => `+"`"+`<div class="item"> <div> <div class="item-text">${escapeHtml(i.text)}</div> <div class="item-meta">${new Date(i.createdAt).toLocaleString()}</div> </div> <button onclick="deleteItem(${i.id})" style="background:none;border:none;color:var(--text-dim);cursor:pointer">×</button> </div>`+"`"+`).join('');
  const tc = document.getElementById('totalCount'); const td = document.getElementById('todayCount');
  if (tc) tc.textContent = items.length;
  if (td) td.textContent = items.filter(i => new Date(i.createdAt).toDateString() === new Date().toDateString()).length;
}
function escapeHtml(t) { const d = document.createElement('div'); d.textContent = t; return d.innerHTML; }
document.addEventListener('keydown', e => { if (e.key === 'Enter' && document.activeElement.id === 'newItem') addItem(); });`, storageKey)

	return map[string]string{
		"index.html": html,
		"styles.css": css,
		"app.js":     js,
	}
}
