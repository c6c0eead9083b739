// Package templates holds the dashboard's templ components. Edit
// templates.templ and run `templ generate` to refresh templates_templ.go.
package templates

import (
	"encoding/json"

	"sales-dashboard/internal/models"
	"sales-dashboard/internal/ui/format"
)

// AllBranchesLabel is shown for the empty branch selection.
const AllBranchesLabel = "All branches"

// PageView is everything the dashboard page needs for one render.
type PageView struct {
	Source    string
	Error     string
	Dashboard *models.Dashboard
	Format    *format.Formatter
}

func branchTitle(branch string) string {
	if branch == "" {
		return AllBranchesLabel
	}
	return branch
}

// branchSignals is the datastar signal object for the selector. JSON is a
// valid JS object literal and encoding/json escapes line separators too.
func branchSignals(selected string) string {
	b, err := json.Marshal(struct {
		Branch string `json:"branch"`
	}{selected})
	if err != nil {
		return `{"branch":""}`
	}
	return string(b)
}

const styleTag = `<style>
body{margin:0;display:flex;font-family:system-ui,sans-serif;color:#1f2328}
.sidebar{width:260px;padding:1rem;background:#f6f8fa;min-height:100vh;box-sizing:border-box}
main{flex:1;padding:1rem 2rem}
.card{border:1px solid #d0d7de;border-radius:8px;padding:1rem;margin-bottom:1rem}
.card-body{display:flex;gap:1rem}
.metrics{flex:0 0 25%}
.plot{flex:1}
.metric{display:flex;flex-direction:column;margin-bottom:.75rem}
.metric .label{font-size:.85rem;color:#57606a}
.metric .value{font-size:1.6rem}
.delta[data-trend=up]{color:#1a7f37}.delta[data-trend=down]{color:#cf222e}.delta[data-trend=none],.delta[data-trend=flat]{color:#57606a}
.error{background:#ffebe9;border:1px solid #ff8182;padding:.75rem;border-radius:6px;margin-bottom:1rem}
.warning{color:#9a6700;font-size:.8rem}
.muted{color:#57606a}
.export{margin-bottom:1rem}
.chart{width:100%;height:auto}
</style>`
