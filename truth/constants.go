package truth

const (
	commentToken    = "//"
	combinatorToken = ","
	jointToken      = ":"
	listOperator    = "..."
	patternDelim    = "/"
	escapeChar      = '\\'
)

// registeredProtocols is the closed set of URI protocol tags recognized by
// the statement parser (spec §6, "registered protocol set").
var registeredProtocols = map[string]bool{
	"file":     true,
	"http":     true,
	"https":    true,
	"internal": true,
	"none":     true,
	"unknown":  true,
}

// silentRenderProtocols excludes the URI from fault rendering when its
// protocol is one of these (spec §6, "URI omitted when protocol ∈
// {internal, none, unknown}").
var silentRenderProtocols = map[string]bool{
	"internal": true,
	"none":     true,
	"unknown":  true,
}
