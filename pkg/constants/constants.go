package constants

const (
	ConfigName   = "config"
	ConfigFormat = "yaml"

	// EnvPrefix is prepended to every environment override, e.g. HELPDESK_SERVER_PORT.
	EnvPrefix = "HELPDESK"

	ServiceName = "helpdesk_backend"

	// TicketDisplayPrefix renders ticket ids as #TK-<id>.
	TicketDisplayPrefix = "#TK-"
)
