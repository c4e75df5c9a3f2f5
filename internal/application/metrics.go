package application

import "expvar"

// Counters exposed on /debug/vars
var (
	loginsTotal          = expvar.NewInt("users_logins_total")
	loginFailuresTotal   = expvar.NewInt("users_login_failures_total")
	refreshTotal         = expvar.NewInt("users_refresh_total")
	refreshRejectedTotal = expvar.NewInt("users_refresh_rejected_total")
)
