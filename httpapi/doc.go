// Package httpapi exposes the goRecover Engine over HTTP with gin.
//
// Routes are registered under a caller-supplied group (conventionally
// "/password"):
//
//	GET  /check?email=            CheckUserByEmail
//	GET  /check_disable?email=    CheckCooldown
//	POST /send_reset_email        IssueResetToken, body {"email": "..."}
//	GET  /reset_page/:token       CheckTokenAvailable
//	POST /reset                   RedeemResetToken, body {"token": "...", "password": "..."}
//
// Expected outcomes, including every goRecover error code, answer 200 with a
// JSON [Response]. Malformed request bodies answer 400 and infrastructure
// failures answer 500 without detail.
package httpapi
