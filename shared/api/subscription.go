package api

// Form fields of POST /subscriptions (application/x-www-form-urlencoded).
const (
	FormName  = "name"
	FormEmail = "email"
)

// Query parameter of GET /subscriptions/confirm.
const QuerySubscriptionToken = "subscription_token"
