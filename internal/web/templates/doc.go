// Package templates holds the templ components returned to HTMX requests.
//
// Edit components.templ and regenerate with `templ generate`.
package templates
