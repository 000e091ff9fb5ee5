// Package main provides the entry point for the CorpAuth token service.
// It runs a Fiber web server exposing an OAuth2-style token endpoint that
// validates directory (LDAP) credentials or delegated Entra ID tokens,
// reconciles the authenticated profile into a gorm-backed user store and
// issues signed access and identity tokens.
package main
