// Package client contains the HTTP clients of the external services the
// contact book depends on.
//
// # Overview
//
//  1. ViaCEP (see ViaCEP) resolves Brazilian postal codes (CEP) and searches
//     addresses by state, city and street. It satisfies PostalLookup.
//  2. Google Geocoding (see GoogleGeocoder) turns a free-text address into
//     coordinates. It satisfies Geocoder.
//
// # Error Handling
//
// Results that do not exist are reported as common.ErrNotFound. Transport
// failures, unexpected HTTP statuses and undecodable payloads are reported
// as common.ErrExternalService. Bad arguments are common.ErrValidation.
//
// Concurrency & Contexts
//
// Clients are safe for concurrent use. Every call takes a context.Context and
// the underlying http.Client carries a timeout.
package client
