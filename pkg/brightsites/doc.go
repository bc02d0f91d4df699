// Package brightsites is a minimal client for the BrightSites storefront
// orders API.
//
// Each store lives at https://{subdomain}.mybrightsites.com and authenticates
// with a per-store API token, passed as the "token" query parameter. The
// client covers only the surface the sweeper needs: listing orders inside a
// creation-time window (with pagination) and updating an order's status.
package brightsites
