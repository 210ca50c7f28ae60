// Package sponsorblock fetches crowd-sourced sponsor intervals for a video
// from a SponsorBlock-compatible API.
//
// Only "skip" segments in the requested categories are returned. Entries that
// fail validation are dropped with a warning instead of failing the request.
// Every transport or decoding failure is marked services.ErrSponsorFetch so
// the pipeline can continue with no exclusions.
package sponsorblock
