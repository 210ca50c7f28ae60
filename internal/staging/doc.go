// Package staging owns the temporary files of a job.
//
// A Workspace names the downloaded streams and the encoded output inside the
// configured temp directory, keyed by video id, and holds an advisory lock so
// two runs never share files for the same video. Cleanup removes everything
// the workspace created; CleanStale sweeps artifacts left behind by runs that
// were killed before they could clean up.
package staging
