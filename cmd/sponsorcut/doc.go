// Command sponsorcut downloads videos, removes SponsorBlock segments, and
// transcodes the result into a library directory.
//
//	sponsorcut fetch <url>        process one video
//	sponsorcut batch <file|->     process a list of videos sequentially
//	sponsorcut segments <url|id>  show the intervals that would be removed
//	sponsorcut profiles           list encode profiles and audio formats
//	sponsorcut status             check binaries, encoders and directories
//	sponsorcut config init|validate
package main
