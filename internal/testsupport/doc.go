// Package testsupport holds helpers shared by package tests: a config builder
// rooted in per-test temp directories and stub ffmpeg/ffprobe scripts.
package testsupport
