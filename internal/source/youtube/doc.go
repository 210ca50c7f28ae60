// Package youtube adapts github.com/kkdai/youtube/v2 to the source.Client
// contract.
package youtube
