package deps

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"slices"
	"strings"
	"time"
)

const probeTimeout = 5 * time.Second

// Version runs "<binary> -version" and returns the first output line, e.g.
// "ffmpeg version 7.1 Copyright (c) 2000-2024 the FFmpeg developers".
func Version(ctx context.Context, binary string) (string, error) {
	output, err := run(ctx, binary, "-version")
	if err != nil {
		return "", err
	}
	line, _, _ := strings.Cut(strings.TrimSpace(string(output)), "\n")
	return strings.TrimSpace(line), nil
}

// Encoders returns the subset of wanted encoders that ffmpeg reports, in the
// order they were requested.
func Encoders(ctx context.Context, ffmpeg string, wanted []string) ([]string, error) {
	output, err := run(ctx, ffmpeg, "-hide_banner", "-encoders")
	if err != nil {
		return nil, err
	}
	available := parseEncoderList(output)
	var found []string
	for _, name := range wanted {
		if slices.Contains(available, name) {
			found = append(found, name)
		}
	}
	return found, nil
}

// CheckEncoders reports one Status per wanted encoder.
func CheckEncoders(ctx context.Context, ffmpeg string, wanted []string) []Status {
	found, err := Encoders(ctx, ffmpeg, wanted)
	results := make([]Status, 0, len(wanted))
	for _, name := range wanted {
		status := Status{Name: name, Command: ffmpeg, Description: "ffmpeg encoder", Optional: true}
		switch {
		case err != nil:
			status.Detail = err.Error()
		case slices.Contains(found, name):
			status.Available = true
		default:
			status.Detail = "not compiled into ffmpeg"
		}
		results = append(results, status)
	}
	return results
}

// parseEncoderList reads "ffmpeg -encoders" output. Entries follow the
// " ------" separator as "<flags> <name> <description>".
func parseEncoderList(output []byte) []string {
	var names []string
	scanner := bufio.NewScanner(bytes.NewReader(output))
	listing := false
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if !listing {
			listing = strings.HasPrefix(line, "------")
			continue
		}
		fields := strings.Fields(line)
		if len(fields) >= 2 {
			names = append(names, fields[1])
		}
	}
	return names
}

func run(ctx context.Context, binary string, args ...string) ([]byte, error) {
	binary = strings.TrimSpace(binary)
	if binary == "" {
		return nil, errors.New("command not configured")
	}
	ctx, cancel := context.WithTimeout(ctx, probeTimeout)
	defer cancel()
	output, err := exec.CommandContext(ctx, binary, args...).Output()
	if err != nil {
		return nil, fmt.Errorf("%s %s: %w", binary, strings.Join(args, " "), err)
	}
	return output, nil
}
