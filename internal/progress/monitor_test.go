package progress_test

import (
	"bufio"
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"sponsorcut/internal/progress"
)

func statsLine(ts string) string {
	return "frame=  240 fps= 48 q=28.0 size=    1024kB time=" + ts + " bitrate= 838.9kbits/s speed=2.00x"
}

func newMonitor(t *testing.T, total float64, sink func(progress.Update)) *progress.Monitor {
	t.Helper()
	m, err := progress.New(progress.Options{Total: total, Sink: sink})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return m
}

func TestDisplayedPercentNeverDecreases(t *testing.T) {
	var displayed []float64
	m := newMonitor(t, 100, func(u progress.Update) { displayed = append(displayed, u.Displayed) })

	for _, ts := range []string{"00:00:10.00", "00:00:08.00", "00:00:20.00"} {
		if _, ok := m.Feed(statsLine(ts)); !ok {
			t.Fatalf("expected update for %s", ts)
		}
	}
	want := []float64{10, 10, 20}
	if len(displayed) != len(want) {
		t.Fatalf("got %v, want %v", displayed, want)
	}
	for i := range want {
		if displayed[i] != want[i] {
			t.Fatalf("got %v, want %v", displayed, want)
		}
	}
}

func TestPercentUsesComputedValueForEachLine(t *testing.T) {
	m := newMonitor(t, 100, nil)
	m.Feed(statsLine("00:00:10.00"))
	update, ok := m.Feed(statsLine("00:00:08.00"))
	if !ok {
		t.Fatal("expected update")
	}
	if update.Percent != 8 || update.Displayed != 10 {
		t.Fatalf("unexpected update %+v", update)
	}
}

func TestMalformedTimestampIsSkipped(t *testing.T) {
	m := newMonitor(t, 60, nil)
	if _, ok := m.Feed("frame=  10 fps=0.0 size=0kB time=garbage bitrate=N/A"); ok {
		t.Fatal("expected malformed line to be skipped")
	}
	if m.Malformed() != 1 {
		t.Fatalf("expected one malformed line, got %d", m.Malformed())
	}
	if m.State() != progress.Running {
		t.Fatalf("malformed line must not end the monitor, state=%s", m.State())
	}
	update, ok := m.Feed(statsLine("00:00:30.00"))
	if !ok || update.Displayed != 50 {
		t.Fatalf("expected 50%% after malformed line, got %+v ok=%v", update, ok)
	}
}

func TestUnknownTimeIsNotMalformed(t *testing.T) {
	m := newMonitor(t, 60, nil)
	for range 3 {
		if _, ok := m.Feed("frame=    0 fps=0.0 q=0.0 size=       0kB time=N/A bitrate=N/A speed=N/A"); ok {
			t.Fatal("expected N/A time to produce no update")
		}
	}
	if m.Malformed() != 0 || m.Updates() != 0 {
		t.Fatalf("expected no malformed lines or updates, got %d/%d", m.Malformed(), m.Updates())
	}
	update, ok := m.Feed(statsLine("00:00:15.00"))
	if !ok || update.Displayed != 25 {
		t.Fatalf("expected 25%% once time is known, got %+v ok=%v", update, ok)
	}
}

func TestLinesWithoutMarkersAreIgnored(t *testing.T) {
	m := newMonitor(t, 60, nil)
	for _, line := range []string{
		"Input #0, mov,mp4,m4a,3gp,3g2,mj2, from 'video.mp4':",
		"  Duration: 00:10:00.00, start: 0.000000, bitrate: 1200 kb/s",
		"time=00:00:10.00 without the frame counter",
	} {
		if _, ok := m.Feed(line); ok {
			t.Fatalf("expected %q to be ignored", line)
		}
	}
	if m.Malformed() != 0 {
		t.Fatalf("non-progress lines must not count as malformed")
	}
}

func TestPercentClampsAndRounds(t *testing.T) {
	cases := []struct {
		elapsed, total, want float64
	}{
		{-0.5, 10, 0},
		{5, 10, 50},
		{15, 10, 100},
		{1, 3, 33.33},
		{2, 3, 66.67},
	}
	for _, tc := range cases {
		if got := progress.Percent(tc.elapsed, tc.total); got != tc.want {
			t.Fatalf("Percent(%v, %v) = %v, want %v", tc.elapsed, tc.total, got, tc.want)
		}
	}
}

func TestParseTimestamp(t *testing.T) {
	got, err := progress.ParseTimestamp("01:02:03.50")
	if err != nil {
		t.Fatalf("ParseTimestamp: %v", err)
	}
	if got != 3723.5 {
		t.Fatalf("got %v, want 3723.5", got)
	}
	neg, err := progress.ParseTimestamp("-00:00:00.02")
	if err != nil || neg >= 0 {
		t.Fatalf("expected negative timestamp, got %v err=%v", neg, err)
	}
	for _, bad := range []string{"", "N/A", "garbage", "00:61:00.00", "aa:00:00", "00:00"} {
		if _, err := progress.ParseTimestamp(bad); err == nil {
			t.Fatalf("expected error for %q", bad)
		}
	}
}

func TestNewRejectsNonPositiveTotal(t *testing.T) {
	for _, total := range []float64{0, -1} {
		if _, err := progress.New(progress.Options{Total: total}); err == nil {
			t.Fatalf("expected error for total %v", total)
		}
	}
}

func TestConsumeSplitsCarriageReturnsAndReachesDone(t *testing.T) {
	var other []string
	var last progress.Update
	m := newMonitor(t, 40, func(u progress.Update) { last = u })
	stream := "Input #0, matroska\n" +
		statsLine("00:00:10.00") + "\r" +
		statsLine("00:00:20.00") + "\r" +
		"[aac @ 0x1] Too many packets buffered\r\n" +
		statsLine("00:00:40.00") + "\n"

	if err := m.Consume(context.Background(), strings.NewReader(stream), func(line string) { other = append(other, line) }); err != nil {
		t.Fatalf("Consume: %v", err)
	}
	if m.State() != progress.Done {
		t.Fatalf("expected Done, got %s", m.State())
	}
	if m.Updates() != 3 {
		t.Fatalf("expected 3 updates, got %d", m.Updates())
	}
	if last.Displayed != 100 {
		t.Fatalf("expected 100%% at end, got %v", last.Displayed)
	}
	if len(other) != 2 || other[0] != "Input #0, matroska" || other[1] != "[aac @ 0x1] Too many packets buffered" {
		t.Fatalf("unexpected diagnostics %q", other)
	}
	if _, ok := m.Feed(statsLine("00:00:10.00")); ok {
		t.Fatal("expected no updates after Done")
	}
}

func TestAudioMarkerMonitor(t *testing.T) {
	m, err := progress.New(progress.Options{Total: 200, FrameMarker: progress.AudioFrameMarker})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	update, ok := m.Feed("size=    2048kB time=00:00:50.00 bitrate= 335.5kbits/s speed=40.1x")
	if !ok || update.Displayed != 25 {
		t.Fatalf("unexpected audio update %+v ok=%v", update, ok)
	}
}

func TestUpdateEstimatesRemainingTime(t *testing.T) {
	m := newMonitor(t, 100, nil)
	update, ok := m.Feed(statsLine("00:00:20.00"))
	if !ok {
		t.Fatal("expected update")
	}
	if update.Speed != 2 {
		t.Fatalf("expected speed 2, got %v", update.Speed)
	}
	if update.ETA != 40*time.Second {
		t.Fatalf("expected 40s ETA, got %v", update.ETA)
	}
	if msg := update.Message("encoding"); msg != "Encoding 20.00% (ETA 40s, @ 2.0x)" {
		t.Fatalf("unexpected message %q", msg)
	}
}

func TestScanLinesHandlesTrailingCarriageReturn(t *testing.T) {
	scanner := bufio.NewScanner(strings.NewReader("a\rb\r\nc\r"))
	scanner.Split(progress.ScanLines)
	var lines []string
	for scanner.Scan() {
		lines = append(lines, scanner.Text())
	}
	if strings.Join(lines, "|") != "a|b|c" {
		t.Fatalf("unexpected lines %q", lines)
	}
}

func TestConsumeStopsOnCancelledContext(t *testing.T) {
	m := newMonitor(t, 10, nil)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := m.Consume(ctx, strings.NewReader(statsLine("00:00:01.00")+"\n"), nil)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if m.State() != progress.Done {
		t.Fatalf("expected Done after cancellation, got %s", m.State())
	}
}

func TestFinishPassesExitError(t *testing.T) {
	m := newMonitor(t, 10, nil)
	exitErr := errors.New("exit status 1")
	if err := m.Finish(exitErr); !errors.Is(err, exitErr) {
		t.Fatalf("expected exit error, got %v", err)
	}
	if m.State() != progress.Done {
		t.Fatalf("expected Done, got %s", m.State())
	}
	if err := m.Finish(nil); err != nil {
		t.Fatalf("expected nil, got %v", err)
	}
}
