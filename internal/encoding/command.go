package encoding

import (
	"strconv"
	"strings"
)

// Slot is one position in the rendered argument list.
type Slot int

const (
	SlotGlobal Slot = iota
	SlotHWAccel
	SlotInputs
	SlotMaps
	SlotVideoFilter
	SlotVideoCodec
	SlotAudioFilter
	SlotAudioCodec
	SlotContainer
	SlotOutput
	slotCount
)

var slotNames = [slotCount]string{
	"global",
	"hwaccel",
	"inputs",
	"maps",
	"video_filter",
	"video_codec",
	"audio_filter",
	"audio_codec",
	"container",
	"output",
}

func (s Slot) String() string {
	if s < 0 || s >= slotCount {
		return "slot(" + strconv.Itoa(int(s)) + ")"
	}
	return slotNames[s]
}

// Slots returns every slot in rendering order.
func Slots() []Slot {
	out := make([]Slot, 0, slotCount)
	for s := SlotGlobal; s < slotCount; s++ {
		out = append(out, s)
	}
	return out
}

// Command is a transcoder invocation assembled slot by slot. Arguments render
// in slot order regardless of the order slots were filled.
type Command struct {
	Binary string
	slots  [slotCount][]string
}

// Set replaces the arguments held by slot.
func (c *Command) Set(slot Slot, args ...string) {
	if slot < 0 || slot >= slotCount {
		return
	}
	c.slots[slot] = append([]string(nil), args...)
}

// Append adds arguments to slot.
func (c *Command) Append(slot Slot, args ...string) {
	if slot < 0 || slot >= slotCount {
		return
	}
	c.slots[slot] = append(c.slots[slot], args...)
}

// Slot returns a copy of the arguments held by slot.
func (c Command) Slot(slot Slot) []string {
	if slot < 0 || slot >= slotCount {
		return nil
	}
	return append([]string(nil), c.slots[slot]...)
}

// Args renders the argument list, excluding the binary.
func (c Command) Args() []string {
	var args []string
	for _, slot := range c.slots {
		args = append(args, slot...)
	}
	return args
}

// Output returns the output path, or "" when unset.
func (c Command) Output() string {
	out := c.slots[SlotOutput]
	if len(out) == 0 {
		return ""
	}
	return out[len(out)-1]
}

// String renders the command for logs, quoting arguments that contain shell
// metacharacters.
func (c Command) String() string {
	parts := make([]string, 0, 1+len(c.Args()))
	parts = append(parts, quoteArg(c.Binary))
	for _, arg := range c.Args() {
		parts = append(parts, quoteArg(arg))
	}
	return strings.Join(parts, " ")
}

func quoteArg(arg string) string {
	if arg == "" {
		return "''"
	}
	if !strings.ContainsAny(arg, " \t'\"()*,;$&|<>") {
		return arg
	}
	return "'" + strings.ReplaceAll(arg, "'", `'\''`) + "'"
}
