package report

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"rffedec/pkg/rffe"
)

var (
	timeStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("241"))

	kindStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("12")).
			Bold(true).
			Width(4)

	fieldStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("10"))

	controlStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240"))

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("9")).
			Bold(true)
)

// FormatPacket renders a packet as one line: the start time, the short
// kind name and the frame labels.
func FormatPacket(p rffe.Packet, sampleRate uint32) string {
	var b strings.Builder

	b.WriteString(timeStyle.Render(formatTime(p.Start(), sampleRate)))
	b.WriteByte(' ')

	if k, ok := p.Kind(); ok {
		style := kindStyle
		if p.Malformed() {
			style = errorStyle.Width(4)
		}
		b.WriteString(style.Render(ShortName(k)))
	}

	for _, f := range p.Frames {
		b.WriteByte(' ')
		b.WriteString(frameStyle(f).Render(Label(f)))
	}

	return b.String()
}

func frameStyle(f rffe.Frame) lipgloss.Style {
	switch f.Kind {
	case rffe.FrameStart, rffe.FrameParity, rffe.FrameBusPark:
		return controlStyle
	case rffe.FrameError:
		return errorStyle
	case rffe.FrameType:
		if rffe.TransactionKind(f.Primary) == rffe.Reserved {
			return errorStyle
		}
		return controlStyle
	default:
		return fieldStyle
	}
}

// formatTime returns the sample as seconds with microsecond resolution.
func formatTime(sample uint64, sampleRate uint32) string {
	if sampleRate == 0 {
		return fmt.Sprintf("#%d", sample)
	}
	return fmt.Sprintf("%.6fs", float64(sample)/float64(sampleRate))
}
