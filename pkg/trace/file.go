package trace

import (
	"encoding/csv"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/fxamacker/cbor/v2"
	"rffedec/pkg/port"
)

// Load reads a trace file. The format is chosen by extension:
//  * .cbor  native format, carries its own sample rate
//  * .csv   transition export "Time [s],<ch0>,<ch1>,..." sampled at sampleRate
func Load(path string, sampleRate uint32) (*Trace, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer func() { _ = f.Close() }()

	switch strings.ToLower(filepath.Ext(path)) {
	case ".cbor":
		return ReadCBOR(f)
	case ".csv":
		return ReadCSV(f, sampleRate)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, filepath.Ext(path))
	}
}

// Save writes t to path, choosing the format by extension like Load.
func Save(path string, t *Trace) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer func() {
		if e := f.Close(); err == nil {
			err = e
		}
	}()

	switch strings.ToLower(filepath.Ext(path)) {
	case ".cbor":
		return WriteCBOR(f, t)
	case ".csv":
		return WriteCSV(f, t)
	default:
		return fmt.Errorf("%w: %q", ErrUnsupportedFormat, filepath.Ext(path))
	}
}

// ReadCBOR decodes a trace in the native format.
func ReadCBOR(r io.Reader) (*Trace, error) {
	var t Trace
	if err := cbor.NewDecoder(r).Decode(&t); err != nil {
		return nil, fmt.Errorf("decode cbor trace: %w", err)
	}
	if len(t.Channels) == 0 {
		return nil, ErrNoChannels
	}
	for i, c := range t.Channels {
		if c == nil {
			return nil, fmt.Errorf("channel %d is empty: %w", i, ErrNoChannels)
		}
		for j := 1; j < len(c.Edges); j++ {
			if c.Edges[j] <= c.Edges[j-1] {
				return nil, fmt.Errorf("channel %q edge %d at sample %d: %w", c.Name, j, c.Edges[j], ErrUnorderedEdge)
			}
		}
	}
	return &t, nil
}

// WriteCBOR encodes t in the native format.
func WriteCBOR(w io.Writer, t *Trace) error {
	return cbor.NewEncoder(w).Encode(t)
}

// ReadCSV parses a transition export. Each row holds the time in seconds and
// the level of every channel from that time on; the first row sets the
// initial levels. A pulse that is shorter than one sample at sampleRate
// rounds to zero width and is dropped.
func ReadCSV(r io.Reader, sampleRate uint32) (*Trace, error) {
	if sampleRate == 0 {
		return nil, ErrMissingSampleRate
	}

	cr := csv.NewReader(r)
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("read csv header: %w", err)
	}
	if len(header) < 2 {
		return nil, ErrNoChannels
	}

	t := New(sampleRate, header[1:]...)
	first := true
	prev := 0.0

	for line := 2; ; line++ {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}

		sec, err := strconv.ParseFloat(rec[0], 64)
		if err != nil || sec < 0 {
			return nil, fmt.Errorf("line %d: invalid time %q", line, rec[0])
		}
		if sec < prev {
			return nil, fmt.Errorf("line %d: time %v before %v: %w", line, sec, prev, ErrUnorderedEdge)
		}
		prev = sec
		s := uint64(math.Round(sec * float64(sampleRate)))

		for i, c := range t.Channels {
			v, err := parseLevel(rec[i+1])
			if err != nil {
				return nil, fmt.Errorf("line %d: %w", line, err)
			}

			if first {
				c.Initial = v
				continue
			}
			if n := len(c.Edges); n > 0 && c.Edges[n-1] == s && c.Level() != v {
				c.Edges = c.Edges[:n-1]
				continue
			}
			if err = c.Set(s, v); err != nil {
				return nil, fmt.Errorf("line %d channel %q: %w", line, c.Name, err)
			}
		}

		first = false
		if s+1 > t.Samples {
			t.Samples = s + 1
		}
	}

	return t, nil
}

// WriteCSV writes t as a transition export, one row per sample that has an edge.
func WriteCSV(w io.Writer, t *Trace) error {
	if t.SampleRate == 0 {
		return ErrMissingSampleRate
	}

	cw := csv.NewWriter(w)
	header := []string{"Time [s]"}
	for _, c := range t.Channels {
		header = append(header, c.Name)
	}
	if err := cw.Write(header); err != nil {
		return err
	}

	var samples []uint64
	seen := map[uint64]bool{0: true}
	for _, c := range t.Channels {
		for _, s := range c.Edges {
			if !seen[s] {
				seen[s] = true
				samples = append(samples, s)
			}
		}
	}
	sort.Slice(samples, func(i, j int) bool { return samples[i] < samples[j] })
	samples = append([]uint64{0}, samples...)

	for _, s := range samples {
		rec := []string{strconv.FormatFloat(float64(s)/float64(t.SampleRate), 'g', -1, 64)}
		for _, c := range t.Channels {
			rec = append(rec, c.StateAt(s).String())
		}
		if err := cw.Write(rec); err != nil {
			return err
		}
	}

	cw.Flush()
	return cw.Error()
}

func parseLevel(s string) (port.StateType, error) {
	switch strings.TrimSpace(s) {
	case "0":
		return port.Low, nil
	case "1":
		return port.High, nil
	default:
		return port.Invalid, fmt.Errorf("invalid level %q", s)
	}
}
