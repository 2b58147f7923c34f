// Package trackfile parses the circuit file format: plain text, one
// key = value per line, with borders and the starting line flattened as
// comma-separated coordinate lists. It is a file-format adapter only; it
// exists so main has something to feed circuit.New.
package trackfile

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"racetrack/internal/circuit"
	"racetrack/internal/geometry"
)

// Parse reads the key = value circuit file format from r.
func Parse(r io.Reader) (circuit.TrackRecord, error) {
	var rec circuit.TrackRecord
	fields := make(map[string]string)

	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		key, value, ok := strings.Cut(line, "=")
		if !ok {
			return rec, fmt.Errorf("trackfile: malformed line %q", line)
		}
		fields[strings.TrimSpace(key)] = strings.TrimSpace(value)
	}
	if err := scanner.Err(); err != nil {
		return rec, err
	}

	rec.Name = fields["name"]
	rec.GridSize, _ = strconv.Atoi(fields["gridSize"])
	rec.MaximumSpeed, _ = strconv.Atoi(fields["maximumSpeed"])
	rec.NumLaps, _ = strconv.Atoi(fields["numLaps"])

	startLine, err := parsePoints(fields["startingLine"])
	if err != nil {
		return rec, fmt.Errorf("trackfile: startingLine: %w", err)
	}
	if len(startLine) != 2 {
		return rec, fmt.Errorf("trackfile: startingLine must have exactly 2 points, got %d", len(startLine))
	}
	rec.StartingLine = [2]geometry.Point{startLine[0], startLine[1]}

	if rec.OuterBorder, err = parsePoints(fields["outerBorder"]); err != nil {
		return rec, fmt.Errorf("trackfile: outerBorder: %w", err)
	}
	if inner, ok := fields["innerBorder"]; ok && inner != "" {
		if rec.InnerBorder, err = parsePoints(inner); err != nil {
			return rec, fmt.Errorf("trackfile: innerBorder: %w", err)
		}
	}

	return rec, nil
}

// parsePoints parses a comma-separated, flattened list of integers into
// points: "x0,y0,x1,y1,...".
func parsePoints(csv string) ([]geometry.Point, error) {
	if csv == "" {
		return nil, nil
	}
	parts := strings.Split(csv, ",")
	if len(parts)%2 != 0 {
		return nil, fmt.Errorf("odd number of coordinates: %d", len(parts))
	}
	pts := make([]geometry.Point, 0, len(parts)/2)
	for i := 0; i < len(parts); i += 2 {
		x, err := strconv.ParseFloat(strings.TrimSpace(parts[i]), 64)
		if err != nil {
			return nil, err
		}
		y, err := strconv.ParseFloat(strings.TrimSpace(parts[i+1]), 64)
		if err != nil {
			return nil, err
		}
		pts = append(pts, geometry.Point{X: x, Y: y})
	}
	return pts, nil
}
