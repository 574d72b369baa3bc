package main

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
)

// catalog holds the two coordinate columns of an input file.
type catalog struct {
	// Columns names the coordinate columns, either x/y or ra/dec.
	Columns [2]string
	X, Y    []float64
}

// Sky reports whether the catalog holds R.A./Dec. in degrees.
func (c *catalog) Sky() bool { return c.Columns[0] == "ra" }

var errNoCoordinates = errors.New("no x/y or ra/dec columns in header")

func readCatalogFile(path string) (*catalog, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return readCatalog(f)
}

// readCatalog reads a CSV file whose header row names x and y columns, or ra
// and dec columns. Other columns are ignored.
func readCatalog(r io.Reader) (*catalog, error) {
	cr := csv.NewReader(r)
	cr.TrimLeadingSpace = true
	cr.ReuseRecord = true

	header, err := cr.Read()
	if err == io.EOF {
		return nil, errNoCoordinates
	}
	if err != nil {
		return nil, fmt.Errorf("reading header: %w", err)
	}

	cols := make(map[string]int, len(header))
	for i, name := range header {
		cols[strings.ToLower(strings.TrimSpace(name))] = i
	}

	c := &catalog{}
	switch {
	case hasColumns(cols, "x", "y"):
		c.Columns = [2]string{"x", "y"}
	case hasColumns(cols, "ra", "dec"):
		c.Columns = [2]string{"ra", "dec"}
	default:
		return nil, errNoCoordinates
	}
	ix, iy := cols[c.Columns[0]], cols[c.Columns[1]]

	for line := 2; ; line++ {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("reading line %d: %w", line, err)
		}
		x, err := strconv.ParseFloat(strings.TrimSpace(rec[ix]), 64)
		if err != nil {
			return nil, fmt.Errorf("line %d: column %s: %w", line, c.Columns[0], err)
		}
		y, err := strconv.ParseFloat(strings.TrimSpace(rec[iy]), 64)
		if err != nil {
			return nil, fmt.Errorf("line %d: column %s: %w", line, c.Columns[1], err)
		}
		c.X = append(c.X, x)
		c.Y = append(c.Y, y)
	}
	return c, nil
}

func hasColumns(cols map[string]int, names ...string) bool {
	for _, n := range names {
		if _, ok := cols[n]; !ok {
			return false
		}
	}
	return true
}

// writeLabelled writes x, y and an integer label per row under the given
// header.
func writeLabelled(w io.Writer, header [3]string, x, y []float64, labels []int) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(header[:]); err != nil {
		return err
	}
	rec := make([]string, 3)
	for i := range x {
		rec[0] = strconv.FormatFloat(x[i], 'g', -1, 64)
		rec[1] = strconv.FormatFloat(y[i], 'g', -1, 64)
		rec[2] = strconv.Itoa(labels[i])
		if err := cw.Write(rec); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

func writeLabelledFile(path string, header [3]string, x, y []float64, labels []int) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := f.Close(); err == nil {
			err = cerr
		}
	}()
	return writeLabelled(f, header, x, y, labels)
}
