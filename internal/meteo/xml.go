package meteo

import (
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// wcsCapabilities is the subset of a WCS 2.0 GetCapabilities document we use
type wcsCapabilities struct {
	Coverages []struct {
		ID string `xml:"CoverageId"`
	} `xml:"Contents>CoverageSummary"`
}

// coverageIDs lists every advertised coverage id
func coverageIDs(doc []byte) ([]string, error) {
	var caps wcsCapabilities
	if err := xml.Unmarshal(doc, &caps); err != nil {
		return nil, fmt.Errorf("failed to decode capabilities: %w", err)
	}
	ids := make([]string, 0, len(caps.Coverages))
	for _, c := range caps.Coverages {
		if id := strings.TrimSpace(c.ID); id != "" {
			ids = append(ids, id)
		}
	}
	return ids, nil
}

var errNoTupleList = errors.New("no gml:tupleList in coverage")

// tupleValue returns the first value of the gml:tupleList element of a
// point coverage.
func tupleValue(doc []byte) (float64, error) {
	dec := xml.NewDecoder(bytes.NewReader(doc))
	for {
		tok, err := dec.Token()
		if err == io.EOF {
			return 0, errNoTupleList
		}
		if err != nil {
			return 0, fmt.Errorf("failed to decode coverage: %w", err)
		}

		start, ok := tok.(xml.StartElement)
		if !ok || start.Name.Local != "tupleList" {
			continue
		}

		var text string
		if err := dec.DecodeElement(&text, &start); err != nil {
			return 0, fmt.Errorf("failed to decode tupleList: %w", err)
		}
		fields := strings.FieldsFunc(text, func(r rune) bool {
			return r == ' ' || r == ',' || r == '\n' || r == '\t' || r == '\r'
		})
		if len(fields) == 0 {
			return 0, errNoTupleList
		}
		return strconv.ParseFloat(fields[0], 64)
	}
}
