package importer

import (
	"encoding/csv"
	"io"
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

// csvSource reads a headed CSV stream and resolves columns by name.
type csvSource struct {
	r    *csv.Reader
	cols map[string]int
	rec  []string
	line int
}

func newCSVSource(r io.Reader, required ...string) (*csvSource, error) {
	cr := csv.NewReader(r)
	cr.ReuseRecord = true

	header, err := cr.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, errors.New("empty input: missing header row")
		}
		return nil, errors.Wrap(err, "read header")
	}

	cols := headerIndex(header)
	for _, name := range required {
		if _, ok := cols[name]; !ok {
			return nil, errors.Errorf("header is missing column %q", name)
		}
	}
	return &csvSource{r: cr, cols: cols}, nil
}

// headerIndex maps column names to positions. A UTF-8 BOM on the first
// column is ignored.
func headerIndex(header []string) map[string]int {
	idx := make(map[string]int, len(header))
	for i, name := range header {
		if i == 0 {
			name = strings.TrimPrefix(name, "\ufeff")
		}
		idx[strings.TrimSpace(name)] = i
	}
	return idx
}

// next advances to the following record. It returns io.EOF at the end.
func (s *csvSource) next() error {
	rec, err := s.r.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return io.EOF
		}
		return errors.Wrap(err, "read record")
	}
	s.rec = rec
	s.line, _ = s.r.FieldPos(0)
	return nil
}

func (s *csvSource) field(name string) string {
	return s.rec[s.cols[name]]
}

func (s *csvSource) int64Field(name string) (int64, error) {
	raw := strings.TrimSpace(s.field(name))
	v, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, s.errorf("invalid %s %q", name, raw)
	}
	return v, nil
}

func (s *csvSource) float64Field(name string) (float64, error) {
	raw := strings.TrimSpace(s.field(name))
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, s.errorf("invalid %s %q", name, raw)
	}
	return v, nil
}

func (s *csvSource) errorf(format string, args ...interface{}) error {
	return errors.Wrapf(errors.Errorf(format, args...), "line %d", s.line)
}
