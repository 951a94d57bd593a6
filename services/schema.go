package services

import (
	"strconv"
	"strings"

	"airbnb-analytics/models"
)

// Column names used by the snapshot exports.
const (
	FieldRoomID       = "room_id"
	FieldHostID       = "host_id"
	FieldRoomType     = "room_type"
	FieldNeighborhood = "neighborhood"
	FieldReviews      = "reviews"
	FieldSatisfaction = "overall_satisfaction"
	FieldPrice        = "price"
)

// Schema maps column names of one snapshot header to their positions.
type Schema struct {
	path      string
	headerLen int
	index     map[string]int
}

// ResolveSchema locates every required field in header. A field listed twice
// resolves to its first position. A missing or blank header is an
// EmptyInputError.
func ResolveSchema(path string, header []string, required ...string) (*Schema, error) {
	if len(header) == 0 || (len(header) == 1 && strings.TrimSpace(header[0]) == "") {
		return nil, &EmptyInputError{Reason: path + ": no header line"}
	}

	index := make(map[string]int, len(header))
	for i, name := range header {
		name = strings.TrimSpace(name)
		if _, dup := index[name]; !dup {
			index[name] = i
		}
	}

	for _, field := range required {
		if _, ok := index[field]; !ok {
			return nil, &MissingFieldError{Path: path, Field: field}
		}
	}

	return &Schema{path: path, headerLen: len(header), index: index}, nil
}

// Index returns the column position of field.
func (s *Schema) Index(field string) (int, bool) {
	i, ok := s.index[field]
	return i, ok
}

// HeaderLen returns the number of columns in the header.
func (s *Schema) HeaderLen() int { return s.headerLen }

// RowPredicate decides whether a well-formed row takes part in an analysis.
type RowPredicate func(s *Schema, row models.Row) (bool, error)

// Accept reports whether row has exactly as many fields as the header and
// satisfies every predicate. Short or long rows are skipped silently;
// predicate errors are returned.
func (s *Schema) Accept(row models.Row, preds ...RowPredicate) (bool, error) {
	if len(row.Fields) != s.headerLen {
		return false, nil
	}
	for _, p := range preds {
		ok, err := p(s, row)
		if err != nil || !ok {
			return false, err
		}
	}
	return true, nil
}

// String returns the raw value of field in row.
func (s *Schema) String(row models.Row, field string) string {
	i, ok := s.index[field]
	if !ok || i >= len(row.Fields) {
		return ""
	}
	return row.Fields[i]
}

// Int parses field in row as a base-10 integer.
func (s *Schema) Int(row models.Row, field string) (int64, error) {
	if err := s.require(field); err != nil {
		return 0, err
	}
	raw := s.String(row, field)
	n, err := strconv.ParseInt(strings.TrimSpace(raw), 10, 64)
	if err != nil {
		return 0, &MalformedRowError{Path: s.path, Line: row.Line, Field: field, Value: raw, Err: err}
	}
	return n, nil
}

// Float parses field in row as a floating point number.
func (s *Schema) Float(row models.Row, field string) (float64, error) {
	if err := s.require(field); err != nil {
		return 0, err
	}
	raw := s.String(row, field)
	f, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil {
		return 0, &MalformedRowError{Path: s.path, Line: row.Line, Field: field, Value: raw, Err: err}
	}
	return f, nil
}

func (s *Schema) require(field string) error {
	if _, ok := s.index[field]; !ok {
		return &MissingFieldError{Path: s.path, Field: field}
	}
	return nil
}

// RoomTypeIs keeps rows whose room_type equals roomType exactly.
func RoomTypeIs(roomType string) RowPredicate {
	return func(s *Schema, row models.Row) (bool, error) {
		return s.String(row, FieldRoomType) == roomType, nil
	}
}

// HasReviews keeps rows with at least one review.
func HasReviews() RowPredicate {
	return func(s *Schema, row models.Row) (bool, error) {
		n, err := s.Int(row, FieldReviews)
		if err != nil {
			return false, err
		}
		return n > 0, nil
	}
}

// ExtractListing converts row to a typed listing. Only room_id, room_type
// and price must be present; host_id, neighborhood and reviews are read when
// their columns exist, and overall_satisfaction is parsed only for listings
// with at least one review.
func (s *Schema) ExtractListing(row models.Row) (models.Listing, error) {
	var (
		l   models.Listing
		err error
	)
	if l.RoomID, err = s.Int(row, FieldRoomID); err != nil {
		return l, err
	}
	if l.Price, err = s.Float(row, FieldPrice); err != nil {
		return l, err
	}
	l.RoomType = s.String(row, FieldRoomType)
	l.Neighborhood = s.String(row, FieldNeighborhood)

	if _, ok := s.Index(FieldHostID); ok {
		if l.HostID, err = s.Int(row, FieldHostID); err != nil {
			return l, err
		}
	}
	if _, ok := s.Index(FieldReviews); ok {
		reviews, err := s.Int(row, FieldReviews)
		if err != nil {
			return l, err
		}
		l.Reviews = int(reviews)
	}
	if _, ok := s.Index(FieldSatisfaction); ok && l.Reviews > 0 {
		if l.OverallSatisfaction, err = s.Float(row, FieldSatisfaction); err != nil {
			return l, err
		}
	}
	return l, nil
}

// CoreFields are the columns every snapshot must carry.
var CoreFields = []string{FieldRoomID, FieldRoomType, FieldPrice}
